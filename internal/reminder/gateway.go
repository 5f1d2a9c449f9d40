package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/Brian-Masse/Shorter/internal/domain"
)

// LogGateway is a NotificationGateway that only logs. The daemon runs
// with it on platforms without a local notification service; the
// mobile shells plug in their own gateway.
type LogGateway struct {
	Logger *slog.Logger
}

// ScheduleLocalNotification logs the registration.
func (g *LogGateway) ScheduleLocalNotification(ctx context.Context, id string, firingTime time.Time, payload domain.NotificationPayload) error {
	g.Logger.Info("local notification scheduled",
		"id", id,
		"firing_time", firingTime,
		"title", payload.Title,
	)
	return nil
}

// CancelLocalNotifications logs the cancellation.
func (g *LogGateway) CancelLocalNotifications(ctx context.Context, ids []string) error {
	g.Logger.Info("local notifications cancelled", "count", len(ids))
	return nil
}
