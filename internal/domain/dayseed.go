package domain

import (
	"fmt"
	"math/rand"
)

// SeedLength is the fixed length of the day seed table. It is prime so
// the lookup cycle never aligns with 7, 30, or 365 day periods.
const SeedLength = 137

// SeedAuthorID is the owner id of the canonical reference profile. The
// seed table is generated exactly once, under this identity, and read
// by every other device; regenerating it per-device would break
// cross-device agreement on firing times.
const SeedAuthorID = "66759d000ae4d97657a322dd"

// DaySeed is the immutable table of pseudo-random values in [0,1) used
// to deterministically derive a daily nominal time. Indexed by
// dayIndex mod SeedLength.
type DaySeed []float64

// GenerateDaySeed creates a new seed table from the given source.
func GenerateDaySeed(rng *rand.Rand) DaySeed {
	seed := make(DaySeed, SeedLength)
	for i := range seed {
		seed[i] = rng.Float64()
	}
	return seed
}

// ValueAt returns the seed value for the given day index. Negative
// indices wrap the same way positive ones do.
func (s DaySeed) ValueAt(dayIndex int) float64 {
	i := dayIndex % len(s)
	if i < 0 {
		i += len(s)
	}
	return s[i]
}

// Validate checks the table is non-empty and every value is in [0,1).
func (s DaySeed) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("day seed is empty")
	}
	for i, v := range s {
		if v < 0 || v >= 1 {
			return fmt.Errorf("day seed value %d out of range: %f", i, v)
		}
	}
	return nil
}
