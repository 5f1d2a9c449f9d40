package predicate

import "github.com/Brian-Masse/Shorter/internal/domain"

// ProfileDocument adapts a profile for local predicate evaluation.
func ProfileDocument(p *domain.Profile) Document {
	return func(field Field) []string {
		switch field {
		case FieldOwnerID:
			return []string{p.OwnerID}
		case FieldFriendIDs:
			return p.FriendIDs
		case FieldBlockingIDs:
			return p.BlockingIDs
		case FieldSearchable:
			return []string{p.SearchableField()}
		default:
			return nil
		}
	}
}

// PostDocument adapts a post for local predicate evaluation.
func PostDocument(p *domain.Post) Document {
	return func(field Field) []string {
		switch field {
		case FieldOwnerID:
			return []string{p.OwnerID}
		case FieldSharedOwnerIDs:
			return p.SharedOwnerIDs
		default:
			return nil
		}
	}
}
