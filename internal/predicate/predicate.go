// Package predicate models server-evaluated query predicates as a
// small tagged variant instead of opaque closures, so they can be
// serialized for the sync collaborator, compared structurally for the
// registry's no-op check, and evaluated locally in tests.
package predicate

import (
	"encoding/json"
	"strings"
)

// Field names a queryable attribute of a synced record.
type Field string

const (
	FieldOwnerID        Field = "ownerId"
	FieldSharedOwnerIDs Field = "sharedOwnerIds"
	FieldFriendIDs      Field = "friendIds"
	FieldBlockingIDs    Field = "blockingIds"
	FieldSeedAuthor     Field = "author"
	FieldSearchable     Field = "searchableField"
)

// Op is the operation a predicate node performs.
type Op string

const (
	// OpEquals matches records whose field equals Value.
	OpEquals Op = "equals"
	// OpContains matches records whose list field contains Value.
	OpContains Op = "contains"
	// OpHasPrefix matches records whose field starts with Value.
	OpHasPrefix Op = "hasPrefix"
	// OpAnd matches records satisfying every operand.
	OpAnd Op = "and"
	// OpOr matches records satisfying at least one operand.
	OpOr Op = "or"
	// OpMatchNone matches nothing. Used as the deny-all predicate
	// before a session identity exists.
	OpMatchNone Op = "matchNone"
)

// Predicate is one node of the query tree. Leaf ops use Field and
// Value; logical ops use Operands.
type Predicate struct {
	Op       Op          `json:"op"`
	Field    Field       `json:"field,omitempty"`
	Value    string      `json:"value,omitempty"`
	Operands []Predicate `json:"operands,omitempty"`
}

// Equals matches records whose field equals value.
func Equals(field Field, value string) Predicate {
	return Predicate{Op: OpEquals, Field: field, Value: value}
}

// Contains matches records whose list field contains value.
func Contains(field Field, value string) Predicate {
	return Predicate{Op: OpContains, Field: field, Value: value}
}

// HasPrefix matches records whose field starts with value.
func HasPrefix(field Field, value string) Predicate {
	return Predicate{Op: OpHasPrefix, Field: field, Value: value}
}

// And matches records satisfying every operand.
func And(operands ...Predicate) Predicate {
	return Predicate{Op: OpAnd, Operands: operands}
}

// Or matches records satisfying at least one operand.
func Or(operands ...Predicate) Predicate {
	return Predicate{Op: OpOr, Operands: operands}
}

// MatchNone matches nothing.
func MatchNone() Predicate {
	return Predicate{Op: OpMatchNone}
}

// Equal reports whether two predicates are structurally identical.
func (p Predicate) Equal(other Predicate) bool {
	if p.Op != other.Op || p.Field != other.Field || p.Value != other.Value {
		return false
	}
	if len(p.Operands) != len(other.Operands) {
		return false
	}
	for i := range p.Operands {
		if !p.Operands[i].Equal(other.Operands[i]) {
			return false
		}
	}
	return true
}

// Description renders the predicate as the canonical JSON form sent to
// the sync collaborator. Field order is fixed by the struct, so equal
// predicates always produce equal descriptions.
func (p Predicate) Description() string {
	b, err := json.Marshal(p)
	if err != nil {
		// Marshaling a tree of strings cannot fail; keep the signature
		// convenient for callers.
		return ""
	}
	return string(b)
}

// Document exposes a record's field values for local evaluation.
// Single-valued fields return a one-element slice.
type Document func(Field) []string

// Matches evaluates the predicate against a document.
func (p Predicate) Matches(doc Document) bool {
	switch p.Op {
	case OpEquals:
		values := doc(p.Field)
		return len(values) == 1 && values[0] == p.Value
	case OpContains:
		for _, v := range doc(p.Field) {
			if v == p.Value {
				return true
			}
		}
		return false
	case OpHasPrefix:
		values := doc(p.Field)
		return len(values) == 1 && strings.HasPrefix(values[0], p.Value)
	case OpAnd:
		for _, op := range p.Operands {
			if !op.Matches(doc) {
				return false
			}
		}
		return true
	case OpOr:
		for _, op := range p.Operands {
			if op.Matches(doc) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
