package cards

import (
	"fmt"
	"strings"
)

// Reason identifies which structural rule a document broke.
type Reason int

const (
	NotAnObject Reason = iota + 1
	MissingCardsField
	CardsNotArray
	CardNotObject
	MissingFrontOrBack
	SideNotObject
	DisallowedField
)

func (r Reason) String() string {
	switch r {
	case NotAnObject:
		return "NotAnObject"
	case MissingCardsField:
		return "MissingCardsField"
	case CardsNotArray:
		return "CardsNotArray"
	case CardNotObject:
		return "CardNotObject"
	case MissingFrontOrBack:
		return "MissingFrontOrBack"
	case SideNotObject:
		return "SideNotObject"
	case DisallowedField:
		return "DisallowedField"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Sides lists the card sides in the order they are checked.
var Sides = []string{"front", "back"}

// AllowedFields is the fixed set of keys a side may carry, in display order.
var AllowedFields = []string{"title", "description", "icon"}

var allowedFieldSet = map[string]struct{}{
	"title":       {},
	"description": {},
	"icon":        {},
}

// ViolationError describes the first rule a document broke. Index is -1
// for document-level violations.
type ViolationError struct {
	Reason Reason
	Index  int
	Side   string
	Field  string
}

func (e *ViolationError) Error() string {
	switch e.Reason {
	case NotAnObject:
		return "root value must be an object"
	case MissingCardsField:
		return `missing "cards" field`
	case CardsNotArray:
		return `"cards" must be an array`
	case CardNotObject:
		return fmt.Sprintf("card %d must be an object", e.Index)
	case MissingFrontOrBack:
		return fmt.Sprintf(`card %d is missing "front" or "back"`, e.Index)
	case SideNotObject:
		return fmt.Sprintf("card %d: %s must be an object", e.Index, e.Side)
	case DisallowedField:
		return fmt.Sprintf("card %d: %s contains disallowed field %q (allowed: %s)",
			e.Index, e.Side, e.Field, strings.Join(AllowedFields, ", "))
	}
	return e.Reason.String()
}

func (e *ViolationError) Is(target error) bool {
	return target == ErrSchemaViolation
}

func violation(r Reason, index int, side, field string) *ViolationError {
	return &ViolationError{Reason: r, Index: index, Side: side, Field: field}
}

// Validate checks doc against the deck shape and returns the first
// violation found, or nil. doc is not modified.
func Validate(doc any) error {
	root, ok := doc.(*Object)
	if !ok {
		return violation(NotAnObject, -1, "", "")
	}

	rawCards, ok := root.Get("cards")
	if !ok {
		return violation(MissingCardsField, -1, "", "")
	}

	list, ok := rawCards.([]any)
	if !ok {
		return violation(CardsNotArray, -1, "", "")
	}

	for i, item := range list {
		if err := validateCard(i, item); err != nil {
			return err
		}
	}
	return nil
}

func validateCard(i int, item any) error {
	card, ok := item.(*Object)
	if !ok {
		return violation(CardNotObject, i, "", "")
	}

	_, hasFront := card.Get("front")
	_, hasBack := card.Get("back")
	if !hasFront || !hasBack {
		return violation(MissingFrontOrBack, i, "", "")
	}

	for _, side := range Sides {
		raw, _ := card.Get(side)
		fields, ok := raw.(*Object)
		if !ok {
			return violation(SideNotObject, i, side, "")
		}
		for _, key := range fields.Keys() {
			if _, allowed := allowedFieldSet[key]; !allowed {
				return violation(DisallowedField, i, side, key)
			}
		}
	}
	return nil
}

// CardCount returns the length of the "cards" array, or -1 when doc has no
// such array.
func CardCount(doc any) int {
	root, ok := doc.(*Object)
	if !ok {
		return -1
	}
	raw, ok := root.Get("cards")
	if !ok {
		return -1
	}
	list, ok := raw.([]any)
	if !ok {
		return -1
	}
	return len(list)
}
