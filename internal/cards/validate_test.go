package cards

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) any {
	t.Helper()
	doc, err := Parse([]byte(s))
	require.NoError(t, err)
	return doc
}

func TestValidatePasses(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"single card", `{"cards":[{"front":{"title":"A"},"back":{"title":"B"}}]}`},
		{"empty deck", `{"cards":[]}`},
		{"empty sides", `{"cards":[{"front":{},"back":{}}]}`},
		{"all fields", `{"cards":[{"front":{"title":"A","description":"d","icon":"i"},"back":{"icon":"j"}}]}`},
		{"extra root and card keys", `{"version":3,"cards":[{"id":7,"front":{},"back":{},"tags":["x"]}]}`},
		{"field values not inspected", `{"cards":[{"front":{"title":42,"icon":null},"back":{"description":{"x":1}}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, Validate(mustParse(t, tt.input)))
		})
	}
}

func TestValidateViolations(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason Reason
		index  int
		side   string
		field  string
	}{
		{"root array", `[]`, NotAnObject, -1, "", ""},
		{"root string", `"cards"`, NotAnObject, -1, "", ""},
		{"missing cards", `{"deck":[]}`, MissingCardsField, -1, "", ""},
		{"cards object", `{"cards":{}}`, CardsNotArray, -1, "", ""},
		{"cards null", `{"cards":null}`, CardsNotArray, -1, "", ""},
		{"card not object", `{"cards":[{"front":{},"back":{}},"x"]}`, CardNotObject, 1, "", ""},
		{"missing back", `{"cards":[{"front":{}}]}`, MissingFrontOrBack, 0, "", ""},
		{"missing front", `{"cards":[{"back":{}}]}`, MissingFrontOrBack, 0, "", ""},
		{"front not object", `{"cards":[{"front":"A","back":{}}]}`, SideNotObject, 0, "front", ""},
		{"back null", `{"cards":[{"front":{},"back":null}]}`, SideNotObject, 0, "back", ""},
		{"disallowed front field", `{"cards":[{"front":{"foo":"x"},"back":{}}]}`, DisallowedField, 0, "front", "foo"},
		{"disallowed back field", `{"cards":[{"front":{"title":"t"},"back":{"icon":"i","image":"p"}}]}`, DisallowedField, 0, "back", "image"},
		{"first disallowed in key order", `{"cards":[{"front":{"zeta":1,"alpha":2},"back":{}}]}`, DisallowedField, 0, "front", "zeta"},
		{"front fields checked before back type", `{"cards":[{"front":{"bad":1},"back":5}]}`, DisallowedField, 0, "front", "bad"},
		{"first card wins", `{"cards":[{"front":{},"back":{}},{"front":{},"back":{"x":1}},7]}`, DisallowedField, 1, "back", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(mustParse(t, tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchemaViolation)

			var ve *ViolationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.reason, ve.Reason)
			assert.Equal(t, tt.index, ve.Index)
			assert.Equal(t, tt.side, ve.Side)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestViolationMessageNamesCardSideAndField(t *testing.T) {
	err := Validate(mustParse(t, `{"cards":[{"front":{"foo":"x"},"back":{}}]}`))
	require.Error(t, err)
	assert.Equal(t, `card 0: front contains disallowed field "foo" (allowed: title, description, icon)`, err.Error())
}

func TestValidateDoesNotMutate(t *testing.T) {
	const input = `{"cards":[{"front":{"title":"A"},"back":{"foo":1}}],"x":1}`
	doc := mustParse(t, input)
	before, err := Marshal(doc, "")
	require.NoError(t, err)

	_ = Validate(doc)

	after, err := Marshal(doc, "")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCardCount(t *testing.T) {
	assert.Equal(t, 2, CardCount(mustParse(t, `{"cards":[{},{}]}`)))
	assert.Equal(t, 0, CardCount(mustParse(t, `{"cards":[]}`)))
	assert.Equal(t, -1, CardCount(mustParse(t, `{"cards":{}}`)))
	assert.Equal(t, -1, CardCount(mustParse(t, `[]`)))
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "DisallowedField", DisallowedField.String())
	assert.Equal(t, "Reason(99)", Reason(99).String())
}
