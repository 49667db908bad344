package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abstract-tutoring/app-flashcards/cardfmt/internal/cards"
)

type execCall struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls  []execCall
	failOn string
	tag    pgconn.CommandTag
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	if strings.Contains(sql, "DELETE") {
		return f.tag, nil
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func parseDeck(t *testing.T, s string) []DeckCard {
	t.Helper()
	doc, err := cards.Parse([]byte(s))
	require.NoError(t, err)
	deck, err := deckFromDocument(doc)
	require.NoError(t, err)
	return deck
}

func TestDeckFromDocument(t *testing.T) {
	deck := parseDeck(t, `{"cards":[
		{"front":{"title":"A", "icon":"i"},"back":{"description":"日本"}},
		{"front":{},"back":{}}
	]}`)

	require.Len(t, deck, 2)
	assert.Equal(t, 0, deck[0].Position)
	assert.Equal(t, `{"title":"A","icon":"i"}`, string(deck[0].Front))
	assert.Equal(t, `{"description":"日本"}`, string(deck[0].Back))
	assert.Equal(t, 1, deck[1].Position)
	assert.Equal(t, `{}`, string(deck[1].Front))
}

func TestDeckFromDocumentInvalid(t *testing.T) {
	doc, err := cards.Parse([]byte(`{"cards":[{"front":{}}]}`))
	require.NoError(t, err)

	_, err = deckFromDocument(doc)
	assert.ErrorIs(t, err, cards.ErrSchemaViolation)
}

func TestSyncDeck(t *testing.T) {
	deck := parseDeck(t, `{"cards":[{"front":{"title":"A"},"back":{}},{"front":{},"back":{"icon":"x"}}]}`)
	db := &fakeExecer{tag: pgconn.NewCommandTag("DELETE 3")}

	removed, err := syncDeck(context.Background(), db, deck)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	require.Len(t, db.calls, 4)
	assert.Contains(t, db.calls[0].sql, "CREATE TABLE IF NOT EXISTS deck_cards")
	assert.Contains(t, db.calls[1].sql, "ON CONFLICT (position)")
	assert.Equal(t, []any{0, []byte(`{"title":"A"}`), []byte(`{}`)}, db.calls[1].args)
	assert.Equal(t, []any{1, []byte(`{}`), []byte(`{"icon":"x"}`)}, db.calls[2].args)
	assert.Contains(t, db.calls[3].sql, "DELETE FROM deck_cards")
	assert.Equal(t, []any{2}, db.calls[3].args)
}

func TestSyncDeckUpsertError(t *testing.T) {
	deck := parseDeck(t, `{"cards":[{"front":{},"back":{}}]}`)
	db := &fakeExecer{failOn: "INSERT"}

	_, err := syncDeck(context.Background(), db, deck)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert card 0")
	assert.Len(t, db.calls, 2)
}
