package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/abstract-tutoring/app-flashcards/cardfmt/internal/cards"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "cardfmt",
	Level:  log.InfoLevel,
})

// Logger returns the package logger used for diagnostics on stderr.
func Logger() *log.Logger {
	return logger
}

// SetLogLevel sets the diagnostic log level from a name such as "debug".
// Unknown names fall back to info.
func SetLogLevel(name string) {
	if name == "" {
		return
	}
	level, err := log.ParseLevel(strings.ToLower(name))
	if err != nil {
		logger.Warn("unknown log level, using info", "level", name)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
}

// reportFailure prints a labeled message and a hint for err, then returns
// err for the caller to propagate.
func reportFailure(out io.Writer, err error) error {
	label, hint := describe(err)
	fmt.Fprintf(out, "error: %s: %v\n", label, err)
	if hint != "" {
		fmt.Fprintf(out, "hint: %s\n", hint)
	}
	return err
}

func describe(err error) (label, hint string) {
	var ve *cards.ViolationError
	switch {
	case errors.Is(err, cards.ErrMissingFile):
		return "missing file", "run the tool from the directory that contains cards.json"
	case errors.Is(err, cards.ErrMalformedJSON):
		return "malformed JSON", "fix the syntax error and run again; the file was not modified"
	case errors.As(err, &ve):
		if ve.Reason == cards.DisallowedField {
			return "schema violation", "allowed side fields: " + strings.Join(cards.AllowedFields, ", ")
		}
		return "schema violation", "run `cardfmt check` to list every problem"
	case errors.Is(err, cards.ErrIO):
		return "i/o error", "check file permissions and free disk space"
	}
	return "unexpected error", ""
}

func connectDB(ctx context.Context, dbURL string) (*pgx.Conn, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("db url missing")
	}
	return pgx.Connect(ctx, dbURL)
}

// execer is satisfied by *pgx.Conn and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const createDeckTable = `
    CREATE TABLE IF NOT EXISTS deck_cards (
        position   INTEGER PRIMARY KEY,
        front      JSONB NOT NULL,
        back       JSONB NOT NULL,
        synced_at  TIMESTAMPTZ NOT NULL DEFAULT now()
    )`

// syncDeck upserts every card by position and deletes rows past the end of
// the deck. It returns the number of deleted rows.
func syncDeck(ctx context.Context, db execer, deck []DeckCard) (int64, error) {
	if _, err := db.Exec(ctx, createDeckTable); err != nil {
		return 0, fmt.Errorf("create deck_cards: %w", err)
	}

	for _, card := range deck {
		if _, err := db.Exec(ctx, `
            INSERT INTO deck_cards (position, front, back, synced_at)
            VALUES ($1, $2, $3, now())
            ON CONFLICT (position) DO UPDATE
            SET front = EXCLUDED.front,
                back = EXCLUDED.back,
                synced_at = EXCLUDED.synced_at
        `, card.Position, card.Front, card.Back); err != nil {
			return 0, fmt.Errorf("upsert card %d: %w", card.Position, err)
		}
		logger.Debug("upserted card", "position", card.Position)
	}

	tag, err := db.Exec(ctx, `DELETE FROM deck_cards WHERE position >= $1`, len(deck))
	if err != nil {
		return 0, fmt.Errorf("prune deck_cards: %w", err)
	}
	return tag.RowsAffected(), nil
}
