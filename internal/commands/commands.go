package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/abstract-tutoring/app-flashcards/cardfmt/internal/cards"
)

// CardsPath is the deck file every command works on, relative to the
// working directory.
const CardsPath = "./cards.json"

// ErrFindings is returned by read-only reports that found problems.
var ErrFindings = errors.New("findings reported")

// FormatCards validates the deck and, if it passes, rewrites it with
// canonical indentation.
func FormatCards(out io.Writer) error {
	return formatCards(out, CardsPath)
}

func formatCards(out io.Writer, path string) error {
	fmt.Fprintln(out, "cards.json formatter")
	fmt.Fprintln(out, strings.Repeat("=", 40))

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %s", cards.ErrMissingFile, path)
		} else {
			err = fmt.Errorf("%w: stat %s: %v", cards.ErrIO, path, err)
		}
		return reportFailure(out, err)
	}

	doc, err := cards.LoadFile(path)
	if err != nil {
		return reportFailure(out, err)
	}

	if n := cards.CardCount(doc); n >= 0 {
		fmt.Fprintf(out, "cards: %d\n", n)
	}
	if err := cards.Validate(doc); err != nil {
		return reportFailure(out, err)
	}
	fmt.Fprintln(out, "structure check passed")

	logger.Debug("formatting", "path", path)
	size, err := cards.FormatFile(path)
	if err != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "formatting failed")
		return reportFailure(out, err)
	}

	fmt.Fprintf(out, "formatted %s\n", path)
	fmt.Fprintf(out, "file size: %d bytes (%s)\n", size, humanize.Bytes(uint64(size)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "done: file saved")
	return nil
}

// CheckCards lists every schema violation in the deck without writing it.
func CheckCards(out io.Writer) error {
	return checkCards(out, CardsPath)
}

func checkCards(out io.Writer, path string) error {
	doc, err := cards.LoadFile(path)
	if err != nil {
		return reportFailure(out, err)
	}

	problems, err := cards.CheckSchema(doc)
	if err != nil {
		return fmt.Errorf("check schema: %w", err)
	}
	if len(problems) == 0 {
		fmt.Fprintf(out, "%s: ok (%d cards)\n", path, cards.CardCount(doc))
		return nil
	}

	for _, p := range problems {
		fmt.Fprintf(out, "%s: %s\n", path, p)
	}
	fmt.Fprintf(out, "%d problem(s) found\n", len(problems))
	return fmt.Errorf("%w: %d schema problem(s) in %s", ErrFindings, len(problems), path)
}

// LintCards reports card text that the app's rich-text sanitiser would
// alter.
func LintCards(out io.Writer) error {
	return lintCards(out, CardsPath)
}

func lintCards(out io.Writer, path string) error {
	doc, err := cards.LoadFile(path)
	if err != nil {
		return reportFailure(out, err)
	}

	findings, err := cards.LintMarkup(doc)
	if err != nil {
		return reportFailure(out, err)
	}
	if len(findings) == 0 {
		fmt.Fprintf(out, "%s: no markup issues\n", path)
		return nil
	}

	for _, f := range findings {
		fmt.Fprintf(out, "%s: %s\n", path, f)
	}
	return fmt.Errorf("%w: %d markup issue(s) in %s", ErrFindings, len(findings), path)
}

// SyncCards upserts the validated deck into the database at DATABASE_URL.
func SyncCards(out io.Writer) error {
	dbURL, ok := os.LookupEnv("DATABASE_URL")
	if !ok || dbURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}

	doc, err := cards.LoadFile(CardsPath)
	if err != nil {
		return fmt.Errorf("load cards: %w", err)
	}
	deck, err := deckFromDocument(doc)
	if err != nil {
		return fmt.Errorf("load cards: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	conn, err := connectDB(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := conn.Close(ctx); cerr != nil {
			logger.Warn("failed to close db connection", "err", cerr)
		}
	}()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// rollback is a no-op once committed
	defer func() { _ = tx.Rollback(ctx) }()

	removed, err := syncDeck(ctx, tx, deck)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	fmt.Fprintf(out, "synced %d cards (%d stale rows removed)\n", len(deck), removed)
	return nil
}
