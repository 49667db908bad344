package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/abstract-tutoring/app-flashcards/cardfmt/internal/commands"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: cardfmt [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "with no command, validates and reformats ./cards.json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  check        list every schema problem in ./cards.json")
	fmt.Fprintln(w, "  lint         report card text the app sanitiser would change")
	fmt.Fprintln(w, "  sync-cards   upsert ./cards.json into DATABASE_URL")
	fmt.Fprintln(w, "  help         show this message")
}

type cmdHandler func(io.Writer) error

func main() {
	if err := godotenv.Load(".env"); err != nil {
		commands.Logger().Debug("no .env file found, relying on environment")
	}
	commands.SetLogLevel(os.Getenv("LOG_LEVEL"))

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches args to a command and returns the process exit code:
// 0 on success, 1 when the command fails, 2 on usage errors.
func run(args []string, stdout, stderr io.Writer) int {
	handlers := map[string]cmdHandler{
		"format":     commands.FormatCards,
		"check":      commands.CheckCards,
		"lint":       commands.LintCards,
		"sync-cards": commands.SyncCards,
	}

	cmd := "format"
	if len(args) >= 1 {
		cmd = args[0]
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		usage(stdout)
		return 0
	}

	handler, ok := handlers[cmd]
	if !ok || len(args) > 1 {
		usage(stderr)
		return 2
	}

	if err := handler(stdout); err != nil {
		fmt.Fprintf(stderr, "%s failed: %v\n", cmd, err)
		return 1
	}
	return 0
}
