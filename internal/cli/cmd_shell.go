package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"filtercache/internal/cache"
	"filtercache/internal/filterid"
)

func cmdShell() *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "interactively look up cached filters",
		Long: "Interactively look up cached filters.\n\n" +
			"Reads filter IDs from the terminal (with history and tab\n" +
			"completion against the cached index) and prints a summary of each\n" +
			"filter's transmission data. Exit with 'exit', 'quit' or Ctrl-D.",
		Exec: func(_ context.Context, app *App, _ []string) error {
			index, err := cache.LoadIndex(app.CacheDir)
			if err != nil {
				return err
			}

			ids, _ := index.Column(cache.IndexKey)

			line := liner.NewLiner()
			defer func() { _ = line.Close() }()

			line.SetCtrlCAborts(true)
			line.SetCompleter(func(prefix string) []string {
				var matches []string

				for _, id := range ids {
					if strings.HasPrefix(id, prefix) {
						matches = append(matches, id)
					}
				}

				return matches
			})

			for {
				input, promptErr := line.Prompt("filter> ")
				if promptErr != nil {
					if errors.Is(promptErr, io.EOF) || errors.Is(promptErr, liner.ErrPromptAborted) {
						return nil
					}

					return promptErr
				}

				input = strings.TrimSpace(input)

				switch input {
				case "":
					continue
				case "exit", "quit":
					return nil
				}

				line.AppendHistory(input)
				showFilter(app, input)
			}
		},
	}
}

// showFilter prints a one-screen summary of a cached filter. Lookup
// errors are printed, not returned: a typo must not end the session.
func showFilter(app *App, rawID string) {
	table, err := cache.LoadTransmission(rawID, app.CacheDir)
	if err != nil {
		app.IO.ErrPrintln("error:", err)
		return
	}

	id, parseErr := filterid.Parse(rawID)
	if parseErr != nil {
		app.IO.ErrPrintln("error:", parseErr)
		return
	}

	app.IO.Printf("%s: %d rows (%s)\n",
		id, table.NumRows(), strings.Join(table.ColumnNames(), ", "))
}
