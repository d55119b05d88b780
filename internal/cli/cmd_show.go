package cli

import (
	"context"
	"errors"
	"strings"

	flag "github.com/spf13/pflag"

	"filtercache/internal/cache"
)

var errFilterIDRequired = errors.New("filter ID is required")

func cmdShow() *Command {
	flags := flag.NewFlagSet("show", flag.ContinueOnError)
	limit := flags.Int("limit", 0, "print at most this many rows (0 = all)")

	return &Command{
		Flags: flags,
		Usage: "show <filterID>",
		Short: "print cached transmission data for one filter",
		Exec: func(_ context.Context, app *App, args []string) error {
			if len(args) != 1 {
				return errFilterIDRequired
			}

			table, err := cache.LoadTransmission(args[0], app.CacheDir)
			if err != nil {
				return err
			}

			app.IO.Println(strings.Join(table.ColumnNames(), "\t"))

			for i, row := range table.Rows {
				if *limit > 0 && i >= *limit {
					app.IO.Printf("... (%d more rows)\n", table.NumRows()-i)
					break
				}

				app.IO.Println(strings.Join(row, "\t"))
			}

			return nil
		},
	}
}
