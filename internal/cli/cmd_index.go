package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"filtercache/internal/cache"
)

func cmdIndex() *Command {
	flags := flag.NewFlagSet("index", flag.ContinueOnError)
	idsOnly := flags.Bool("ids", false, "list filter IDs only, one per line")

	return &Command{
		Flags: flags,
		Usage: "index [--ids]",
		Short: "print the cached filter index",
		Exec: func(_ context.Context, app *App, _ []string) error {
			index, err := cache.LoadIndex(app.CacheDir)
			if err != nil {
				return err
			}

			ids, _ := index.Column(cache.IndexKey)

			if *idsOnly {
				for _, id := range ids {
					app.IO.Println(id)
				}

				return nil
			}

			app.IO.Printf("%d filters in index at %s\n", index.NumRows(), app.CacheDir)

			return nil
		},
	}
}
