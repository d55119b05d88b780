package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

func cmdUpdate() *Command {
	return &Command{
		Flags: flag.NewFlagSet("update", flag.ContinueOnError),
		Usage: "update",
		Short: "sync the cache against the remote filter index",
		Long: "Sync the cache against the remote filter index.\n\n" +
			"Filters that disappeared from the remote index are deleted, new\n" +
			"filters are downloaded, and the cached index is replaced. Requires\n" +
			"a prior full download.",
		Exec: func(ctx context.Context, app *App, _ []string) error {
			updated, err := app.Downloader.Sync(ctx, app.CacheDir)
			if err != nil {
				return err
			}

			if updated {
				app.IO.Println("Cache updated.")
			} else {
				app.IO.Println("Cache is already up-to-date.")
			}

			return nil
		},
	}
}
