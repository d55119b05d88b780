package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"filtercache/internal/cache"
)

func cmdStatus() *Command {
	return &Command{
		Flags: flag.NewFlagSet("status", flag.ContinueOnError),
		Usage: "status",
		Short: "print cache location, size and last update time",
		Exec: func(_ context.Context, app *App, _ []string) error {
			app.IO.Println("cache dir: ", app.CacheDir)

			index, err := cache.LoadIndex(app.CacheDir)

			switch {
			case errors.Is(err, cache.ErrMissingIndex):
				app.IO.Println("index:      not downloaded")
			case err != nil:
				return err
			default:
				app.IO.Printf("index:      %d filters\n", index.NumRows())
			}

			stamp, stampErr := app.Marker.LastUpdate()
			if stampErr != nil {
				return stampErr
			}

			if stamp.IsZero() {
				app.IO.Println("updated:    never")
			} else {
				app.IO.Println("updated:   ", stamp.Format("2006-01-02 15:04:05 MST"))
			}

			return nil
		},
	}
}
