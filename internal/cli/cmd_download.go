package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

func cmdDownload() *Command {
	return &Command{
		Flags: flag.NewFlagSet("download", flag.ContinueOnError),
		Usage: "download [filterID...]",
		Short: "download filter data into the cache",
		Long: "Download filter data into the cache.\n\n" +
			"Without arguments the complete data set is downloaded: the filter\n" +
			"index plus transmission data for every filter it lists. With\n" +
			"arguments only the named filters are downloaded. Filter IDs accept\n" +
			"'/' and '.' interchangeably: Keck/NIRC2/Kp or Keck/NIRC2.Kp.\n\n" +
			"When downloading several filters, a single filter's failure is\n" +
			"logged and the rest of the batch continues.",
		Exec: func(ctx context.Context, app *App, args []string) error {
			switch len(args) {
			case 0:
				return app.Downloader.FetchAll(ctx, app.CacheDir)
			case 1:
				return app.Downloader.FetchOne(ctx, args[0], app.CacheDir)
			default:
				app.Downloader.FetchMany(ctx, args, app.CacheDir)
				return nil
			}
		},
	}
}
