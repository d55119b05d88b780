package cache

import (
	"context"
	"fmt"
	"log/slog"

	"filtercache/internal/filterid"
	"filtercache/internal/votable"
)

// Fetcher retrieves filter data from the remote filter service. The
// cache core never talks to the network itself; timeout and retry
// policy belong to the Fetcher implementation.
type Fetcher interface {
	// FetchIndex retrieves the full filter index.
	FetchIndex(ctx context.Context) (votable.Table, error)

	// FetchTransmission retrieves the transmission table for a filter
	// given its canonical SVO ID ("facility/instrument.filter").
	FetchTransmission(ctx context.Context, svoID string) (votable.Table, error)
}

// UpdateMarker records when the cache was last refreshed. The stamp is
// persisted outside the cache tree (see the config package).
type UpdateMarker interface {
	TouchUpdateTimestamp() error
}

// Downloader writes remote filter data through the votable codec into
// the cache layout.
type Downloader struct {
	fetcher Fetcher
	marker  UpdateMarker
	log     *slog.Logger
}

// NewDownloader returns a Downloader using the given collaborators.
// A nil logger falls back to slog.Default.
func NewDownloader(fetcher Fetcher, marker UpdateMarker, log *slog.Logger) *Downloader {
	if log == nil {
		log = slog.Default()
	}

	return &Downloader{fetcher: fetcher, marker: marker, log: log}
}

// FetchIndex downloads the filter index, caches it at the index path
// under cacheDir, touches the update timestamp and returns the table.
func (d *Downloader) FetchIndex(ctx context.Context, cacheDir string) (votable.Table, error) {
	d.log.Info("caching filter index")

	index, fetchErr := d.fetcher.FetchIndex(ctx)
	if fetchErr != nil {
		return votable.Table{}, fmt.Errorf("fetching filter index: %w", fetchErr)
	}

	writeErr := votable.Write(index, filterid.IndexPath(cacheDir))
	if writeErr != nil {
		return votable.Table{}, fmt.Errorf("caching filter index: %w", writeErr)
	}

	touchErr := d.marker.TouchUpdateTimestamp()
	if touchErr != nil {
		return votable.Table{}, fmt.Errorf("recording cache update time: %w", touchErr)
	}

	return index, nil
}

// FetchOne downloads transmission data for one filter identifier
// (either delimiter style) and caches it at the canonical storage path.
// Failures are wrapped as *DownloadError.
func (d *Downloader) FetchOne(ctx context.Context, rawID, cacheDir string) error {
	id, parseErr := filterid.Parse(rawID)
	if parseErr != nil {
		return &DownloadError{ID: rawID, Err: parseErr}
	}

	table, fetchErr := d.fetcher.FetchTransmission(ctx, id.SVO())
	if fetchErr != nil {
		return &DownloadError{ID: rawID, Err: fetchErr}
	}

	writeErr := votable.Write(table, id.Path(cacheDir))
	if writeErr != nil {
		return &DownloadError{ID: rawID, Err: writeErr}
	}

	return nil
}

// FetchMany downloads transmission data for each identifier in order.
// A single filter's failure is logged and the batch continues; one bad
// filter must not abort the remaining thousands. Batch success is
// therefore "returns nil", with per-item failures observable in the
// log.
func (d *Downloader) FetchMany(ctx context.Context, rawIDs []string, cacheDir string) {
	total := len(rawIDs)

	for i, rawID := range rawIDs {
		d.log.Info("caching transmission data",
			slog.String("filter", rawID),
			slog.Int("n", i+1),
			slog.Int("total", total))

		err := d.FetchOne(ctx, rawID, cacheDir)
		if err != nil {
			d.log.Error("transmission data could not be downloaded",
				slog.String("filter", rawID),
				slog.Any("cause", err))
		}
	}
}

// FetchAll downloads the complete filter data set: the index, then
// transmission data for every filter the index lists.
func (d *Downloader) FetchAll(ctx context.Context, cacheDir string) error {
	index, indexErr := d.FetchIndex(ctx, cacheDir)
	if indexErr != nil {
		return indexErr
	}

	ids, ok := index.Column(IndexKey)
	if !ok {
		return fmt.Errorf("%w: index has no %s column", votable.ErrDecode, IndexKey)
	}

	d.FetchMany(ctx, ids, cacheDir)

	return nil
}
