package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingIndex reports that no filter index exists in the cache
	// directory. The remedy is a full download.
	ErrMissingIndex = errors.New("filter index not found in cache (run a full download first)")

	// ErrUnknownFilter reports a syntactically valid filter ID that is
	// not listed in the cached index.
	ErrUnknownFilter = errors.New("filter ID not present in index")

	// ErrInconsistentCache reports a filter that the index lists but
	// whose transmission file is missing on disk. The remedy is to
	// re-download that filter (or the whole set).
	ErrInconsistentCache = errors.New("filter listed in index but transmission data missing from cache")
)

// DownloadError wraps a remote-fetch failure for a single filter.
type DownloadError struct {
	ID  string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading filter %s: %v", e.ID, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
