package cache

import (
	"context"
	"fmt"
	"os"
	"slices"

	"filtercache/internal/filterid"
	"filtercache/internal/votable"
)

// Sync reconciles the cache under cacheDir against the remote index.
//
// The cached and freshly fetched indexes are compared as sets of filter
// IDs. Filters no longer listed remotely are deleted (and emptied
// directories pruned), newly listed filters are downloaded with the
// continue-on-error batch policy, and the index file is overwritten
// wholesale with the fresh table. Rows whose ID appears in both sets
// are never diffed: metadata changes without ID churn are absorbed by
// the index overwrite.
//
// Returns true when the cache was modified. When the ID sets are equal
// the index file is left untouched (only the update timestamp is
// refreshed) and Sync returns false.
//
// Requires a prior full download: propagates ErrMissingIndex otherwise.
func (d *Downloader) Sync(ctx context.Context, cacheDir string) (bool, error) {
	cached, loadErr := LoadIndex(cacheDir)
	if loadErr != nil {
		return false, loadErr
	}

	oldIDs, ok := cached.Column(IndexKey)
	if !ok {
		return false, fmt.Errorf("%w: cached index has no %s column", votable.ErrDecode, IndexKey)
	}

	d.log.Info("fetching latest filter index")

	fresh, fetchErr := d.fetcher.FetchIndex(ctx)
	if fetchErr != nil {
		return false, fmt.Errorf("fetching filter index: %w", fetchErr)
	}

	newIDs, ok := fresh.Column(IndexKey)
	if !ok {
		return false, fmt.Errorf("%w: fetched index has no %s column", votable.ErrDecode, IndexKey)
	}

	oldSet := toSet(oldIDs)
	newSet := toSet(newIDs)

	if setsEqual(oldSet, newSet) {
		d.log.Info("filter data is already up-to-date")

		touchErr := d.marker.TouchUpdateTimestamp()
		if touchErr != nil {
			return false, fmt.Errorf("recording cache update time: %w", touchErr)
		}

		return false, nil
	}

	d.log.Info("removing outdated filters")

	removeErr := d.removeFilters(diff(oldSet, newSet), cacheDir)
	if removeErr != nil {
		return false, removeErr
	}

	pruneErr := PruneEmptyDirs(cacheDir)
	if pruneErr != nil {
		return false, pruneErr
	}

	d.log.Info("caching new filters")
	d.FetchMany(ctx, diff(newSet, oldSet), cacheDir)

	writeErr := votable.Write(fresh, filterid.IndexPath(cacheDir))
	if writeErr != nil {
		return false, fmt.Errorf("caching filter index: %w", writeErr)
	}

	touchErr := d.marker.TouchUpdateTimestamp()
	if touchErr != nil {
		return false, fmt.Errorf("recording cache update time: %w", touchErr)
	}

	return true, nil
}

// removeFilters deletes the transmission files of the given filter IDs.
// A missing file is tolerated: it may never have downloaded in a prior
// partial run.
func (d *Downloader) removeFilters(ids []string, cacheDir string) error {
	for _, rawID := range ids {
		id, parseErr := filterid.Parse(rawID)
		if parseErr != nil {
			return parseErr
		}

		removeErr := os.Remove(id.Path(cacheDir))
		if removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("removing outdated filter %s: %w", id, removeErr)
		}
	}

	return nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}

	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}

	return true
}

// diff returns the members of a not present in b, sorted for stable
// iteration order.
func diff(a, b map[string]struct{}) []string {
	var out []string

	for id := range a {
		if _, ok := b[id]; !ok {
			out = append(out, id)
		}
	}

	slices.Sort(out)

	return out
}
