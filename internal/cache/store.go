// Package cache maintains the on-disk filter data cache: a filter index
// table at the cache root plus one transmission table per filter under
// facility/instrument/ directories.
//
// Layout, relative to a cache directory:
//
//	index.vot                              filter index
//	<facility>/<instrument>/<filter>.vot   transmission data
//
// Access is single-process and sequential. No file locking is
// performed; callers that need concurrent use must serialize
// externally. Individual file writes are atomic (temp + rename), so
// killing the process mid-operation leaves a structurally valid tree.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"filtercache/internal/filterid"
	"filtercache/internal/votable"
)

// IndexKey is the index column holding the SVO filter ID, the primary
// key for reconciliation.
const IndexKey = "filterID"

// LoadIndex loads the cached filter index from cacheDir.
// Returns ErrMissingIndex when no index file exists.
func LoadIndex(cacheDir string) (votable.Table, error) {
	path := filterid.IndexPath(cacheDir)

	_, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		return votable.Table{}, fmt.Errorf("%w: %s", ErrMissingIndex, cacheDir)
	}

	table, readErr := votable.Read(path)
	if readErr != nil {
		return votable.Table{}, fmt.Errorf("loading filter index: %w", readErr)
	}

	return table, nil
}

// LoadTransmission loads the cached transmission table for the given
// filter identifier (either delimiter style).
//
// When the transmission file is absent the error distinguishes two
// cases via the cached index: the filter is listed there
// (ErrInconsistentCache, re-download to repair) or it is not
// (ErrUnknownFilter, the identifier was never valid).
func LoadTransmission(rawID, cacheDir string) (votable.Table, error) {
	id, parseErr := filterid.Parse(rawID)
	if parseErr != nil {
		return votable.Table{}, parseErr
	}

	path := id.Path(cacheDir)

	_, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		index, indexErr := LoadIndex(cacheDir)
		if indexErr != nil {
			return votable.Table{}, indexErr
		}

		ids, _ := index.Column(IndexKey)
		if slices.Contains(ids, id.SVO()) {
			return votable.Table{}, fmt.Errorf("%w: %s", ErrInconsistentCache, id)
		}

		return votable.Table{}, fmt.Errorf("%w: %s", ErrUnknownFilter, id)
	}

	table, readErr := votable.Read(path)
	if readErr != nil {
		return votable.Table{}, fmt.Errorf("loading transmission data: %w", readErr)
	}

	return table, nil
}

// PruneEmptyDirs removes empty directories below cacheDir, bottom-up so
// that emptying a child makes its parent eligible in the same pass.
// cacheDir itself is never removed.
func PruneEmptyDirs(cacheDir string) error {
	var dirs []string

	walkErr := filepath.WalkDir(cacheDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() && path != cacheDir {
			dirs = append(dirs, path)
		}

		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("scanning cache directories: %w", walkErr)
	}

	// Deepest first.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	for _, dir := range dirs {
		entries, readErr := os.ReadDir(dir)
		if readErr != nil {
			return fmt.Errorf("reading cache directory: %w", readErr)
		}

		if len(entries) == 0 {
			removeErr := os.Remove(dir)
			if removeErr != nil {
				return fmt.Errorf("removing empty directory: %w", removeErr)
			}
		}
	}

	return nil
}
