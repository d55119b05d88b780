// Package filterid parses astronomical filter identifiers and maps them
// to cache file paths.
//
// A filter is identified by the triple facility/instrument/filterName.
// Identifiers accept '/' and '.' interchangeably as delimiters, so
// "Keck/NIRC2/Kp" and "Keck.NIRC2.Kp" and "Keck/NIRC2.Kp" all name the
// same filter. The SVO Filter Profile Service canonical form is
// "facility/instrument.filterName".
package filterid

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Ext is the extension of persisted VOTable files, including the dot.
const Ext = ".vot"

const segments = 3

// ErrMalformedID reports an identifier that does not split into exactly
// three non-empty segments.
var ErrMalformedID = errors.New("malformed filter ID (want facility/instrument/filter)")

// ID is a parsed filter identifier.
type ID struct {
	Facility   string
	Instrument string
	Filter     string
}

// Parse splits a raw identifier on '/' or '.' delimiters.
// Returns ErrMalformedID unless exactly three non-empty segments result.
func Parse(raw string) (ID, error) {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '.'
	})

	if len(parts) != segments {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformedID, raw)
	}

	// FieldsFunc drops empty segments, so "a//b/c" would pass the length
	// check above while "a//c" would not. Count delimiters to reject
	// identifiers with empty segments.
	if strings.Count(raw, "/")+strings.Count(raw, ".") != segments-1 {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformedID, raw)
	}

	return ID{Facility: parts[0], Instrument: parts[1], Filter: parts[2]}, nil
}

// SVO returns the canonical remote form "facility/instrument.filterName"
// understood by the SVO Filter Profile Service.
func (id ID) SVO() string {
	return id.Facility + "/" + id.Instrument + "." + id.Filter
}

// Path returns the canonical storage path of the filter's transmission
// data under cacheDir.
func (id ID) Path(cacheDir string) string {
	return filepath.Join(cacheDir, id.Facility, id.Instrument, id.Filter+Ext)
}

// Dir returns the directory that holds the filter's transmission file.
func (id ID) Dir(cacheDir string) string {
	return filepath.Join(cacheDir, id.Facility, id.Instrument)
}

// IndexPath returns the path of the cached filter index under cacheDir.
func IndexPath(cacheDir string) string {
	return filepath.Join(cacheDir, "index"+Ext)
}

func (id ID) String() string {
	return id.Facility + "/" + id.Instrument + "/" + id.Filter
}
