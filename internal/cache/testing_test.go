package cache

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"filtercache/internal/votable"
)

// fakeFetcher serves canned tables and records what was asked for.
type fakeFetcher struct {
	index         votable.Table
	indexErr      error
	transmissions map[string]votable.Table
	indexCalls    int
	fetched       []string
}

func (f *fakeFetcher) FetchIndex(_ context.Context) (votable.Table, error) {
	f.indexCalls++

	if f.indexErr != nil {
		return votable.Table{}, f.indexErr
	}

	return f.index, nil
}

func (f *fakeFetcher) FetchTransmission(_ context.Context, svoID string) (votable.Table, error) {
	f.fetched = append(f.fetched, svoID)

	table, ok := f.transmissions[svoID]
	if !ok {
		return votable.Table{}, fmt.Errorf("no such filter: %s", svoID)
	}

	return table, nil
}

// fakeMarker counts timestamp touches.
type fakeMarker struct {
	touches int
}

func (m *fakeMarker) TouchUpdateTimestamp() error {
	m.touches++
	return nil
}

// newIndex builds an index table with the given SVO filter IDs plus an
// opaque metadata column.
func newIndex(ids ...string) votable.Table {
	t := votable.Table{
		Fields: []votable.Field{
			{Name: IndexKey, Datatype: "char"},
			{Name: "Facility", Datatype: "char"},
		},
	}

	for _, id := range ids {
		t.Rows = append(t.Rows, []string{id, "meta-" + id})
	}

	return t
}

// newCurve builds a tiny transmission table.
func newCurve() votable.Table {
	return votable.Table{
		Fields: []votable.Field{
			{Name: "Wavelength", Datatype: "double", Unit: "AA"},
			{Name: "Transmission", Datatype: "double"},
		},
		Rows: [][]string{{"5000", "0.5"}},
	}
}

// newTestDownloader wires a Downloader to fakes, with the log captured
// into the returned buffer.
func newTestDownloader(t *testing.T, fetcher *fakeFetcher) (*Downloader, *fakeMarker, *bytes.Buffer) {
	t.Helper()

	var logBuf bytes.Buffer

	log := slog.New(slog.NewTextHandler(&logBuf, nil))
	marker := &fakeMarker{}

	return NewDownloader(fetcher, marker, log), marker, &logBuf
}

// errorsLogged reports whether the captured log holds exactly n
// download failure lines.
func errorsLogged(logs string, n int) bool {
	return strings.Count(logs, "could not be downloaded") == n
}
