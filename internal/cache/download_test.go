package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"filtercache/internal/filterid"
	"filtercache/internal/votable"
)

func TestFetchIndexCachesAndTouches(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{index: newIndex("Keck/NIRC2.Kp", "Palomar/ZTF.g")}
	d, marker, _ := newTestDownloader(t, fetcher)
	cacheDir := t.TempDir()

	index, err := d.FetchIndex(context.Background(), cacheDir)
	if err != nil {
		t.Fatalf("FetchIndex failed: %v", err)
	}

	if index.NumRows() != 2 {
		t.Errorf("expected 2 index rows, got %d", index.NumRows())
	}

	if marker.touches != 1 {
		t.Errorf("expected 1 timestamp touch, got %d", marker.touches)
	}

	cached, loadErr := LoadIndex(cacheDir)
	if loadErr != nil {
		t.Fatalf("index not cached: %v", loadErr)
	}

	if diff := cmp.Diff(index, cached); diff != "" {
		t.Errorf("cached index mismatch (-fetched +cached):\n%s", diff)
	}
}

func TestFetchOneWritesCanonicalPath(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		transmissions: map[string]votable.Table{"Keck/NIRC2.Kp": newCurve()},
	}
	d, _, _ := newTestDownloader(t, fetcher)
	cacheDir := t.TempDir()

	// wsynphot-style ID on the way in, SVO form on the wire.
	err := d.FetchOne(context.Background(), "Keck/NIRC2/Kp", cacheDir)
	if err != nil {
		t.Fatalf("FetchOne failed: %v", err)
	}

	if len(fetcher.fetched) != 1 || fetcher.fetched[0] != "Keck/NIRC2.Kp" {
		t.Errorf("expected fetch of canonical SVO ID, got %v", fetcher.fetched)
	}

	id, _ := filterid.Parse("Keck/NIRC2/Kp")

	_, statErr := os.Stat(id.Path(cacheDir))
	if statErr != nil {
		t.Errorf("expected transmission file at canonical path: %v", statErr)
	}
}

func TestFetchOneWrapsFailure(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{transmissions: map[string]votable.Table{}}
	d, _, _ := newTestDownloader(t, fetcher)

	err := d.FetchOne(context.Background(), "Keck/NIRC2/Kp", t.TempDir())

	var dlErr *DownloadError

	if !errors.As(err, &dlErr) {
		t.Fatalf("expected *DownloadError, got %v", err)
	}

	if dlErr.ID != "Keck/NIRC2/Kp" {
		t.Errorf("expected failing ID in error, got %q", dlErr.ID)
	}
}

func TestFetchOneMalformedID(t *testing.T) {
	t.Parallel()

	d, _, _ := newTestDownloader(t, &fakeFetcher{})

	err := d.FetchOne(context.Background(), "garbage", t.TempDir())
	if !errors.Is(err, filterid.ErrMalformedID) {
		t.Errorf("expected wrapped ErrMalformedID, got %v", err)
	}
}

func TestFetchManyContinuesOnError(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		transmissions: map[string]votable.Table{
			"Keck/NIRC2.Kp": newCurve(),
			"Palomar/ZTF.g": newCurve(),
		},
	}
	d, _, logBuf := newTestDownloader(t, fetcher)
	cacheDir := t.TempDir()

	// The malformed ID in the middle must not stop the batch.
	d.FetchMany(context.Background(), []string{"Keck/NIRC2/Kp", "malformed", "Palomar/ZTF/g"}, cacheDir)

	for _, raw := range []string{"Keck/NIRC2/Kp", "Palomar/ZTF/g"} {
		id, _ := filterid.Parse(raw)

		_, statErr := os.Stat(id.Path(cacheDir))
		if statErr != nil {
			t.Errorf("expected %s to be downloaded: %v", raw, statErr)
		}
	}

	logs := logBuf.String()
	if !strings.Contains(logs, "could not be downloaded") || !strings.Contains(logs, "malformed") {
		t.Errorf("expected a logged failure naming the bad ID, got:\n%s", logs)
	}

	if got := strings.Count(logs, "could not be downloaded"); got != 1 {
		t.Errorf("expected exactly 1 failure log, got %d", got)
	}
}

func TestFetchAllDownloadsEverything(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		index: newIndex("Keck/NIRC2.Kp", "Palomar/ZTF.g"),
		transmissions: map[string]votable.Table{
			"Keck/NIRC2.Kp": newCurve(),
			"Palomar/ZTF.g": newCurve(),
		},
	}
	d, marker, _ := newTestDownloader(t, fetcher)
	cacheDir := t.TempDir()

	err := d.FetchAll(context.Background(), cacheDir)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	want := []string{"Keck/NIRC2.Kp", "Palomar/ZTF.g"}
	if diff := cmp.Diff(want, fetcher.fetched); diff != "" {
		t.Errorf("fetched IDs mismatch (-want +got):\n%s", diff)
	}

	if marker.touches != 1 {
		t.Errorf("expected 1 timestamp touch, got %d", marker.touches)
	}

	// Every filter is loadable afterwards.
	for _, raw := range want {
		_, loadErr := LoadTransmission(raw, cacheDir)
		if loadErr != nil {
			t.Errorf("LoadTransmission(%s) failed: %v", raw, loadErr)
		}
	}
}

func TestFetchAllIndexFetchFails(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{indexErr: errors.New("service down")}
	d, marker, _ := newTestDownloader(t, fetcher)

	err := d.FetchAll(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("expected error when index fetch fails")
	}

	if marker.touches != 0 {
		t.Errorf("expected no timestamp touch on failure, got %d", marker.touches)
	}
}
