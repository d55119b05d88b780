package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

const stampFileName = "last-update"

const stampDirPerms = 0o750

// Marker persists the "cache last updated" timestamp in a small stamp
// file kept outside the cache tree, so wiping the cache does not lose
// the freshness record and pruning never sees a stray file.
type Marker struct {
	path string
}

// NewMarker returns a Marker storing its stamp in dir (normally the
// app config directory; see StampDir).
func NewMarker(dir string) *Marker {
	return &Marker{path: filepath.Join(dir, stampFileName)}
}

// StampDir returns the default directory for the stamp file, derived
// the same way as the global config path.
func StampDir(env []string) string {
	path := globalConfigPath(env)
	if path == "" {
		return appDir
	}

	return filepath.Dir(path)
}

// TouchUpdateTimestamp records the current time as the last cache
// update.
func (m *Marker) TouchUpdateTimestamp() error {
	mkdirErr := os.MkdirAll(filepath.Dir(m.path), stampDirPerms)
	if mkdirErr != nil {
		return fmt.Errorf("creating stamp directory: %w", mkdirErr)
	}

	stamp := time.Now().UTC().Format(time.RFC3339) + "\n"

	writeErr := atomic.WriteFile(m.path, bytes.NewReader([]byte(stamp)))
	if writeErr != nil {
		return fmt.Errorf("writing update stamp: %w", writeErr)
	}

	return nil
}

// LastUpdate returns the recorded last update time. The zero time and
// nil error mean no update has been recorded yet.
func (m *Marker) LastUpdate() (time.Time, error) {
	data, readErr := os.ReadFile(m.path) //nolint:gosec // path is constructed from config dir
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return time.Time{}, nil
		}

		return time.Time{}, fmt.Errorf("reading update stamp: %w", readErr)
	}

	stamp, parseErr := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if parseErr != nil {
		return time.Time{}, fmt.Errorf("parsing update stamp: %w", parseErr)
	}

	return stamp, nil
}
