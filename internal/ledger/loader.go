package ledger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Loader discovers revenue files in a directory and assembles the canonical
// table. It holds no state between calls; repeated loads re-read every file.
type Loader struct {
	prefix     string
	ext        string
	normalizer *Normalizer
	logger     *slog.Logger
}

// NewLoader creates a loader for files named <prefix>-<YYYY><ext>.
func NewLoader(prefix, ext string, mode Mode, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		prefix:     prefix,
		ext:        ext,
		normalizer: NewNormalizer(mode, logger),
		logger:     logger,
	}
}

// Load normalizes every matching file under dir and returns the
// concatenated canonical table. Concatenation is append-only: records keep
// file order (lexical, which is chronological thanks to zero-padded years)
// then in-file emission order, and overlapping periods across files are not
// deduplicated. One malformed file aborts the whole load.
func (l *Loader) Load(dir string) (Table, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}

	pattern := filepath.Join(dir, l.prefix+"-*"+l.ext)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatchingFiles, pattern)
	}
	sort.Strings(matches)

	var table Table
	for _, path := range matches {
		records, err := l.normalizer.Normalize(path)
		if err != nil {
			return nil, err
		}
		table = append(table, records...)
	}

	// Label consolidation is a total replace over the concatenated table;
	// unmapped labels pass through unchanged.
	for i := range table {
		table[i].Specification = CanonicalLabel(table[i].Specification)
	}

	l.logger.Info("loaded revenue directory",
		slog.String("dir", dir),
		slog.Int("files", len(matches)),
		slog.Int("records", len(table)))

	return table, nil
}
