package statsbomb

import (
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/pable/go-sb-features/internal/model"
)

// MatchFile is one decoded events file.
type MatchFile struct {
	Path    string
	MatchID int
	Events  []model.Event
}

var eventSuffixes = []string{".json", ".json.gz", ".json.zst"}

// IsEventFile reports whether path looks like "<match_id>.json[.gz|.zst]".
func IsEventFile(path string) bool {
	_, err := MatchIDFromPath(path)
	return err == nil
}

// MatchIDFromPath parses the match id out of an open-data events file name.
func MatchIDFromPath(path string) (int, error) {
	base := filepath.Base(path)
	for _, suf := range eventSuffixes {
		if stem, ok := strings.CutSuffix(base, suf); ok {
			id, err := strconv.Atoi(stem)
			if err != nil {
				return 0, fmt.Errorf("%w: %s: file name is not a match id", ErrUnsupportedInput, path)
			}
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %s: expected .json, .json.gz or .json.zst", ErrUnsupportedInput, path)
}

// LoadFile decodes one events file, decompressing by extension.
func LoadFile(path string) (*MatchFile, error) {
	matchID, err := MatchIDFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events: %w", err)
	}
	defer f.Close()

	r, closeFn, err := decompress(f, path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	events, err := Decode(r, matchID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &MatchFile{Path: path, MatchID: matchID, Events: events}, nil
}

func decompress(r io.Reader, path string) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd reader: %w", err)
		}
		return zr, zr.Close, nil
	case strings.HasSuffix(path, ".gz"):
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip reader: %w", err)
		}
		return gr, func() { gr.Close() }, nil
	default:
		return r, func() {}, nil
	}
}

// ExpandPaths resolves files and directories into a sorted list of event files.
// Directories are walked recursively and non-event files inside them are skipped.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			if !IsEventFile(p) {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedInput, p)
			}
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsEventFile(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	sort.Strings(out)
	return out, nil
}

// SaveFile writes a raw events file, compressing by the extension of path. It writes
// to a temporary file first so a partial download never looks like an events file.
func SaveFile(path string, raw []byte) error {
	if !IsEventFile(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedInput, path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".partial-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := compress(tmp, path, raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func compress(w io.Writer, path string, raw []byte) error {
	switch {
	case strings.HasSuffix(path, ".zst"):
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return err
		}
		if _, err := zw.Write(raw); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	case strings.HasSuffix(path, ".gz"):
		gw := gzip.NewWriter(w)
		if _, err := gw.Write(raw); err != nil {
			gw.Close()
			return err
		}
		return gw.Close()
	default:
		_, err := w.Write(raw)
		return err
	}
}
