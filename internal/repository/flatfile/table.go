// Package flatfile stores the clinic's tables as whole files on disk. Every
// write replaces the file; there is no locking and no cross-file transaction.
package flatfile

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
)

// Table reads and writes one tabular file, header row first.
type Table interface {
	Path() string
	Exists() (bool, error)
	// Read returns the header and data rows. A missing file yields fs.ErrNotExist.
	Read() (header []string, rows [][]string, err error)
	Write(header []string, rows [][]string) error
}

// Open picks a codec from the file extension.
func Open(path string) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return &csvTable{path: path}, nil
	case ".xlsx":
		return &xlsxTable{path: path}, nil
	default:
		return nil, fmt.Errorf("unsupported table format %q", path)
	}
}

// MustOpen is Open for paths fixed at startup.
func MustOpen(path string) Table {
	t, err := Open(path)
	if err != nil {
		panic(err)
	}
	return t
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// replaceFile writes through a temp file in the same directory and renames it
// over path, so readers never see a half-written table.
func replaceFile(path, pattern string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// records maps data rows onto the header so column order in the file does
// not matter to callers. Short rows are padded with empty cells.
func records(header []string, rows [][]string) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[strings.TrimSpace(col)] = row[i]
			} else {
				rec[strings.TrimSpace(col)] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readErr(t Table, err error) error {
	return apperrors.Storage("read", t.Path(), err)
}

func writeErr(t Table, err error) error {
	return apperrors.Storage("write", t.Path(), err)
}
