package flatfile

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
)

type csvTable struct {
	path string
}

func (t *csvTable) Path() string { return t.path }

func (t *csvTable) Exists() (bool, error) { return fileExists(t.path) }

func (t *csvTable) Read() ([]string, [][]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

func (t *csvTable) Write(header []string, rows [][]string) error {
	pattern := "." + filepath.Base(t.path) + ".*.tmp"
	return replaceFile(t.path, pattern, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		return cw.WriteAll(rows)
	})
}
