package flatfile

import (
	"io"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

type xlsxTable struct {
	path string
}

func (t *xlsxTable) Path() string { return t.path }

func (t *xlsxTable) Exists() (bool, error) { return fileExists(t.path) }

func (t *xlsxTable) Read() ([]string, [][]string, error) {
	f, err := excelize.OpenFile(t.path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	all, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

func (t *xlsxTable) Write(header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	pattern := "." + filepath.Base(t.path) + ".*.tmp"
	return replaceFile(t.path, pattern, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
}

func setRow(f *excelize.File, sheet string, n int, row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	return f.SetSheetRow(sheet, cell, &values)
}
