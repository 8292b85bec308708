// Package fetcher loads tabular input files into workbooks and writes
// cleaned workbooks back out. CSV and XLSX are supported; the format is
// chosen by file extension.
package fetcher

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/mailclean/internal/table"
)

// Format identifies an input or output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat maps a file path to its format by extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("fetcher: unsupported file extension %q", filepath.Ext(path))
	}
}

// Load reads the file at path into a workbook.
func Load(path string) (*table.Workbook, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return LoadXLSX(path)
	}
	return LoadCSVFile(path)
}

// Save writes the workbook to path in the format the extension implies.
// A multi-sheet workbook cannot be saved as CSV.
func Save(wb *table.Workbook, path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	if format == FormatXLSX {
		return WriteXLSX(wb, path)
	}
	if len(wb.Sheets) != 1 {
		return eris.Errorf("fetcher: cannot save %d sheets as csv", len(wb.Sheets))
	}
	return WriteCSVFile(wb.Sheets[0], path)
}
