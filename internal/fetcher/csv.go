package fetcher

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/mailclean/internal/table"
)

// csvSheetName names the single sheet a CSV file loads into.
const csvSheetName = "Sheet1"

// LoadCSV reads CSV content into a single-sheet workbook. The first
// row is the header; short rows are padded to the header width. Rows
// wider than the header extend the header with empty column names so
// no data is dropped.
func LoadCSV(r io.Reader, name string) (*table.Workbook, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("csv: empty input")
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}

	var rows [][]string
	maxWidth := len(header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		if len(record) > maxWidth {
			maxWidth = len(record)
		}
		rows = append(rows, record)
	}

	for len(header) < maxWidth {
		header = append(header, "")
	}

	var wb table.Workbook
	sheet := wb.AddSheet(name, header)
	for _, row := range rows {
		sheet.AppendRow(row)
	}
	return &wb, nil
}

// LoadCSVFile reads the CSV file at path into a single-sheet workbook.
func LoadCSVFile(path string) (*table.Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", path)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name == "" {
		name = csvSheetName
	}
	return LoadCSV(f, name)
}

// WriteCSV serializes one sheet as CSV, header first.
func WriteCSV(w io.Writer, sheet *table.Sheet) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(sheet.Header); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for row := 1; row <= sheet.NumRows(); row++ {
		if err := writer.Write(sheet.Row(row)); err != nil {
			return eris.Wrapf(err, "csv: write row %d", row)
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "csv: flush")
}

// WriteCSVFile writes one sheet to the CSV file at path.
func WriteCSVFile(sheet *table.Sheet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "csv: create %s", path)
	}
	if err := WriteCSV(f, sheet); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "csv: close %s", path)
}
