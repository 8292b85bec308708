package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/mailclean/internal/table"
)

// LoadXLSX reads every sheet of an XLSX file into a workbook. The first
// row of each sheet is its header; sheets without any rows are loaded
// empty.
func LoadXLSX(path string) (*table.Workbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}

	var wb table.Workbook
	for _, src := range f.Sheets {
		var header []string
		if len(src.Rows) > 0 {
			header = rowToStrings(src.Rows[0])
		}
		sheet := wb.AddSheet(src.Name, header)
		for _, row := range src.Rows[min(1, len(src.Rows)):] {
			sheet.AppendRow(rowToStrings(row))
		}
	}
	return &wb, nil
}

// WriteXLSX serializes the workbook to an XLSX file at path.
func WriteXLSX(wb *table.Workbook, path string) error {
	f := xlsx.NewFile()
	for _, sheet := range wb.Sheets {
		dst, err := f.AddSheet(sheet.Name)
		if err != nil {
			return eris.Wrapf(err, "xlsx: add sheet %s", sheet.Name)
		}
		headerRow := dst.AddRow()
		for _, h := range sheet.Header {
			headerRow.AddCell().SetString(h)
		}
		for row := 1; row <= sheet.NumRows(); row++ {
			dstRow := dst.AddRow()
			for _, v := range sheet.Row(row) {
				dstRow.AddCell().SetString(v)
			}
		}
	}
	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
