package fetcher

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("contacts.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = DetectFormat("/tmp/Contacts.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = DetectFormat("contacts.txt")
	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	in := "Name,Email\nAnna,anna@acme.com\nJohn,john@acme.com\n"
	wb, err := LoadCSV(strings.NewReader(in), "contacts")
	require.NoError(t, err)

	require.Len(t, wb.Sheets, 1)
	s := wb.Sheets[0]
	assert.Equal(t, "contacts", s.Name)
	assert.Equal(t, []string{"Name", "Email"}, s.Header)
	assert.Equal(t, 2, s.NumRows())

	v, err := s.Cell(2, 2)
	require.NoError(t, err)
	assert.Equal(t, "john@acme.com", v)
}

func TestLoadCSV_RaggedRows(t *testing.T) {
	in := "Name,Email\nAnna\nJohn,john@acme.com,extra\n"
	wb, err := LoadCSV(strings.NewReader(in), "s")
	require.NoError(t, err)

	s := wb.Sheets[0]
	// widest row extends the header
	assert.Equal(t, 3, s.NumCols())

	v, err := s.Cell(1, 2)
	require.NoError(t, err)
	assert.Empty(t, v)

	v, err = s.Cell(2, 3)
	require.NoError(t, err)
	assert.Equal(t, "extra", v)
}

func TestLoadCSV_Empty(t *testing.T) {
	_, err := LoadCSV(strings.NewReader(""), "s")
	assert.Error(t, err)
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.csv")
	in := "Name,Email\nAnna,anna@acme.com\n"
	wb, err := LoadCSV(strings.NewReader(in), "contacts")
	require.NoError(t, err)

	require.NoError(t, wb.Sheets[0].SetCell(1, 2, "anna.berg@acme.com"))
	require.NoError(t, Save(wb, path))

	back, err := Load(path)
	require.NoError(t, err)
	v, err := back.Sheets[0].Cell(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "anna.berg@acme.com", v)
}

func TestXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.xlsx")

	wb, err := LoadCSV(strings.NewReader("Name,Email\nAnna,anna@acme.com\n"), "Contacts")
	require.NoError(t, err)
	wb.AddSheet("Empty", []string{"Col"})

	require.NoError(t, WriteXLSX(wb, path))

	back, err := Load(path)
	require.NoError(t, err)
	require.Len(t, back.Sheets, 2)

	s := back.Sheet("Contacts")
	require.NotNil(t, s)
	assert.Equal(t, []string{"Name", "Email"}, s.Header)
	v, err := s.Cell(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "anna@acme.com", v)

	empty := back.Sheet("Empty")
	require.NotNil(t, empty)
	assert.Zero(t, empty.NumRows())
}

func TestSaveMultiSheetCSVFails(t *testing.T) {
	wb, err := LoadCSV(strings.NewReader("A\n1\n"), "one")
	require.NoError(t, err)
	wb.AddSheet("two", []string{"B"})

	err = Save(wb, filepath.Join(t.TempDir(), "out.csv"))
	assert.Error(t, err)
}
