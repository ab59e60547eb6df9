package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTestXLSX(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "businesses.xlsx")

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Businesses")
	require.NoError(t, err)

	addRow := func(values ...string) {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().Value = v
		}
	}
	addRow("id", "name", "lat", "lon", "category")
	addRow("b1", "Corner Cafe", "41.8810", "-87.6320", "cafe")
	addRow("b2", "Bad Row", "", "-87.6300", "cafe")
	addRow("b3", "Main Grocery", "41.8855", "-87.6270", "grocery")

	require.NoError(t, f.Save(path))
	return path
}

func TestReadBusinessesXLSX(t *testing.T) {
	path := writeTestXLSX(t)

	businesses, err := ReadBusinessesXLSX(path, XLSXOptions{})
	require.NoError(t, err)

	require.Len(t, businesses, 2, "row with missing latitude is skipped")
	assert.Equal(t, "b1", businesses[0].ID)
	assert.Equal(t, "Corner Cafe", businesses[0].Name)
	assert.Equal(t, 41.8810, businesses[0].Location.Lat)
	assert.Equal(t, "b3", businesses[1].ID)
}

func TestReadBusinessesXLSX_SheetByName(t *testing.T) {
	path := writeTestXLSX(t)

	_, err := ReadBusinessesXLSX(path, XLSXOptions{SheetName: "Businesses"})
	assert.NoError(t, err)

	_, err = ReadBusinessesXLSX(path, XLSXOptions{SheetName: "Nope"})
	assert.Error(t, err)
}

func TestReadBusinessesXLSX_SheetIndexOutOfRange(t *testing.T) {
	path := writeTestXLSX(t)

	_, err := ReadBusinessesXLSX(path, XLSXOptions{SheetIndex: 3})
	assert.Error(t, err)
}

func TestReadBusinessesXLSX_MissingFile(t *testing.T) {
	_, err := ReadBusinessesXLSX(filepath.Join(t.TempDir(), "nope.xlsx"), XLSXOptions{})
	assert.Error(t, err)
}
