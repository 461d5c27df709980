package units

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSupportedExtension(t *testing.T) {
	require.True(t, SupportedExtension("units.xlsx"))
	require.True(t, SupportedExtension("UNITS.XLS"))
	require.False(t, SupportedExtension("units.csv"))
	require.False(t, SupportedExtension("units"))
}

func TestOpenWorkbookRejectsUnknownExtension(t *testing.T) {
	_, err := OpenWorkbook("units.ods", []byte("x"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestOpenWorkbookRejectsGarbage(t *testing.T) {
	_, err := OpenWorkbook("units.xlsx", []byte("not a zip file"))
	require.ErrorIs(t, err, ErrUnreadableWorkbook)

	_, err = OpenWorkbook("units.xls", []byte("not an ole2 file"))
	require.ErrorIs(t, err, ErrUnreadableWorkbook)
}

func TestSheetCellOutOfRange(t *testing.T) {
	s := Sheet{{"a", "b"}, nil}
	require.Equal(t, "b", s.Cell(0, 1))
	require.Equal(t, "", s.Cell(0, 5))
	require.Equal(t, "", s.Cell(1, 0))
	require.Equal(t, "", s.Cell(9, 0))
	require.Equal(t, "", s.Cell(-1, 0))
}

func TestOpenWorkbookTrimsWholeNumbersInNumericCellsOnly(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellDefault("Sheet1", "A1", "101.0"))
	require.NoError(t, f.SetCellStr("Sheet1", "A2", "1.0"))
	require.NoError(t, f.SetCellDefault("Sheet1", "A3", "42.50"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	sheet, err := OpenWorkbook("units.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, "101", sheet.Cell(0, 0))
	require.Equal(t, "1.0", sheet.Cell(1, 0))
	require.Equal(t, "42.50", sheet.Cell(2, 0))
}
