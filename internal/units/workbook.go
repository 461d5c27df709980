package units

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var wholeFloatForm = regexp.MustCompile(`^-?\d+\.0+$`)

var (
	ErrUnsupportedFormat  = errors.New("unsupported spreadsheet format")
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
)

// Sheet is the first worksheet of a workbook as text, indexed by zero-based row.
type Sheet [][]string

// Cell returns the value at a zero-based row and column, or "" when absent.
func (s Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s) {
		return ""
	}
	cells := s[row]
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}

// SupportedExtension reports whether filename carries an importable extension.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// OpenWorkbook loads the first sheet of an .xlsx or .xls upload into memory.
func OpenWorkbook(filename string, data []byte) (Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return readXLSX(data)
	case ".xls":
		return readXLS(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func readXLSX(data []byte) (Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadableWorkbook)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	trimWholeNumbers(f, sheets[0], rows)
	return Sheet(rows), nil
}

// trimWholeNumbers rewrites numeric cells stored as "101.0" to "101". Text
// cells keep their exact value, so a unit literally named "1.0" survives.
func trimWholeNumbers(f *excelize.File, sheet string, rows [][]string) {
	for r, row := range rows {
		for c, v := range row {
			if !wholeFloatForm.MatchString(v) {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			typ, err := f.GetCellType(sheet, name)
			if err != nil {
				continue
			}
			if typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset {
				row[c] = v[:strings.IndexByte(v, '.')]
			}
		}
	}
}

func readXLS(data []byte) (sheet Sheet, err error) {
	// The legacy reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			sheet = nil
			err = fmt.Errorf("%w: %v", ErrUnreadableWorkbook, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadableWorkbook)
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, fmt.Errorf("%w: first sheet is unreadable", ErrUnreadableWorkbook)
	}

	rows := make(Sheet, 0, int(ws.MaxRow)+1)
	for r := 0; r <= int(ws.MaxRow); r++ {
		row := ws.Row(r)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		last := row.LastCol()
		cells := make([]string, last)
		for c := 0; c < last; c++ {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
