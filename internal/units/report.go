package units

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	ReportSheet            = "Units"
	DefaultMaxColumnWidth  = 50.0
	minColumnWidth         = 10.0
	columnWidthPadding     = 2
	reportTitleFontSize    = 14
	reportHeaderFillColour = "D9E1F2"
)

type ReportOptions struct {
	// MaxColumnWidth caps auto-sized columns. Zero means DefaultMaxColumnWidth.
	MaxColumnWidth float64
}

// BuildReport renders the building's units in the import layout, followed by
// a unit count summary. units must already be ordered for display.
func BuildReport(building Building, units []Unit, opts ReportOptions) ([]byte, error) {
	return buildWorkbook(building, units, opts, true)
}

// BuildTemplate renders an empty sheet in the import layout.
func BuildTemplate(building Building, opts ReportOptions) ([]byte, error) {
	return buildWorkbook(building, nil, opts, false)
}

func buildWorkbook(building Building, units []Unit, opts ReportOptions, withSummary bool) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	w := &reportWriter{f: f, maxWidth: opts.MaxColumnWidth}
	if w.maxWidth <= 0 {
		w.maxWidth = DefaultMaxColumnWidth
	}

	if err := w.writeTitle(building); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}
	if err := w.writeHeader(); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, u := range units {
		if err := w.writeUnit(FirstDataRow+i, u); err != nil {
			return nil, fmt.Errorf("unit %s: %w", u.Number, err)
		}
	}
	if withSummary {
		// One blank row keeps the summary out of the importer's data window.
		if err := w.writeSummary(FirstDataRow+len(units)+1, units); err != nil {
			return nil, fmt.Errorf("write summary: %w", err)
		}
	}
	if err := w.fitColumns(); err != nil {
		return nil, fmt.Errorf("fit columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

type reportWriter struct {
	f        *excelize.File
	maxWidth float64
	widths   [ColumnCount]int
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}

func (w *reportWriter) track(col int, s string) {
	if col >= ColumnCount {
		return
	}
	if n := utf8.RuneCountInString(s); n > w.widths[col] {
		w.widths[col] = n
	}
}

func (w *reportWriter) str(col, row int, s string) error {
	w.track(col, s)
	return w.f.SetCellStr(ReportSheet, cellName(col, row), s)
}

func (w *reportWriter) writeTitle(b Building) error {
	style, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: reportTitleFontSize},
	})
	if err != nil {
		return err
	}
	first, last := cellName(0, TitleRow), cellName(ColumnCount-1, TitleRow)
	if err := w.f.SetCellStr(ReportSheet, first, "Units - "+b.Name); err != nil {
		return err
	}
	if err := w.f.MergeCell(ReportSheet, first, last); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(ReportSheet, first, first, style); err != nil {
		return err
	}

	summary := b.Name
	if b.Address != "" {
		summary += " - " + b.Address
	}
	return w.f.SetCellStr(ReportSheet, cellName(0, SummaryRow), summary)
}

func (w *reportWriter) writeHeader() error {
	style, err := w.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{reportHeaderFillColour}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}
	for col, header := range Headers {
		if err := w.str(col, HeaderRow, header); err != nil {
			return err
		}
	}
	return w.f.SetCellStyle(ReportSheet, cellName(0, HeaderRow), cellName(ColumnCount-1, HeaderRow), style)
}

func (w *reportWriter) writeUnit(row int, u Unit) error {
	tower := u.TowerName
	if u.TowerID == nil || tower == "" {
		tower = NoTowerLabel
	}
	area := u.Area.Round(AreaPlaces).InexactFloat64()
	fraction := u.IdealFraction.Round(IdealFractionPlaces).InexactFloat64()

	texts := []struct {
		col int
		val string
	}{
		{colNumber, u.Number},
		{colTower, tower},
		{colIdentification, Identifications.CodeToLabel(u.Identification)},
		{colStatus, Statuses.CodeToLabel(u.Status)},
		{colOwner, u.Owner},
		{colOwnerPhone, u.OwnerPhone},
		{colKeyDelivery, KeyDeliveryLabel(u.KeyDelivery)},
		{colDepositLocation, u.DepositLocation},
	}
	for _, t := range texts {
		if err := w.str(t.col, row, t.val); err != nil {
			return err
		}
	}

	if err := w.f.SetCellInt(ReportSheet, cellName(colFloor, row), int64(u.Floor)); err != nil {
		return err
	}
	w.track(colFloor, fmt.Sprint(u.Floor))
	if err := w.f.SetCellFloat(ReportSheet, cellName(colArea, row), area, -1, 64); err != nil {
		return err
	}
	w.track(colArea, u.Area.StringFixed(AreaPlaces))
	if err := w.f.SetCellFloat(ReportSheet, cellName(colIdealFraction, row), fraction, -1, 64); err != nil {
		return err
	}
	w.track(colIdealFraction, u.IdealFraction.StringFixed(IdealFractionPlaces))
	if err := w.f.SetCellInt(ReportSheet, cellName(colParkingSpaces, row), int64(u.ParkingSpaces)); err != nil {
		return err
	}
	w.track(colParkingSpaces, fmt.Sprint(u.ParkingSpaces))
	return nil
}

func (w *reportWriter) writeSummary(row int, units []Unit) error {
	bold, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	counts := make(map[Status]int, 2)
	for _, u := range units {
		counts[u.Status]++
	}

	lines := []struct {
		label string
		count int
	}{{"Total Units", len(units)}}
	for _, c := range Statuses.All() {
		lines = append(lines, struct {
			label string
			count int
		}{c.Label, counts[c.Code]})
	}

	for i, line := range lines {
		r := row + i
		if err := w.str(0, r, line.label); err != nil {
			return err
		}
		if err := w.f.SetCellInt(ReportSheet, cellName(1, r), int64(line.count)); err != nil {
			return err
		}
	}
	return w.f.SetCellStyle(ReportSheet, cellName(0, row), cellName(0, row+len(lines)-1), bold)
}

func (w *reportWriter) fitColumns() error {
	for col, n := range w.widths {
		width := float64(n + columnWidthPadding)
		if width < minColumnWidth {
			width = minColumnWidth
		}
		if width > w.maxWidth {
			width = w.maxWidth
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(ReportSheet, name, name, width); err != nil {
			return err
		}
	}
	return nil
}
