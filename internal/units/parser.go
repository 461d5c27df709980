package units

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ParseOptions struct {
	// MaxRows caps the number of data rows read after the header. Zero means DefaultMaxRows.
	MaxRows int
}

// TowerIndex resolves sheet tower names to the building's towers. An exact
// name wins. Otherwise case and spacing are ignored, unless that would match
// more than one tower ("A" and "a").
type TowerIndex struct {
	exact  map[string]Tower
	folded map[string][]Tower
}

func NewTowerIndex(towers []Tower) TowerIndex {
	idx := TowerIndex{
		exact:  make(map[string]Tower, len(towers)),
		folded: make(map[string][]Tower, len(towers)),
	}
	for _, t := range towers {
		idx.exact[StringCell(t.Name)] = t
		key := labelKey(t.Name)
		idx.folded[key] = append(idx.folded[key], t)
	}
	return idx
}

func (idx TowerIndex) Lookup(name string) (Tower, bool) {
	if t, ok := idx.exact[StringCell(name)]; ok {
		return t, true
	}
	if matches := idx.folded[labelKey(name)]; len(matches) == 1 {
		return matches[0], true
	}
	return Tower{}, false
}

// ParseSheet reads data rows starting at FirstDataRow until the first row
// with a blank unit number cell or the row ceiling. Rows that fail
// validation are reported and skipped.
func ParseSheet(sheet Sheet, towers TowerIndex, opts ParseOptions) ([]ParsedRow, []RowError) {
	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	parsed := make([]ParsedRow, 0, min(len(sheet), maxRows))
	var rowErrs []RowError

	for i := 0; i < maxRows; i++ {
		rowNumber := FirstDataRow + i
		idx := rowNumber - 1
		if strings.TrimSpace(sheet.Cell(idx, colNumber)) == "" {
			break
		}

		row, err := parseRow(sheet, idx, towers)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNumber, Message: err.Error()})
			continue
		}
		parsed = append(parsed, row)
	}
	return parsed, rowErrs
}

func parseRow(sheet Sheet, idx int, towers TowerIndex) (row ParsedRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected error reading row: %v", r)
		}
	}()

	cell := func(col int) string { return sheet.Cell(idx, col) }

	number := StringCell(cell(colNumber))
	if number == "" {
		return ParsedRow{}, errors.New("unit number is required")
	}

	area, _ := FloatCell(cell(colArea), 0)
	if area <= 0 {
		return ParsedRow{}, fmt.Errorf("unit %s: area must be greater than zero", number)
	}

	fields := UnitFields{Number: number}

	towerName := StringCell(cell(colTower))
	if towerName != "" && !strings.EqualFold(towerName, NoTowerLabel) {
		tower, ok := towers.Lookup(towerName)
		if !ok {
			return ParsedRow{}, fmt.Errorf("unit %s: tower %q not found in this building", number, towerName)
		}
		id := tower.ID
		fields.TowerID = &id
		fields.TowerName = tower.Name
	}

	fields.Floor, _ = IntCell(cell(colFloor), 1)
	if fields.Floor < 0 {
		fields.Floor = 1
	}
	fields.Identification, _ = Identifications.LabelToCode(cell(colIdentification))
	fields.Area, _ = DecimalCell(cell(colArea), AreaPlaces, decimal.NewFromFloat(area))
	fields.IdealFraction, _ = DecimalCell(cell(colIdealFraction), IdealFractionPlaces, decimal.Zero)
	fields.Status, _ = Statuses.LabelToCode(cell(colStatus))
	fields.Owner = Truncate(StringCell(cell(colOwner)), MaxOwnerLen, "")
	fields.OwnerPhone = Truncate(StringCell(cell(colOwnerPhone)), MaxOwnerPhoneLen, "")
	fields.ParkingSpaces, _ = IntCell(cell(colParkingSpaces), 0)
	if fields.ParkingSpaces < 0 {
		fields.ParkingSpaces = 0
	}
	fields.KeyDelivery = NormalizeKeyDelivery(cell(colKeyDelivery))
	fields.DepositLocation = Truncate(StringCell(cell(colDepositLocation)), MaxDepositLocationLen, "")
	fields.HasDeposit = hasDeposit(fields.DepositLocation)

	if err := validate.Struct(fields); err != nil {
		return ParsedRow{}, fmt.Errorf("unit %s: %s", number, describeValidation(err))
	}
	if !fields.Area.IsPositive() {
		return ParsedRow{}, fmt.Errorf("unit %s: area must be greater than zero", number)
	}

	return ParsedRow{Row: idx + 1, Fields: fields}, nil
}

func hasDeposit(location string) string {
	if location == "" {
		return "no"
	}
	return "yes"
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s exceeds %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s has an invalid value", fe.Field())
	}
}
