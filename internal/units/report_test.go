package units

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testBuilding = Building{
	ID:      testBuildingID,
	Name:    "Edifício Aurora",
	Address: "Rua das Flores, 120",
}

func exportFixture() []Unit {
	a := towerA.ID
	c := towerC.ID
	return []Unit{
		{ID: uuid.New(), BuildingID: testBuildingID, UnitFields: UnitFields{
			TowerID: &a, TowerName: towerA.Name, Number: "0101", Floor: 1,
			Area: decimal.RequireFromString("75.50"), IdealFraction: decimal.RequireFromString("0.020000"),
			Identification: IdentificationResidential, Status: StatusOccupied,
			Owner: "Jane Doe", OwnerPhone: "555-1000", ParkingSpaces: 1,
			KeyDelivery: KeyDeliveryYes, HasDeposit: "no",
		}},
		{ID: uuid.New(), BuildingID: testBuildingID, UnitFields: UnitFields{
			TowerID: &c, TowerName: towerC.Name, Number: "1204", Floor: 12,
			Area: decimal.RequireFromString("120.25"), IdealFraction: decimal.RequireFromString("0.123457"),
			Identification: IdentificationCommercial, Status: StatusVacant,
			Owner: "José Álvares", OwnerPhone: "+55 11 99999-0000", ParkingSpaces: 2,
			KeyDelivery: KeyDeliveryPending, DepositLocation: "Subsolo D-12", HasDeposit: "yes",
		}},
		{ID: uuid.New(), BuildingID: testBuildingID, UnitFields: UnitFields{
			Number: "L1", Floor: 0,
			Area: decimal.RequireFromString("33"), IdealFraction: decimal.Zero,
			Identification: IdentificationCommercial, Status: StatusOccupied,
			KeyDelivery: KeyDeliveryNo, HasDeposit: "no",
		}},
	}
}

func TestReportRoundTrip(t *testing.T) {
	units := exportFixture()
	data, err := BuildReport(testBuilding, units, ReportOptions{})
	require.NoError(t, err)

	sheet, err := OpenWorkbook("units.xlsx", data)
	require.NoError(t, err)
	for col, h := range Headers {
		require.Equal(t, h, sheet.Cell(HeaderRow-1, col))
	}

	rows, errs := ParseSheet(sheet, testTowers(), ParseOptions{})
	require.Empty(t, errs)
	require.Len(t, rows, len(units))

	for i, row := range rows {
		want := units[i].UnitFields
		got := row.Fields
		require.Equal(t, want.Number, got.Number)
		require.Equal(t, want.TowerID, got.TowerID)
		require.Equal(t, want.Floor, got.Floor)
		require.True(t, want.Area.Equal(got.Area), "area %s != %s", want.Area, got.Area)
		require.True(t, want.IdealFraction.Equal(got.IdealFraction), "fraction %s != %s", want.IdealFraction, got.IdealFraction)
		require.Equal(t, want.Identification, got.Identification)
		require.Equal(t, want.Status, got.Status)
		require.Equal(t, want.Owner, got.Owner)
		require.Equal(t, want.OwnerPhone, got.OwnerPhone)
		require.Equal(t, want.ParkingSpaces, got.ParkingSpaces)
		require.Equal(t, want.KeyDelivery, got.KeyDelivery)
		require.Equal(t, want.DepositLocation, got.DepositLocation)
		require.Equal(t, want.HasDeposit, got.HasDeposit)
	}
}

func TestReportReimportIntoEmptyBuilding(t *testing.T) {
	units := exportFixture()
	data, err := BuildReport(testBuilding, units, ReportOptions{})
	require.NoError(t, err)
	sheet, err := OpenWorkbook("units.xlsx", data)
	require.NoError(t, err)

	store := newMemoryStore()
	im := NewImporter(store, discardLogger(), DefaultBatchSize, DefaultMaxRows)
	out, err := im.Import(context.Background(), testBuildingID, []Tower{towerA, towerC}, sheet, ApplyOptions{})
	require.NoError(t, err)
	require.Equal(t, len(units), out.Created)
	require.Empty(t, out.ParseErrors)
	require.Empty(t, out.SaveErrors)
}

func TestReportReimportKeepsDecimalLookingNumbersDistinct(t *testing.T) {
	units := []Unit{
		{ID: uuid.New(), BuildingID: testBuildingID, UnitFields: UnitFields{
			Number: "1", Floor: 1, Area: decimal.RequireFromString("40"),
			Identification: IdentificationResidential, Status: StatusVacant, KeyDelivery: KeyDeliveryNo, HasDeposit: "no",
		}},
		{ID: uuid.New(), BuildingID: testBuildingID, UnitFields: UnitFields{
			Number: "1.0", Floor: 1, Area: decimal.RequireFromString("55"),
			Identification: IdentificationResidential, Status: StatusVacant, KeyDelivery: KeyDeliveryNo, HasDeposit: "no",
		}},
	}
	data, err := BuildReport(testBuilding, units, ReportOptions{})
	require.NoError(t, err)
	sheet, err := OpenWorkbook("units.xlsx", data)
	require.NoError(t, err)

	store := newMemoryStore()
	im := NewImporter(store, discardLogger(), DefaultBatchSize, DefaultMaxRows)
	out, err := im.Import(context.Background(), testBuildingID, nil, sheet, ApplyOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, out.Created)
	require.Equal(t, 0, out.Updated)
	require.True(t, store.exists(testBuildingID, "1"))
	require.True(t, store.exists(testBuildingID, "1.0"))
	require.Len(t, store.units, 2)
}

func TestReportLayout(t *testing.T) {
	data, err := BuildReport(testBuilding, exportFixture(), ReportOptions{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{ReportSheet}, f.GetSheetList())

	title, err := f.GetCellValue(ReportSheet, "A1")
	require.NoError(t, err)
	require.Equal(t, "Units - Edifício Aurora", title)

	summary, err := f.GetCellValue(ReportSheet, "A2")
	require.NoError(t, err)
	require.Equal(t, "Edifício Aurora - Rua das Flores, 120", summary)

	blank, err := f.GetCellValue(ReportSheet, "A3")
	require.NoError(t, err)
	require.Empty(t, blank)

	tower, err := f.GetCellValue(ReportSheet, "B7")
	require.NoError(t, err)
	require.Equal(t, NoTowerLabel, tower)

	// Three units in rows 5-7, a blank row, then the summary block.
	expect := map[string]string{
		"A9": "Total Units", "B9": "3",
		"A10": "Vacant", "B10": "1",
		"A11": "Occupied", "B11": "2",
	}
	for cell, want := range expect {
		got, err := f.GetCellValue(ReportSheet, cell)
		require.NoError(t, err)
		require.Equal(t, want, got, cell)
	}
}

func TestReportColumnWidthIsCapped(t *testing.T) {
	units := exportFixture()
	units[0].Owner = strings.Repeat("x", 180)

	data, err := BuildReport(testBuilding, units, ReportOptions{MaxColumnWidth: 30})
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	owner, err := f.GetColWidth(ReportSheet, "H")
	require.NoError(t, err)
	require.Equal(t, 30.0, owner)

	floor, err := f.GetColWidth(ReportSheet, "C")
	require.NoError(t, err)
	require.Equal(t, minColumnWidth, floor)
}

func TestTemplateHasHeaderAndNoData(t *testing.T) {
	data, err := BuildTemplate(testBuilding, ReportOptions{})
	require.NoError(t, err)

	sheet, err := OpenWorkbook("template.xlsx", data)
	require.NoError(t, err)
	require.Equal(t, Headers[0], sheet.Cell(HeaderRow-1, 0))
	require.Equal(t, Headers[ColumnCount-1], sheet.Cell(HeaderRow-1, ColumnCount-1))

	rows, errs := ParseSheet(sheet, testTowers(), ParseOptions{})
	require.Empty(t, rows)
	require.Empty(t, errs)
}
