package units

// Sheet layout shared by the importer and the report builder. Rows are 1-based
// as displayed by spreadsheet applications.
const (
	TitleRow     = 1
	SummaryRow   = 2
	HeaderRow    = 4
	FirstDataRow = 5

	DefaultMaxRows = 1000
	NoTowerLabel   = "N/A"
)

const (
	colNumber = iota
	colTower
	colFloor
	colIdentification
	colArea
	colIdealFraction
	colStatus
	colOwner
	colOwnerPhone
	colParkingSpaces
	colKeyDelivery
	colDepositLocation
	ColumnCount
)

// Headers lists the column titles in sheet order.
var Headers = [ColumnCount]string{
	colNumber:          "Unit Number",
	colTower:           "Tower",
	colFloor:           "Floor",
	colIdentification:  "Identification",
	colArea:            "Area (m²)",
	colIdealFraction:   "Ideal Fraction",
	colStatus:          "Status",
	colOwner:           "Owner",
	colOwnerPhone:      "Owner Phone",
	colParkingSpaces:   "Parking Spaces",
	colKeyDelivery:     "Key Delivery",
	colDepositLocation: "Deposit Location",
}
