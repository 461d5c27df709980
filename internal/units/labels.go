package units

import (
	"strings"
)

type Identification string

const (
	IdentificationResidential Identification = "residential"
	IdentificationCommercial  Identification = "commercial"
)

type Status string

const (
	StatusVacant   Status = "vacant"
	StatusOccupied Status = "occupied"
)

const (
	KeyDeliveryYes     = "yes"
	KeyDeliveryNo      = "no"
	KeyDeliveryPending = "pen"
)

// Choice pairs a stored code with its spreadsheet label.
type Choice[T ~string] struct {
	Code  T
	Label string
}

// Choices is a bidirectional code/label table built from one canonical list.
type Choices[T ~string] struct {
	ordered     []Choice[T]
	byLabel     map[string]T
	byCode      map[T]string
	defaultCode T
}

// NewChoices builds both directions from the canonical pairs. Aliases are
// extra labels that resolve to a code but are never emitted.
func NewChoices[T ~string](defaultCode T, pairs []Choice[T], aliases map[string]T) *Choices[T] {
	c := &Choices[T]{
		ordered:     pairs,
		byLabel:     make(map[string]T, len(pairs)*2+len(aliases)),
		byCode:      make(map[T]string, len(pairs)),
		defaultCode: defaultCode,
	}
	for _, p := range pairs {
		c.byCode[p.Code] = p.Label
		c.byLabel[labelKey(p.Label)] = p.Code
		c.byLabel[labelKey(string(p.Code))] = p.Code
	}
	for alias, code := range aliases {
		c.byLabel[labelKey(alias)] = code
	}
	return c
}

// LabelToCode resolves a label (case-insensitive); unknown input maps to the default code.
func (c *Choices[T]) LabelToCode(label string) (T, bool) {
	code, ok := c.byLabel[labelKey(label)]
	if !ok {
		return c.defaultCode, false
	}
	return code, true
}

// CodeToLabel returns the display label; an unknown code is shown as-is.
func (c *Choices[T]) CodeToLabel(code T) string {
	if label, ok := c.byCode[code]; ok {
		return label
	}
	return string(code)
}

func (c *Choices[T]) Default() T {
	return c.defaultCode
}

func (c *Choices[T]) All() []Choice[T] {
	out := make([]Choice[T], len(c.ordered))
	copy(out, c.ordered)
	return out
}

var Identifications = NewChoices(IdentificationResidential, []Choice[Identification]{
	{Code: IdentificationResidential, Label: "Residential"},
	{Code: IdentificationCommercial, Label: "Commercial"},
}, map[string]Identification{
	"residencial": IdentificationResidential,
	"comercial":   IdentificationCommercial,
})

var Statuses = NewChoices(StatusVacant, []Choice[Status]{
	{Code: StatusVacant, Label: "Vacant"},
	{Code: StatusOccupied, Label: "Occupied"},
}, map[string]Status{
	"vago":    StatusVacant,
	"vaga":    StatusVacant,
	"ocupado": StatusOccupied,
	"ocupada": StatusOccupied,
})

var keyDeliveryLabels = map[string]string{
	KeyDeliveryYes:     "Yes",
	KeyDeliveryNo:      "No",
	KeyDeliveryPending: "Pending",
}

var keyDeliverySynonyms = map[string]string{
	"yes":           KeyDeliveryYes,
	"y":             KeyDeliveryYes,
	"delivered":     KeyDeliveryYes,
	"true":          KeyDeliveryYes,
	"ok":            KeyDeliveryYes,
	"x":             KeyDeliveryYes,
	"1":             KeyDeliveryYes,
	"sim":           KeyDeliveryYes,
	"s":             KeyDeliveryYes,
	"entregue":      KeyDeliveryYes,
	"entregues":     KeyDeliveryYes,
	"no":            KeyDeliveryNo,
	"n":             KeyDeliveryNo,
	"not delivered": KeyDeliveryNo,
	"false":         KeyDeliveryNo,
	"0":             KeyDeliveryNo,
	"não":           KeyDeliveryNo,
	"nao":           KeyDeliveryNo,
	"não entregue":  KeyDeliveryNo,
	"nao entregue":  KeyDeliveryNo,
	"pending":       KeyDeliveryPending,
	"pen":           KeyDeliveryPending,
	"pend":          KeyDeliveryPending,
	"partial":       KeyDeliveryPending,
	"waiting":       KeyDeliveryPending,
	"pendente":      KeyDeliveryPending,
	"parcial":       KeyDeliveryPending,
	"aguardando":    KeyDeliveryPending,
}

// NormalizeKeyDelivery maps free text onto one of the three short codes.
// Empty input means "no". Anything unrecognised is kept, cut to the column width.
func NormalizeKeyDelivery(raw string) string {
	key := labelKey(raw)
	if key == "" {
		return KeyDeliveryNo
	}
	if code, ok := keyDeliverySynonyms[key]; ok {
		return code
	}
	return Truncate(key, MaxKeyDeliveryLen, KeyDeliveryNo)
}

// KeyDeliveryLabel is the display form of a stored key delivery code.
func KeyDeliveryLabel(code string) string {
	if label, ok := keyDeliveryLabels[code]; ok {
		return label
	}
	return code
}

func labelKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(StringCell(s)), " "))
}
