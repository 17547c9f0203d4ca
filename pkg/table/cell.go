package table

import (
	"math"
	"strconv"

	"github.com/mesh-intelligence/etable/internal/strutil"
)

// Kind identifies the variant held by a Cell.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindError
)

// kindNames maps kinds to their display names.
var kindNames = map[Kind]string{
	KindEmpty:  "empty",
	KindNumber: "number",
	KindText:   "text",
	KindError:  "error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// errorMarker is what an Error cell renders as.
const errorMarker = "ERROR"

// tolerance is both the distance under which a number renders as an integer
// and the magnitude under which a divisor counts as zero.
const tolerance = 0.001

// Cell is one immutable grid value. The zero Cell is Empty. Cells are only
// built by a Table; editing replaces the cell in its slot.
type Cell struct {
	kind  Kind
	value float64 // KindNumber
	raw   string  // KindText, quotes included
}

func emptyCell() Cell {
	return Cell{kind: KindEmpty}
}

func numberCell(v float64) Cell {
	return Cell{kind: KindNumber, value: v}
}

func textCell(raw string) Cell {
	return Cell{kind: KindText, raw: raw}
}

func errorCell() Cell {
	return Cell{kind: KindError}
}

// Kind returns the variant of the cell.
func (c Cell) Kind() Kind {
	return c.kind
}

// Evaluate returns the numeric value of the cell. Empty and Error cells are
// 0. Text cells are 0 unless their quoted content is a number.
func (c Cell) Evaluate() float64 {
	switch c.kind {
	case KindNumber:
		return c.value
	case KindText:
		content := strutil.Unquote(c.raw)
		if !strutil.IsNumber(content) {
			return 0
		}
		v, err := strconv.ParseFloat(content, 64)
		if err != nil {
			return 0
		}
		return v
	default:
		return 0
	}
}

// Render returns the stored form of the cell. Text keeps its quotes.
func (c Cell) Render() string {
	switch c.kind {
	case KindNumber:
		return formatNumber(c.value)
	case KindText:
		return c.raw
	case KindError:
		return errorMarker
	default:
		return ""
	}
}

// Display returns the rendered form with quote markers removed from text.
func (c Cell) Display() string {
	if c.kind == KindText {
		return strutil.Unquote(c.raw)
	}
	return c.Render()
}

// formatNumber prints v as an integer when it is within tolerance of one,
// otherwise with the fewest of 1 to 3 fractional digits that keep its value
// at millesimal precision.
func formatNumber(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	r := math.Round(v)
	if math.Abs(v-r) < tolerance {
		if r == 0 {
			r = 0 // drop the sign of -0
		}
		return strconv.FormatFloat(r, 'f', 0, 64)
	}

	x := math.Round(1000 * v)
	precision := 1
	if math.Mod(x, 100) != 0 {
		precision++
		if math.Mod(x, 10) != 0 {
			precision++
		}
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}
