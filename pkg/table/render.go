package table

import (
	"bufio"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultDelimiter terminates every cell in the delimited format.
const DefaultDelimiter = ','

// countingWriter tracks bytes written for WriteTo.
type countingWriter struct {
	w *bufio.Writer
	n int64
}

func (cw *countingWriter) writeString(s string) error {
	n, err := cw.w.WriteString(s)
	cw.n += int64(n)
	return err
}

// Serialize returns the delimited form of the table: one line per row, each
// cell's rendered value followed by delim. Text cells keep their quotes.
func (t *Table) Serialize(delim rune) string {
	var sb strings.Builder
	_, _ = t.writeDelimited(&sb, delim)
	return sb.String()
}

// WriteTo writes the delimited form of the table using DefaultDelimiter.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	return t.writeDelimited(w, DefaultDelimiter)
}

func (t *Table) writeDelimited(w io.Writer, delim rune) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	sep := string(delim)

	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.columns; col++ {
			if err := cw.writeString(t.cells[t.index(row, col)].Render() + sep); err != nil {
				return cw.n, err
			}
		}
		if err := cw.writeString("\n"); err != nil {
			return cw.n, err
		}
	}

	return cw.n, cw.w.Flush()
}

// ColumnWidths returns, per column, the widest displayed cell measured in
// terminal cells. Quote markers of text cells do not count.
func (t *Table) ColumnWidths() []int {
	widths := make([]int, t.columns)
	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.columns; col++ {
			if w := lipgloss.Width(t.cells[t.index(row, col)].Display()); w > widths[col] {
				widths[col] = w
			}
		}
	}
	return widths
}

// Print writes the table with every column right-aligned to its widest
// cell and cells separated by '|'.
func (t *Table) Print(w io.Writer) error {
	widths := t.ColumnWidths()
	bw := bufio.NewWriter(w)

	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.columns; col++ {
			content := t.cells[t.index(row, col)].Display()
			bw.WriteString("| ")
			bw.WriteString(strings.Repeat(" ", widths[col]-lipgloss.Width(content)))
			bw.WriteString(content)
			bw.WriteString(" ")
		}
		bw.WriteString("|\n")
	}

	return bw.Flush()
}
