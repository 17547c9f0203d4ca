package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// messenger writes user-facing console messages. Styles degrade to plain
// text when out is not a color terminal.
type messenger struct {
	out     io.Writer
	errorSt lipgloss.Style
	okSt    lipgloss.Style
	infoSt  lipgloss.Style
	warnSt  lipgloss.Style
}

func newMessenger(out io.Writer) *messenger {
	r := lipgloss.NewRenderer(out)
	return &messenger{
		out:     out,
		errorSt: r.NewStyle().Foreground(lipgloss.Color("9")),
		okSt:    r.NewStyle().Foreground(lipgloss.Color("10")),
		infoSt:  r.NewStyle().Foreground(lipgloss.Color("12")),
		warnSt:  r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

func (m *messenger) errorf(format string, args ...any) {
	fmt.Fprintln(m.out, m.errorSt.Render(fmt.Sprintf(format, args...)))
}

func (m *messenger) successf(format string, args ...any) {
	fmt.Fprintln(m.out, m.okSt.Render(fmt.Sprintf(format, args...)))
}

func (m *messenger) infof(format string, args ...any) {
	fmt.Fprintln(m.out, m.infoSt.Render(fmt.Sprintf(format, args...)))
}

func (m *messenger) warnf(format string, args ...any) {
	fmt.Fprintln(m.out, m.warnSt.Render(fmt.Sprintf(format, args...)))
}

// plain writes s unstyled.
func (m *messenger) plain(s string) {
	fmt.Fprint(m.out, s)
}
