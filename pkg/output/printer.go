package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/modsync/pkg/output/styles"
)

// Printer writes the human form of a result. The first write error is kept
// and later writes are skipped.
type Printer struct {
	w      io.Writer
	styled bool
	err    error
}

// Style renders text in a named style, or returns it unchanged for plain
// output.
func (p *Printer) Style(name, text string) string {
	if !p.styled {
		return text
	}
	return styles.GetStyle(name).Render(text)
}

// Line writes one formatted line
func (p *Printer) Line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

// Blank writes an empty line
func (p *Printer) Blank() {
	p.Line("")
}

// Header writes a section title
func (p *Printer) Header(title string) {
	if p.styled {
		p.Line("%s", p.Style("Header", title))
		return
	}
	p.Line("%s", title)
	p.Line("%s", strings.Repeat("=", len(title)))
}

// Table writes rows under header as an aligned table
func (p *Printer) Table(header []string, rows [][]string) {
	if p.err != nil {
		return
	}
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		p.err = err
		return
	}
	if !p.styled {
		table = pterm.RemoveColorFromString(table)
	}
	p.Line("%s", table)
}

// Bytes formats a size for people
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// Err returns the first write error
func (p *Printer) Err() error {
	return p.err
}

// Count formats "1 file" or "3 files"
func Count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}
