package ui

import (
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table renders rows in aligned columns under a header and a rule
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	opts    TableOptions
}

// TableOptions configures table behavior
type TableOptions struct {
	NoColor bool
	// RightAlign holds the indexes of numeric columns
	RightAlign []int
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	t := &Table{writer: w, headers: headers}
	if opts != nil {
		t.opts = *opts
	}
	return t
}

// AddRow adds a row. Cells past the last header are not rendered.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table. A table without headers renders nothing.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for _, row := range append([][]string{t.headers}, t.rows...) {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], width(row[i]))
		}
	}

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}

	t.line(t.headers, widths, newStyle(t.opts.NoColor, color.Bold, color.FgCyan))
	t.line(rule, widths, newStyle(t.opts.NoColor, color.FgHiBlack))
	for _, row := range t.rows {
		t.line(row, widths, nil)
	}
}

func (t *Table) line(cells []string, widths []int, style *color.Color) {
	var b strings.Builder
	for i, w := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if i > 0 {
			b.WriteString("  ")
		}
		if slices.Contains(t.opts.RightAlign, i) {
			b.WriteString(padLeft(cell, w))
		} else {
			b.WriteString(padRight(cell, w))
		}
	}
	text := strings.TrimRight(b.String(), " ")
	if style == nil {
		io.WriteString(t.writer, text+"\n")
		return
	}
	style.Fprintln(t.writer, text)
}

// width counts runes, so rules and Show output with non-ASCII text align
func width(s string) int {
	return utf8.RuneCountInString(s)
}

func padRight(s string, w int) string {
	if n := width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func padLeft(s string, w int) string {
	if n := width(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}

func newStyle(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// KeyValueTable renders "key: value" lines with the values aligned
type KeyValueTable struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow adds a key-value pair to the table
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render renders the key-value table
func (t *KeyValueTable) Render() {
	keyWidth := 0
	for _, k := range t.keys {
		keyWidth = max(keyWidth, width(k)+1)
	}

	cyan := newStyle(t.noColor, color.FgCyan)
	for i, k := range t.keys {
		cyan.Fprint(t.writer, padRight(k+":", keyWidth))
		io.WriteString(t.writer, " "+t.values[i]+"\n")
	}
}

// Divider renders a horizontal rule, 80 columns wide when width is 0
func Divider(w io.Writer, n int, noColor bool) {
	if n == 0 {
		n = 80
	}
	newStyle(noColor, color.FgHiBlack).Fprintln(w, strings.Repeat("─", n))
}

// Header renders a title underlined by a rule of the same width
func Header(w io.Writer, title string, noColor bool) {
	newStyle(noColor, color.Bold, color.FgCyan).Fprintln(w, title)
	Divider(w, width(title), noColor)
}
