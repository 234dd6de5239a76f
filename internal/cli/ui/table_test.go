package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestTable(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	table := NewTable(&buf, []string{"ADT", "Constructors", "Derived"}, &TableOptions{NoColor: true})

	table.AddRow("Shape", "3", "Show Hash Equal Ord")
	table.AddRow("Tree", "2", "Show Hash Equal Ord")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header, separator and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ADT    Constructors") {
		t.Errorf("Header not padded to the widest cell: %q", lines[0])
	}
	if !strings.Contains(lines[1], "─") {
		t.Errorf("Missing separator: %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "Tree   2") {
		t.Errorf("Row not aligned with header: %q", lines[3])
	}
}

func TestTableRightAlign(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"ADT", "Constructors"}, &TableOptions{NoColor: true, RightAlign: []int{1}})

	table.AddRow("Shape", "3")
	table.AddRow("Wide", "151")
	table.AddRow("Ragged")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// "Ragged" widens the first column
	want := []string{
		"ADT     Constructors",
		"──────  ────────────",
		"Shape              3",
		"Wide             151",
		"Ragged",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("unexpected table:\n%s", buf.String())
	}
}

func TestTableUnicodeWidth(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Show", "Hash"}, &TableOptions{NoColor: true})

	table.AddRow(`Name("José")`, "7")
	table.Render()

	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "Show          Hash" {
		t.Errorf("header not padded by rune count: %q", lines[0])
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{}, nil)

	table.Render()

	if buf.String() != "" {
		t.Errorf("Expected empty output for table with no headers, got: %q", buf.String())
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kvTable := NewKeyValueTable(&buf, true)

	kvTable.AddRow("Show", "B(2, 3)")
	kvTable.AddRow("Hash", "902")
	kvTable.Render()

	expected := "Show: B(2, 3)\nHash: 902\n"
	if buf.String() != expected {
		t.Errorf("KeyValueTable output = %q, want %q", buf.String(), expected)
	}
}

func TestKeyValueTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewKeyValueTable(&buf, true).Render()

	if buf.String() != "" {
		t.Errorf("Expected empty output for empty KeyValueTable, got: %q", buf.String())
	}
}

func TestDivider(t *testing.T) {
	var buf bytes.Buffer
	Divider(&buf, 5, true)

	if buf.String() != "─────\n" {
		t.Errorf("Divider(5) = %q", buf.String())
	}

	buf.Reset()
	Divider(&buf, 0, true)
	if got := strings.Count(buf.String(), "─"); got != 80 {
		t.Errorf("Expected default width 80, got %d", got)
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Shape", true)

	if buf.String() != "Shape\n─────\n" {
		t.Errorf("Header output = %q", buf.String())
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"test", 10, "test      "},
		{"test", 4, "test"},
		{"test", 2, "test"},
		{"", 5, "     "},
	}

	for _, tt := range tests {
		result := padRight(tt.input, tt.width)
		if result != tt.expected {
			t.Errorf("padRight(%q, %d) = %q; want %q", tt.input, tt.width, result, tt.expected)
		}
	}
}
