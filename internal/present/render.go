package present

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mark3labs/swagger-explorer/internal/spec"
)

// WriteTable writes items as an aligned table under an uppercase header. Rows
// that are not objects fill the first column.
func WriteTable(w io.Writer, items []any, columns []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(columns) == 0 {
		for _, item := range items {
			fmt.Fprintln(tw, CellValue(item))
		}
		return tw.Flush()
	}
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, item := range items {
		row := make([]string, len(columns))
		obj, _ := item.(map[string]any)
		for i, c := range columns {
			if obj == nil {
				if i == 0 {
					row[i] = CellValue(item)
				}
				continue
			}
			row[i] = flattenCell(CellValue(obj[c]))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func flattenCell(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
}

var methodColors = map[spec.HttpMethod]*color.Color{
	spec.GET:    color.New(color.FgBlue, color.Bold),
	spec.POST:   color.New(color.FgGreen, color.Bold),
	spec.PUT:    color.New(color.FgYellow, color.Bold),
	spec.PATCH:  color.New(color.FgCyan, color.Bold),
	spec.DELETE: color.New(color.FgRed, color.Bold),
}

var faint = color.New(color.Faint)

// MethodColor returns the color used for an HTTP method label.
func MethodColor(m spec.HttpMethod) *color.Color {
	if c, ok := methodColors[spec.HttpMethod(strings.ToLower(string(m)))]; ok {
		return c
	}
	return faint
}

// Method renders an uppercase, padded, colored method label.
func Method(m spec.HttpMethod) string {
	return MethodColor(m).Sprintf("%-7s", strings.ToUpper(string(m)))
}

// Status colors an HTTP status by class; 0 is shown as a transport error.
func Status(code int) string {
	switch {
	case code == 0:
		return color.RedString("ERR")
	case code < 300:
		return color.GreenString("%d", code)
	case code < 400:
		return color.CyanString("%d", code)
	case code < 500:
		return color.YellowString("%d", code)
	}
	return color.RedString("%d", code)
}

// Wrap breaks text at word boundaries to fit width columns and indents every
// line by indent spaces.
func Wrap(text string, width uint, indent int) string {
	pad := strings.Repeat(" ", indent)
	if width > uint(indent)+10 {
		width -= uint(indent)
	}
	lines := strings.Split(wordwrap.WrapString(strings.TrimSpace(text), width), "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}

// Title capitalizes words, turning separators into spaces: "user-accounts"
// becomes "User Accounts".
func Title(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return cases.Title(language.English).String(s)
}

const defaultWidth = 80

// Width returns the terminal width of f, or 80 when f is not a terminal.
func Width(f *os.File) uint {
	if f == nil {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return uint(w)
}

// SetColor enables or disables colored output globally.
func SetColor(enabled bool) { color.NoColor = !enabled }
