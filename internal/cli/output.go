package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/braude/garage/pkg/types"
)

// column renders one field of E in table output.
type column[E any] struct {
	header string
	value  func(E) string
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable writes rows as aligned columns under a header line.
func printTable[E any](w io.Writer, cols []column[E], rows []E) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = c.value(row)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// printRecord writes one entity as "HEADER  value" lines.
func printRecord[E any](w io.Writer, cols []column[E], e E) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range cols {
		fmt.Fprintf(tw, "%s\t%s\n", c.header, c.value(e))
	}
	return tw.Flush()
}

func optInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optDate(d *types.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func optMoney(m *types.Money) string {
	if m == nil {
		return ""
	}
	return m.StringFixed(2)
}
