package scenario

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// Reporter prints results as aligned, human-readable tables.
type Reporter struct {
	w io.Writer
}

// NewReporter writes to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Print writes one result.
func (r *Reporter) Print(res Result) error {
	fmt.Fprintf(r.w, "== %s ==\n", res.Scenario)
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "strategy\ttime (s)\tmallocs\theap bytes\tvalues")
	for _, m := range res.Measurements {
		fmt.Fprintf(tw, "%s\t%.6f\t%d\t%d\t%s\n",
			m.Label, m.Elapsed.Seconds(), m.Mallocs, m.HeapBytes, formatValues(m.Values))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, n := range res.Notes {
		fmt.Fprintf(r.w, "  %s\n", n)
	}
	_, err := fmt.Fprintln(r.w)
	return err
}

func formatValues(v map[string]float64) string {
	if len(v) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, v[k])
	}
	return strings.Join(parts, " ")
}
