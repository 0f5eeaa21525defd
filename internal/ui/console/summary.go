package console

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/gopak/dcs-cli/internal/query"
)

// FilesGrepped is the closing line of every run.
func FilesGrepped(s query.Stats) string {
	return fmt.Sprintf("--\nFiles grepped: %d", s.FilesTotal)
}

// Discrepancy explains why the number of printed matches differs from the
// number the service reported. It is empty when the counts agree.
func Discrepancy(s query.Stats) string {
	if !s.Discrepancy() {
		return ""
	}
	var b strings.Builder
	b.WriteString(text.Bold.Sprint("Result count mismatch") + "\n")
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Counter", "Value"})
	tw.AppendRow(table.Row{"reported by service", s.Reported})
	tw.AppendRow(table.Row{"printed", s.Printed})
	tw.AppendRow(table.Row{"excluded", s.Excluded})
	tw.AppendRow(table.Row{"repeated", s.Duplicates})
	tw.AppendRow(table.Row{"pages fetched", s.Pages})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	b.WriteString(tw.Render())
	return b.String()
}
