package output

import (
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// WriteConfigurationTable renders configurations as a terminal table
func WriteConfigurationTable(w io.Writer, rows []*ConfigurationOutput) error {
	table := tablewriter.NewWriter(w)
	table.Header("", "Name", "Kind", "Device type", "Device", "Apps")
	for _, r := range rows {
		marker := ""
		if r.Selected {
			marker = "*"
		}
		if err := table.Append([]string{marker, r.Name, r.Kind, r.DeviceType, r.Device, strings.Join(r.Apps, ", ")}); err != nil {
			return err
		}
	}
	return table.Render()
}
