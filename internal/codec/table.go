package codec

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"shareaudit/internal/domain"
)

// TableCodec renders records as an aligned console table
type TableCodec struct{}

// NewTableCodec creates a new table codec
func NewTableCodec() *TableCodec {
	return &TableCodec{}
}

// Format returns the codec format identifier
func (c *TableCodec) Format() string {
	return "table"
}

// Export writes records as a table. Host and share are omitted since the
// path already carries them.
func (c *TableCodec) Export(records []domain.PermissionRecord, w io.Writer) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, row(r)[:7])
	}
	return PrintTable(w, Columns[:7], rows)
}

// PrintTable writes headers and rows as a borderless table
func PrintTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(rows)
	table.Render()
	return nil
}
