package engine

import (
	"fmt"

	"github.com/spektr-org/incomelens/schema"
)

// ============================================================================
// TABLE BUILDER — Produces TableData for the raw Data view
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Columns follow the documentation order; values are the view's verbatim
// dimension strings.
// ============================================================================

// buildRawTable produces one row per record with every canonical column.
func buildRawTable(view RecordView, cfg *config) *TableData {
	names := schema.Names()
	columns := make([]Column, 0, len(names))
	for _, key := range names {
		columns = append(columns, columnFor(cfg.Schema, key))
	}

	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := make([]string, len(names))
		for j, key := range names {
			row[j] = view.Dimension(i, key)
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   "Data",
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: fmt.Sprintf("%s records", FormatInt(view.Len())),
			Values: map[string]string{
				"rows":    fmt.Sprintf("%d", view.Len()),
				"columns": fmt.Sprintf("%d", len(columns)),
			},
		},
	}
}

// Page returns rows [page*size, (page+1)*size) of a table as a new TableData
// sharing columns and summary. page is zero-based; out-of-range pages are empty.
func (t *TableData) Page(page, size int) *TableData {
	if size <= 0 {
		return t
	}
	start := page * size
	if page < 0 || start >= len(t.Rows) {
		start = len(t.Rows)
	}
	end := start + size
	if end > len(t.Rows) {
		end = len(t.Rows)
	}
	return &TableData{
		Title:   t.Title,
		Columns: t.Columns,
		Rows:    t.Rows[start:end],
		Summary: t.Summary,
	}
}

// Pages returns the number of pages of the given size.
func (t *TableData) Pages(size int) int {
	if size <= 0 || len(t.Rows) == 0 {
		return 1
	}
	return (len(t.Rows) + size - 1) / size
}

func columnFor(s schema.Config, key string) Column {
	col := Column{Key: key, Label: LabelForColumn(s, key), Type: "text", Align: "left"}
	switch schema.KindOf(key) {
	case schema.KindTemporal:
		col.Type = "date"
	case schema.KindBoolean:
		col.Type = "bool"
	case schema.KindInteger, schema.KindContinuous:
		col.Type = "number"
		col.Align = "right"
	}
	return col
}
