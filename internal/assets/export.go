package assets

import (
	"bytes"
	"context"
	"fmt"

	"vibermm/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Assets"

func cellValue(a models.Asset, column string) string {
	switch column {
	case "name":
		return a.Name
	case "type":
		return a.Type
	case "ip":
		return a.IPAddress
	case "lastCheckIn":
		return a.LastCheckIn
	case "customer":
		return a.Customer
	case "osName":
		return a.OSName
	case "status":
		return a.Status
	}
	return ""
}

// Export writes the assets matching f as an XLSX workbook, using the visible
// columns of the saved table in their saved order.
func (s *Service) Export(ctx context.Context, f Filter) ([]byte, error) {
	assets, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}

	var columns []Column
	for _, c := range s.Table(ctx).Columns {
		if c.Visible {
			columns = append(columns, c)
		}
	}

	x := excelize.NewFile()
	defer x.Close()

	index, err := x.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := x.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	x.SetActiveSheet(index)

	headerStyle, err := x.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E7FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, c := range columns {
		if err := setCell(x, i+1, 1, c.Title); err != nil {
			return nil, err
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := x.SetColWidth(exportSheet, name, name, 20); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if len(columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		if err := x.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for r, a := range assets {
		for i, c := range columns {
			if err := setCell(x, i+1, r+2, cellValue(a, c.ID)); err != nil {
				return nil, err
			}
		}
	}

	if err := x.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := x.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(x *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := x.SetCellValue(exportSheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}
