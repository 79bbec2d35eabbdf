package excel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/in-nis/lessonboard/internal/orders"
)

// -------------------- READING --------------------

// ReadTable returns the header and data rows of the first sheet whose first
// row carries the booking export header. Merged ranges are expanded so every
// covered cell holds the range value.
func ReadTable(data []byte, logger *zap.Logger) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("excel: open workbook: %w", err)
	}
	defer f.Close()

	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, nil, fmt.Errorf("excel: read sheet %s: %w", sheetName, err)
		}
		if len(rows) == 0 || !isOrdersHeader(rows[0]) {
			logger.Debug("skipping sheet without orders header", zap.String("sheet", sheetName))
			continue
		}

		if err := fillMerged(f, sheetName, rows); err != nil {
			return nil, nil, err
		}

		logger.Info("parsed orders sheet",
			zap.String("sheet", sheetName),
			zap.Int("rows", len(rows)-1))
		return rows[0], rows[1:], nil
	}

	// Nothing matched: hand back the first sheet so the caller reports
	// exactly which columns are missing.
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("excel: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("excel: read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0], rows[1:], nil
}

// ParseOrders reads an xlsx export and groups it like the TSV export.
func ParseOrders(data []byte, opts orders.Options, logger *zap.Logger) (orders.Result, error) {
	header, rows, err := ReadTable(data, logger)
	if err != nil {
		return orders.Result{}, err
	}
	return orders.ParseTable(header, rows, opts)
}

func isOrdersHeader(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) == orders.ColDate {
			return true
		}
	}
	return false
}

// fillMerged copies the value of every merged range into all of its cells.
func fillMerged(f *excelize.File, sheetName string, rows [][]string) error {
	mergedCells, err := f.GetMergeCells(sheetName)
	if err != nil {
		return fmt.Errorf("excel: merged cells of %s: %w", sheetName, err)
	}

	for _, mc := range mergedCells {
		val := mc.GetCellValue()
		if val == "" {
			continue
		}

		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return fmt.Errorf("excel: merged cell %s: %w", mc.GetStartAxis(), err)
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return fmt.Errorf("excel: merged cell %s: %w", mc.GetEndAxis(), err)
		}

		for r := startRow; r <= endRow && r <= len(rows); r++ {
			row := rows[r-1]
			for len(row) < endCol {
				row = append(row, "")
			}
			for c := startCol; c <= endCol; c++ {
				row[c-1] = val
			}
			rows[r-1] = row
		}
	}
	return nil
}
