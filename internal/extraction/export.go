package extraction

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zombor/docscan/internal/record"
)

const (
	menuSheet     = "Menu"
	rejectedSheet = "Rejected"
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// MenuWorkbook renders the valid items of a menu as an xlsx workbook. Rejected
// items, if any, are listed on a second sheet.
func MenuWorkbook(menu record.MenuRecord, failures []record.ItemFailure) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", menuSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	headers := []string{"Cocktail", "Brand", "Product", "Ingredients", "Price", "Size", "Description"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(menuSheet, cell, h)
	}

	for i, item := range menu.Items {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(menuSheet, cell, v)
		}
		write(1, item.Name)
		write(2, item.Brand)
		write(3, item.Product)
		write(4, strings.Join(item.Ingredients, ", "))
		write(5, item.Price)
		write(6, item.Size)
		write(7, item.Description)
	}

	if len(menu.Items) > 0 {
		// built-in number format 2 is "0.00"
		style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return nil, fmt.Errorf("creating price style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(5, len(menu.Items)+1)
		if err := f.SetCellStyle(menuSheet, "E2", last, style); err != nil {
			return nil, fmt.Errorf("styling prices: %w", err)
		}
	}

	_ = f.SetColWidth(menuSheet, "A", "C", 22)
	_ = f.SetColWidth(menuSheet, "D", "D", 40)
	_ = f.SetColWidth(menuSheet, "E", "F", 10)
	_ = f.SetColWidth(menuSheet, "G", "G", 60)

	if len(failures) > 0 {
		if err := writeRejected(f, failures); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRejected(f *excelize.File, failures []record.ItemFailure) error {
	if _, err := f.NewSheet(rejectedSheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	headers := []string{"Item", "Field", "Kind", "Message"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(rejectedSheet, cell, h)
	}

	row := 2
	for _, failure := range failures {
		for _, fe := range failure.Errors {
			values := []any{failure.Index, fe.Field, string(fe.Kind), fe.Message}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(rejectedSheet, cell, v)
			}
			row++
		}
	}
	_ = f.SetColWidth(rejectedSheet, "B", "C", 24)
	_ = f.SetColWidth(rejectedSheet, "D", "D", 60)
	return nil
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// exportFilename derives a download name from the uploaded file, e.g.
// "IMG 2024 (1).HEIC" becomes "IMG 2024 1.xlsx"
func exportFilename(upload string) string {
	base := strings.TrimSuffix(filepath.Base(upload), filepath.Ext(upload))
	base = unsafeChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(whitespace.ReplaceAllString(base, " "))

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "menu"
	}
	return base + ".xlsx"
}
