package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadRows returns the data rows of the workbook's active sheet, skipping the header row.
// Each row is trimmed and padded to width cells; fully blank rows are dropped.
func ReadRows(path string, width int) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	if len(rows) <= 1 {
		return [][]string{}, nil
	}

	out := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, width)
		blank := true
		for i := 0; i < width && i < len(row); i++ {
			cells[i] = strings.TrimSpace(row[i])
			if cells[i] != "" {
				blank = false
			}
		}
		if !blank {
			out = append(out, cells)
		}
	}
	return out, nil
}
