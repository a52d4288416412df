package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter exports rows to a single-sheet workbook
type ExcelExporter struct {
	file    *excelize.File
	options ExcelOptions
}

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	SheetName      string            `json:"sheet_name"`
	FreezeHeader   bool              `json:"freeze_header"`
	AutoFilter     bool              `json:"auto_filter"`
	TimestampStyle string            `json:"timestamp_style"`
	HeaderStyle    *ExcelStyleConfig `json:"header_style,omitempty"`
	AutoWidth      bool              `json:"auto_width"`
}

// ExcelStyleConfig defines style for cells
type ExcelStyleConfig struct {
	FontBold  bool   `json:"font_bold"`
	FontSize  int    `json:"font_size"`
	FontColor string `json:"font_color"`
	FillColor string `json:"fill_color"`
	Alignment string `json:"alignment"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName:      "Certificates",
		FreezeHeader:   true,
		AutoFilter:     true,
		TimestampStyle: "yyyy-mm-dd hh:mm",
		AutoWidth:      true,
		HeaderStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  11,
			FillColor: "4472C4",
			FontColor: "FFFFFF",
			Alignment: "center",
		},
	}
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(options ExcelOptions) *ExcelExporter {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", options.SheetName)

	return &ExcelExporter{file: file, options: options}
}

// WriteHeader writes the styled header row
func (e *ExcelExporter) WriteHeader(columns []string) error {
	sheet := e.options.SheetName

	styleID := 0
	if e.options.HeaderStyle != nil {
		id, err := e.createStyle(e.options.HeaderStyle)
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		styleID = id
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := e.file.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if styleID > 0 {
			_ = e.file.SetCellStyle(sheet, cell, cell, styleID)
		}
	}

	if e.options.FreezeHeader {
		_ = e.file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	if e.options.AutoFilter {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = e.file.AutoFilter(sheet, "A1:"+last, nil)
	}
	return nil
}

// WriteRows writes certificate rows below the header
func (e *ExcelExporter) WriteRows(rows []CertificateRow) error {
	sheet := e.options.SheetName

	timeStyle, err := e.file.NewStyle(&excelize.Style{CustomNumFmt: &e.options.TimestampStyle})
	if err != nil {
		return fmt.Errorf("failed to create timestamp style: %w", err)
	}

	widths := make(map[int]float64)
	for i, row := range rows {
		for col, val := range row.values() {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)

			switch v := val.(type) {
			case time.Time:
				if v.IsZero() {
					continue
				}
				if err := e.file.SetCellValue(sheet, cell, v); err != nil {
					return fmt.Errorf("failed to set cell value: %w", err)
				}
				_ = e.file.SetCellStyle(sheet, cell, cell, timeStyle)
			default:
				if err := e.file.SetCellValue(sheet, cell, v); err != nil {
					return fmt.Errorf("failed to set cell value: %w", err)
				}
			}

			if w := float64(len(fmt.Sprint(val))) * 1.2; w > widths[col] {
				widths[col] = w
			}
		}
	}

	if e.options.AutoWidth {
		for col, width := range widths {
			name, _ := excelize.ColumnNumberToName(col + 1)
			// Min width 10, max width 60
			if width < 10 {
				width = 10
			}
			if width > 60 {
				width = 60
			}
			_ = e.file.SetColWidth(sheet, name, name, width)
		}
	}
	return nil
}

// WriteTo writes the workbook to a writer
func (e *ExcelExporter) WriteTo(w io.Writer) error {
	return e.file.Write(w)
}

// Close closes the workbook
func (e *ExcelExporter) Close() error {
	return e.file.Close()
}

func (e *ExcelExporter) createStyle(config *ExcelStyleConfig) (int, error) {
	style := &excelize.Style{
		Font: &excelize.Font{
			Bold:  config.FontBold,
			Size:  float64(config.FontSize),
			Color: config.FontColor,
		},
	}
	if config.FillColor != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{config.FillColor}}
	}
	if config.Alignment != "" {
		style.Alignment = &excelize.Alignment{Horizontal: config.Alignment}
	}
	return e.file.NewStyle(style)
}
