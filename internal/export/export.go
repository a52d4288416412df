// Package export writes a certifier's certificate list as a spreadsheet.
package export

import (
	"fmt"
	"io"
	"time"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx" or "csv"; empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileName returns the attachment name for an export made at t.
func (f Format) FileName(t time.Time) string {
	return fmt.Sprintf("certificates-%s.%s", t.Format("20060102"), f)
}

// CertificateRow is one exported certificate.
type CertificateRow struct {
	ID        string
	Name      string
	Title     string
	Certifier string
	ViewURL   string
	IssuedAt  time.Time
}

// Columns of the export, in order
var Columns = []string{"ID", "Recipient", "Title", "Certifier", "View URL", "Issued At"}

func (r CertificateRow) values() []interface{} {
	return []interface{}{r.ID, r.Name, r.Title, r.Certifier, r.ViewURL, r.IssuedAt}
}

// Write encodes rows in format f.
func Write(w io.Writer, f Format, rows []CertificateRow) error {
	switch f {
	case FormatCSV:
		e := NewCSVExporter(w, DefaultCSVOptions())
		if err := e.WriteHeader(Columns); err != nil {
			return err
		}
		for _, r := range rows {
			if err := e.WriteRow(r.values()); err != nil {
				return err
			}
		}
		return e.Flush()
	case FormatXLSX:
		e := NewExcelExporter(DefaultExcelOptions())
		defer e.Close()
		if err := e.WriteHeader(Columns); err != nil {
			return err
		}
		if err := e.WriteRows(rows); err != nil {
			return err
		}
		return e.WriteTo(w)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}
