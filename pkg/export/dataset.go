package export

// Dataset defines tabular export content. Rows are keyed by header.
type Dataset struct {
	Title    string
	Subtitle []string
	Headers  []string
	Rows     []map[string]string
}

// Format identifies an export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Renderer turns a dataset into file bytes.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
}

// ParseFormat accepts csv or pdf, defaulting to csv.
func ParseFormat(raw string) (Format, bool) {
	switch Format(raw) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatPDF:
		return FormatPDF, true
	default:
		return "", false
	}
}
