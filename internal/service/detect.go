package service

import (
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format names reported as format_detected.
const (
	FormatCSV     = "csv"
	FormatTSV     = "tsv"
	FormatExcel   = "excel"
	FormatPDF     = "pdf"
	FormatJSON    = "json"
	FormatImage   = "image"
	FormatParquet = "parquet"
	FormatUnknown = "unknown"
)

const octetStream = "application/octet-stream"

// sniffLen is how much of the upload is inspected when the extension is not recognised.
const sniffLen = 3072

// Detection is the outcome of format detection.
type Detection struct {
	Format   string
	MimeType string
}

var byExtension = map[string]Detection{
	".csv":     {FormatCSV, "text/csv"},
	".tsv":     {FormatTSV, "text/tab-separated-values"},
	".xls":     {FormatExcel, "application/vnd.ms-excel"},
	".xlsx":    {FormatExcel, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	".pdf":     {FormatPDF, "application/pdf"},
	".json":    {FormatJSON, "application/json"},
	".png":     {FormatImage, "image/png"},
	".jpg":     {FormatImage, "image/jpeg"},
	".jpeg":    {FormatImage, "image/jpeg"},
	".webp":    {FormatImage, "image/webp"},
	".parquet": {FormatParquet, octetStream},
}

var byMime = map[string]string{
	"text/csv":                  FormatCSV,
	"text/tab-separated-values": FormatTSV,
	"application/vnd.ms-excel":  FormatExcel,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatExcel,
	"application/pdf":                FormatPDF,
	"application/json":               FormatJSON,
	"application/vnd.apache.parquet": FormatParquet,
}

// DetectFormat classifies an upload by its extension, then by sniffing head.
func DetectFormat(filename string, head []byte) Detection {
	if d, ok := byExtension[strings.ToLower(path.Ext(filename))]; ok {
		return d
	}
	if len(head) == 0 {
		return Detection{FormatUnknown, octetStream}
	}

	mt := mimetype.Detect(head)
	for m := mt; m != nil; m = m.Parent() {
		base := baseType(m.String())
		if f, ok := byMime[base]; ok {
			return Detection{f, base}
		}
		if strings.HasPrefix(base, "image/") {
			return Detection{FormatImage, base}
		}
	}
	return Detection{FormatUnknown, baseType(mt.String())}
}

func baseType(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		return strings.TrimSpace(m[:i])
	}
	return m
}
