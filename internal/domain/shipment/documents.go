package shipment

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// DocumentLimits límites de adjuntos por envío.
type DocumentLimits struct {
	MaxCount int
	MaxBytes int64
}

// DefaultDocumentLimits 5 documentos PDF de hasta 5 MB cada uno.
var DefaultDocumentLimits = DocumentLimits{MaxCount: 5, MaxBytes: 5 << 20}

const pdfContentType = "application/pdf"

// ValidateDocument verifica tipo PDF y tamaño de un archivo antes de aceptarlo.
// Si el navegador no informa el tipo (vacío u octet-stream) se acepta por extensión .pdf.
func ValidateDocument(name, contentType string, size int64, limits DocumentLimits) error {
	if size <= 0 {
		return fmt.Errorf("%s: archivo vacío: %w", name, domain.ErrInvalidInput)
	}
	if limits.MaxBytes > 0 && size > limits.MaxBytes {
		return fmt.Errorf("%s: %d bytes: %w", name, size, domain.ErrDocumentTooLarge)
	}
	if !isPDF(name, contentType) {
		return fmt.Errorf("%s: %w", name, domain.ErrDocumentType)
	}
	return nil
}

func isPDF(name, contentType string) bool {
	mediaType := ""
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			mediaType = strings.ToLower(mt)
		}
	}
	switch mediaType {
	case pdfContentType:
		return true
	case "", "application/octet-stream":
		return strings.EqualFold(filepath.Ext(name), ".pdf")
	}
	return false
}

// CheckDocumentCount falla si agregar `adding` documentos supera el máximo.
func CheckDocumentCount(current, adding int, limits DocumentLimits) error {
	if limits.MaxCount > 0 && current+adding > limits.MaxCount {
		return fmt.Errorf("%d + %d > %d: %w", current, adding, limits.MaxCount, domain.ErrDocumentLimit)
	}
	return nil
}

// NormalizeDocument resuelve FileContent como file_content ?? path ?? url ?? "".
func NormalizeDocument(d entity.Document) entity.Document {
	switch {
	case d.FileContent != "":
	case d.Path != "":
		d.FileContent = d.Path
	case d.URL != "":
		d.FileContent = d.URL
	}
	return d
}

// NormalizeDocuments normaliza una lista completa. Nunca devuelve nil.
func NormalizeDocuments(docs []entity.Document) []entity.Document {
	out := make([]entity.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, NormalizeDocument(d))
	}
	return out
}
