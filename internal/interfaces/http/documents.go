package http

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// Campos multipart aceptados para archivos.
var documentFields = []string{"documents", "documents[]", "document"}

// readDocuments lee los archivos del formulario. Sin archivos devuelve ErrInvalidInput.
func readDocuments(c *fiber.Ctx) ([]entity.PendingDocument, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("formulario multipart: %w", domain.ErrInvalidInput)
	}
	var docs []entity.PendingDocument
	for _, field := range documentFields {
		for _, fh := range form.File[field] {
			doc, err := readFile(fh)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("sin archivos: %w", domain.ErrInvalidInput)
	}
	return docs, nil
}

func readFile(fh *multipart.FileHeader) (entity.PendingDocument, error) {
	f, err := fh.Open()
	if err != nil {
		return entity.PendingDocument{}, fmt.Errorf("abrir %s: %w", fh.Filename, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return entity.PendingDocument{}, fmt.Errorf("leer %s: %w", fh.Filename, err)
	}
	return entity.PendingDocument{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     content,
	}, nil
}
