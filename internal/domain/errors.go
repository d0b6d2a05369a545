package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrValidation       = errors.New("el borrador tiene errores de validación")
	ErrUpstream         = errors.New("el servicio de envíos respondió con error")
	ErrUploadInProgress = errors.New("ya hay una carga de documentos en curso para este envío")
	ErrDocumentLimit    = errors.New("se alcanzó el máximo de documentos")
	ErrDocumentTooLarge = errors.New("el documento supera el tamaño máximo")
	ErrDocumentType     = errors.New("el documento debe ser PDF")
	ErrStepOutOfRange   = errors.New("paso fuera de rango")
	ErrNotEditing       = errors.New("los ítems no están en modo edición")
)
