package shipment

import "github.com/jhoicas/Logistica-api/internal/domain/entity"

// IsTerminal indica si el estado bloquea la edición para no administradores.
func IsTerminal(status entity.Status) bool {
	return status == entity.StatusDelivered || status == entity.StatusCancelled
}

// CanTransportistaEdit un actor no administrador solo edita envíos no terminales.
func CanTransportistaEdit(status entity.Status) bool {
	return !IsTerminal(status)
}

// CanEdit el administrador edita siempre; el resto según CanTransportistaEdit.
func CanEdit(role entity.Role, status entity.Status) bool {
	if role == entity.RoleAdmin {
		return true
	}
	return CanTransportistaEdit(status)
}
