package entity

// Role rol del actor que opera el tablero.
type Role string

// Roles válidos.
const (
	RoleAdmin         Role = "admin"
	RoleTransportista Role = "transportista"
	RoleOperador      Role = "operador"
)

// Session contexto explícito del actor (reemplaza la lectura ambiental de rol y token).
type Session struct {
	UserID        string
	Role          Role
	UpstreamToken string // token Bearer reenviado al servicio de envíos
}

// IsAdmin indica si el actor es administrador.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
