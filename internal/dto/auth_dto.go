package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LoginRequest accepts the username or the e-mail in Username. Only a
// remembered login (Recordar) receives a refresh token; otherwise the session
// ends when the access token expires.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
	Recordar bool   `json:"recordar"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CrearUsuarioRequest struct {
	Username     string  `json:"username"  validate:"required,min=1,max=150"`
	Nombre       string  `json:"nombre"    validate:"required,min=2,max=100"`
	Email        *string `json:"email"     validate:"omitempty,email"`
	Password     string  `json:"password"  validate:"required,min=8"`
	Rol          string  `json:"rol"       validate:"required,oneof=cajero supervisor administrador"`
	PuntoDeVenta *int    `json:"punto_de_venta"`
}

type ActualizarUsuarioRequest struct {
	Nombre       string  `json:"nombre"        validate:"omitempty,min=2,max=100"`
	Email        *string `json:"email"         validate:"omitempty,email"`
	Rol          string  `json:"rol"           validate:"omitempty,oneof=cajero supervisor administrador"`
	PuntoDeVenta *int    `json:"punto_de_venta"`
	Password     string  `json:"password"      validate:"omitempty,min=8"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Nombre       string  `json:"nombre"`
	Email        *string `json:"email"`
	Rol          string  `json:"rol"`
	PuntoDeVenta *int    `json:"punto_de_venta"`
	Activo       bool    `json:"activo"`
	UltimoLogin  *string `json:"ultimo_login"`
}

type LoginResponse struct {
	AccessToken      string          `json:"access_token"`
	RefreshToken     string          `json:"refresh_token,omitempty"`
	TokenType        string          `json:"token_type"`
	ExpiresIn        int             `json:"expires_in"`                   // seconds
	RefreshExpiresIn int             `json:"refresh_expires_in,omitempty"` // seconds
	User             UsuarioResponse `json:"user"`
}
