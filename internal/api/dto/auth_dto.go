package dto

import "time"

// LoginRequest payload for POST /login.
type LoginRequest struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

// LoginResponse carries the session token and caller identity.
type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"rol"`
	Username  string    `json:"username"`
	UserID    int       `json:"id_usuario"`
	ExpiresAt time.Time `json:"expira"`
}

// PrincipalResponse describes the verified caller.
type PrincipalResponse struct {
	UserID   int    `json:"id_usuario"`
	Username string `json:"username"`
	Role     string `json:"rol"`
}
