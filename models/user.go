package models

import "time"

// User represents a registered account.
// Password holds the bcrypt hash and is never written to JSON responses.
// JSON names follow the /usuarios API contract (nome, usuario, foto).
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"nome" db:"name"`
	Email     string    `json:"usuario" db:"email"`
	Password  string    `json:"-" db:"password"`
	Photo     string    `json:"foto" db:"photo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserRequest is the body of /usuarios/cadastrar and /usuarios/atualizar.
// ID is ignored on registration and required on update.
type UserRequest struct {
	ID       int64  `json:"id"`
	Name     string `json:"nome" validate:"required,max=255"`
	Email    string `json:"usuario" validate:"required,email,max=255"`
	Password string `json:"senha" validate:"required,min=8"` // Plaintext; hashed by the service
	Photo    string `json:"foto" validate:"max=5000"`
}

// LoginRequest for /usuarios/logar
// Clients may send the full login object; only usuario and senha are read.
type LoginRequest struct {
	Email    string `json:"usuario"`
	Password string `json:"senha"`
}

// LoginResponse is returned on successful login.
// Token carries the scheme prefix, e.g. "Bearer eyJ...".
type LoginResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"usuario"`
	Photo string `json:"foto"`
	Token string `json:"token"`
}
