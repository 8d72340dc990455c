package auth

import "filesmanager/internal/pkg/apperr"

var (
	ErrUnauthorized = apperr.Unauthorized("Unauthorized")
	ErrUserExists   = apperr.InvalidInput("USER_EXISTS", "User already exists")
)
