package auth

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrManagerAccessRequired = errors.New("manager or owner access required")
	ErrMissingUserID         = errors.New("token carries no user_id")
)
