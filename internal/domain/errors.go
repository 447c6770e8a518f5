package domain

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrEmailExists         = errors.New("developer email already exists")
	ErrTicketExists        = errors.New("requirement ticket already exists")
	ErrDeveloperNotFound   = errors.New("developer not found")
	ErrRequirementNotFound = errors.New("requirement not found")
	ErrAdminNotFound       = errors.New("admin account not found")
)
