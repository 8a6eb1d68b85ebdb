package store

import "errors"

var (
	ErrUnitNotFound     = errors.New("unit not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCounterNotFound  = errors.New("counter not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrSettingsNotFound = errors.New("display settings not found")

	ErrCategoryInactive  = errors.New("category inactive")
	ErrCounterInactive   = errors.New("counter inactive")
	ErrInvalidTransition = errors.New("invalid ticket transition")
	ErrNoTicket          = errors.New("no ticket waiting")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")

	ErrDuplicatePrefix = errors.New("duplicate category prefix")
	ErrDuplicateUser   = errors.New("duplicate username or email")
	ErrUnitNotEmpty    = errors.New("unit has related records")
	ErrCategoryInUse   = errors.New("category has tickets")
	ErrCounterInUse    = errors.New("counter has tickets")
)
