package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// User errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("username already exists")
	ErrUserInactive         = errors.New("user account is deactivated")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrCannotDeleteSelf     = errors.New("cannot delete your own account")
	ErrCannotChangeOwnRole  = errors.New("cannot change your own role")
	ErrCannotDisableSelf    = errors.New("cannot deactivate your own account")
	ErrWeakPassword         = errors.New("password does not meet the minimum requirements")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
)

// Instruction errors
var (
	ErrInstructionNotFound = errors.New("instruction not found")
	ErrDuplicateOrderPair  = errors.New("instruction with this sales order and production order already exists")
	ErrCutoffActive        = errors.New("submissions are blocked during the cutoff window")
)

// Customer code errors
var (
	ErrCustomerCodeNotFound = errors.New("customer code not found")
	ErrCustomerCodeExists   = errors.New("customer code already exists")
)
