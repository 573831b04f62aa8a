package service

import "errors"

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: email already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotPaired            = errors.New("user does not belong to a couple")
	ErrMapNotFound          = errors.New("map not found")
	ErrPinNotFound          = errors.New("pin not found")
	ErrDrawingNotFound      = errors.New("drawing not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInternalServer       = errors.New("internal server error")
)
