package user

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateHandle = errors.New("handle already taken")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrDuplicatePhone  = errors.New("phone number already registered")
)
