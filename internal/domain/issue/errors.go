package issue

import "errors"

var (
	ErrIssueNotFound     = errors.New("issue not found")
	ErrVersionConflict   = errors.New("issue was modified concurrently, re-read and retry")
	ErrInvalidStatus     = errors.New("invalid issue status")
	ErrInvalidCategory   = errors.New("invalid issue category")
	ErrInvalidFlag       = errors.New("invalid moderation flag")
	ErrInvalidCoordinate = errors.New("latitude or longitude out of range")
)
