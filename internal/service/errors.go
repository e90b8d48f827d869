package service

import "errors"

// Store errors.
var (
	ErrSyncInProgress     = errors.New("sync already in progress")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrListNotEmpty       = errors.New("list has tasks")
	ErrInvalidPriority    = errors.New("invalid priority")
)
