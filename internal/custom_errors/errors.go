package custom_errors

import "errors"

// Storage
var (
	ErrPostNotFound      = errors.New("post not found")
	ErrDatabaseQuery     = errors.New("database query failed")
	ErrImageAttachFailed = errors.New("failed to attach images to post")
	ErrImageQueryFailed  = errors.New("failed to query post images")
	ErrStorage           = errors.New("storage error")
)

// Media
var (
	ErrNoMediaFound       = errors.New("no media found")
	ErrMediaProviderError = errors.New("media provider error")
	ErrMediaDownload      = errors.New("media download failed")
	ErrMediaDirectory     = errors.New("media directory unavailable")
	ErrUnsupportedScheme  = errors.New("unsupported media url scheme")
)

// Publishing
var (
	ErrPublishTransport = errors.New("publish transport error")
)

// Pipeline
var (
	ErrRunInProgress   = errors.New("pipeline run already in progress")
	ErrLockUnavailable = errors.New("run lock unavailable")
)

// Input
var (
	ErrInvalidInput = errors.New("invalid input")
)
