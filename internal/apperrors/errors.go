package apperrors

import (
	"errors"
)

var (
	ErrAuthFailed       = errors.New("media api credential grant failed")
	ErrTransportFailed  = errors.New("media api request failed at transport level")
	ErrRemoteRejected   = errors.New("media api rejected the request")
	ErrLocalFileMissing = errors.New("local asset file does not exist")

	ErrAssetNotFound = errors.New("asset not found")
	ErrAssetExists   = errors.New("asset already exists")

	ErrPresetNotFound = errors.New("size preset not found")
)
