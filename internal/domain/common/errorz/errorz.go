package errorz

import "errors"

var (
	ErrAlertExists      = errors.New("alert already exists")
	ErrUnknownAlertType = errors.New("unknown alert type")
	ErrNoDevices        = errors.New("no active devices for user")
)
