package commission

import "lexpay/internal/errors"

// Service errors
var (
	ErrNoActiveConfig = errors.ErrConfigNotFound
)
