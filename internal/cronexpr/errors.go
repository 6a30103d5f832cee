package cronexpr

import "errors"

// ErrInvalidCron is returned for any unrecognized field, out-of-range value,
// or non-positive step (e.g. "*/0").
var ErrInvalidCron = errors.New("invalid cron expression")
