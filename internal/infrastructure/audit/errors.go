package audit

import "errors"

// ErrDisabled indicates the audit trail is disabled in config.
// Callers should treat this as "run without a trail", not a failure.
var ErrDisabled = errors.New("audit: disabled in configuration")
