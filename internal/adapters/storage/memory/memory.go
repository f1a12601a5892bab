// Package memory holds in-memory repositories with the same semantics as the
// postgres ones (including the redemption compare-and-set). Used for local
// development and tests.
package memory

import "errors"

var ErrNotFound = errors.New("not found")
