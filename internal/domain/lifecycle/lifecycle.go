// Package lifecycle holds shared constants for graceful startup and shutdown.
package lifecycle

import "time"

// DefaultTimeout bounds graceful shutdown of servers and clients.
const DefaultTimeout = 15 * time.Second
