// Package delivery defines the transport layer contract shared by all servers.
package delivery

import "context"

// Delivery is a long-running transport (HTTP API, jobs worker) managed by fx.
type Delivery interface {
	// Serve blocks until the server stops or fails.
	Serve(ctx context.Context) error
}
