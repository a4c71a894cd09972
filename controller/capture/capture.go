// Package capture delivers intercepted packets to the channel and hands them back to the kernel.
package capture

import (
	"context"
)

// Handler is called once per packet with its raw bytes, starting at the IPv6
// header. It returns nil to accept the packet as it is, or the bytes to
// accept in its place.
type Handler func(data []byte) []byte

type Queue interface {
	// Run delivers packets one at a time until ctx is done or the queue fails
	Run(ctx context.Context, fn Handler) error
	Close() error
}
