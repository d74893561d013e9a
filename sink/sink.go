package sink

import (
	"context"
	"errors"
)

// ErrNoDestination is returned when a sink is constructed without a target.
var ErrNoDestination = errors.New("sink: no destination")

// Sink receives finished archives.
type Sink interface {
	// Deliver stores data under name. Implementations must be safe for
	// concurrent use.
	Deliver(ctx context.Context, data []byte, name string) error
}

// Func adapts a function to the Sink interface.
type Func func(ctx context.Context, data []byte, name string) error

// Deliver calls f.
func (f Func) Deliver(ctx context.Context, data []byte, name string) error {
	return f(ctx, data, name)
}
