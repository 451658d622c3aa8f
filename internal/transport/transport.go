// Package transport is the point-to-multipoint connection layer under the
// sync protocol. A host listens on a room code and accepts any number of
// client connections; a client dials the code and gets exactly one
// connection to the host. Delivery is ordered per connection. A closed
// connection is final.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ConnectTimeout bounds Listen and Dial
const ConnectTimeout = 5 * time.Second

var (
	// ErrRoomTaken is returned by Listen when another host holds the code
	ErrRoomTaken = errors.New("transport: room code already taken")
	// ErrConnectFailed wraps every failure to establish a connection
	ErrConnectFailed = errors.New("transport: connection failed")
	// ErrNoHost is returned by Dial when nobody listens on the code
	ErrNoHost = errors.New("transport: no host for room")
	// ErrClosed is returned by Send after the connection ended
	ErrClosed = errors.New("transport: connection closed")
	// ErrBackpressure is returned when the peer stopped draining its queue
	ErrBackpressure = errors.New("transport: peer queue full")
)

// Conn is one ordered, reliable message stream
type Conn interface {
	ID() string
	Send(b []byte) error
	// Messages yields inbound messages and is closed when the connection ends
	Messages() <-chan []byte
	Close() error
}

// Listener is a host's rendezvous endpoint
type Listener interface {
	// Accept yields inbound connections and is closed when the listener ends
	Accept() <-chan Conn
	Close() error
}

// Network opens rendezvous endpoints and connections keyed by room code
type Network interface {
	Listen(ctx context.Context, code string) (Listener, error)
	Dial(ctx context.Context, code string) (Conn, error)
}

// Listen opens code on n within ConnectTimeout
func Listen(ctx context.Context, n Network, code string) (Listener, error) {
	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	l, err := n.Listen(ctx, code)
	if err != nil {
		return nil, connectError("listen", code, err)
	}
	return l, nil
}

// Dial connects to the host of code within ConnectTimeout
func Dial(ctx context.Context, n Network, code string) (Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	c, err := n.Dial(ctx, code)
	if err != nil {
		return nil, connectError("dial", code, err)
	}
	return c, nil
}

func connectError(op, code string, err error) error {
	if errors.Is(err, ErrRoomTaken) || errors.Is(err, ErrConnectFailed) {
		return fmt.Errorf("%s %s: %w", op, code, err)
	}
	return fmt.Errorf("%s %s: %w: %w", op, code, ErrConnectFailed, err)
}
