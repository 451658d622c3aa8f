package transport

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// queueSize is the per-connection inbound buffer
const queueSize = 1024

// MemoryNetwork is an in-process Network. Freeplay tooling and tests use it.
type MemoryNetwork struct {
	mu    sync.Mutex
	rooms map[string]*memListener
}

// NewMemoryNetwork creates an empty in-process network
func NewMemoryNetwork() *MemoryNetwork {
	return &MemoryNetwork{rooms: make(map[string]*memListener)}
}

// Listen claims code for a host
func (n *MemoryNetwork) Listen(ctx context.Context, code string) (Listener, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, taken := n.rooms[code]; taken {
		return nil, ErrRoomTaken
	}
	l := &memListener{
		net:    n,
		code:   code,
		accept: make(chan Conn, 64),
	}
	n.rooms[code] = l
	return l, nil
}

// Dial connects to the host listening on code
func (n *MemoryNetwork) Dial(ctx context.Context, code string) (Conn, error) {
	n.mu.Lock()
	l, ok := n.rooms[code]
	n.mu.Unlock()
	if !ok {
		return nil, ErrNoHost
	}
	client, server := pipe()
	if err := l.offer(ctx, server); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Drop closes the listener of code as if the host crashed
func (n *MemoryNetwork) Drop(code string) {
	n.mu.Lock()
	l := n.rooms[code]
	n.mu.Unlock()
	if l != nil {
		l.Close()
	}
}

type memListener struct {
	net    *MemoryNetwork
	code   string
	mu     sync.Mutex
	closed bool
	accept chan Conn
	conns  []*memConn
}

func (l *memListener) offer(ctx context.Context, c *memConn) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrNoHost
	}
	select {
	case l.accept <- c:
		l.conns = append(l.conns, c)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *memListener) Accept() <-chan Conn {
	return l.accept
}

func (l *memListener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.accept)
	conns := l.conns
	l.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	l.net.mu.Lock()
	if l.net.rooms[l.code] == l {
		delete(l.net.rooms, l.code)
	}
	l.net.mu.Unlock()
	return nil
}

type memConn struct {
	id     string
	mu     sync.Mutex
	closed bool
	in     chan []byte
	peer   *memConn
}

// pipe returns two connected in-memory connections sharing one id
func pipe() (*memConn, *memConn) {
	id := uuid.New().String()
	a := &memConn{id: id, in: make(chan []byte, queueSize)}
	b := &memConn{id: id, in: make(chan []byte, queueSize)}
	a.peer, b.peer = b, a
	return a, b
}

func (c *memConn) ID() string {
	return c.id
}

func (c *memConn) Send(b []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return c.peer.deliver(cp)
}

// deliver queues b for the reader. A reader that stopped draining can no
// longer be given an ordered stream, so a full queue ends the connection.
func (c *memConn) deliver(b []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	select {
	case c.in <- b:
		c.mu.Unlock()
		return nil
	default:
	}
	c.closed = true
	close(c.in)
	c.mu.Unlock()
	c.peer.shutdown()
	return ErrBackpressure
}

func (c *memConn) Messages() <-chan []byte {
	return c.in
}

func (c *memConn) Close() error {
	c.shutdown()
	c.peer.shutdown()
	return nil
}

func (c *memConn) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.in)
	}
}
