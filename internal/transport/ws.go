package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSNetwork reaches other peers through a Switchboard over WebSockets
type WSNetwork struct {
	// BaseURL is the switchboard origin, e.g. ws://localhost:8080
	BaseURL string
	Dialer  *websocket.Dialer
	Logger  *log.Logger
}

// NewWSNetwork creates a network talking to the switchboard at baseURL
func NewWSNetwork(baseURL string, logger *log.Logger) *WSNetwork {
	if logger == nil {
		logger = log.Default()
	}
	return &WSNetwork{
		BaseURL: baseURL,
		Dialer:  &websocket.Dialer{HandshakeTimeout: ConnectTimeout},
		Logger:  logger,
	}
}

func (n *WSNetwork) dial(ctx context.Context, path, code string) (*websocket.Conn, error) {
	u := n.BaseURL + path + "?code=" + url.QueryEscape(code)
	conn, resp, err := n.Dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusConflict:
				return nil, ErrRoomTaken
			case http.StatusNotFound:
				return nil, ErrNoHost
			}
		}
		return nil, err
	}
	conn.SetReadLimit(readLimit)
	return conn, nil
}

// Listen registers as host of code on the switchboard
func (n *WSNetwork) Listen(ctx context.Context, code string) (Listener, error) {
	conn, err := n.dial(ctx, HostPath, code)
	if err != nil {
		return nil, err
	}
	l := &wsListener{
		link:   &link{conn: conn},
		logger: n.Logger,
		accept: make(chan Conn, 64),
		peers:  make(map[string]*wsPeer),
	}
	go l.readLoop()
	return l, nil
}

// Dial joins the host of code
func (n *WSNetwork) Dial(ctx context.Context, code string) (Conn, error) {
	conn, err := n.dial(ctx, JoinPath, code)
	if err != nil {
		return nil, err
	}
	c := &wsConn{link: &link{conn: conn}, in: make(chan []byte, queueSize)}
	go c.readLoop()
	return c, nil
}

// wsConn is a client's direct socket to the switchboard
type wsConn struct {
	*link
	in   chan []byte
	once sync.Once
}

func (c *wsConn) ID() string {
	return c.conn.LocalAddr().String()
}

func (c *wsConn) Send(b []byte) error {
	if err := c.write(b); err != nil {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return nil
}

func (c *wsConn) Messages() <-chan []byte {
	return c.in
}

func (c *wsConn) Close() error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *wsConn) readLoop() {
	defer close(c.in)
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case c.in <- payload:
		default:
			// reader stopped draining; the connection is as good as dead
			c.conn.Close()
			return
		}
	}
}

// wsListener demultiplexes switchboard frames into one Conn per client
type wsListener struct {
	link   *link
	logger *log.Logger
	accept chan Conn

	mu    sync.Mutex
	peers map[string]*wsPeer
}

func (l *wsListener) Accept() <-chan Conn {
	return l.accept
}

func (l *wsListener) Close() error {
	return l.link.conn.Close()
}

func (l *wsListener) readLoop() {
	defer func() {
		close(l.accept)
		l.mu.Lock()
		peers := l.peers
		l.peers = make(map[string]*wsPeer)
		l.mu.Unlock()
		for _, p := range peers {
			p.shutdown()
		}
	}()
	for {
		_, payload, err := l.link.conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if !errors.As(err, &ce) {
				l.logger.Printf("transport: host link read: %v", err)
			}
			return
		}
		var f Frame
		if err := json.Unmarshal(payload, &f); err != nil {
			l.logger.Printf("transport: discarding malformed frame: %v", err)
			continue
		}
		switch f.Kind {
		case FrameOpen:
			p := &wsPeer{id: f.Peer, owner: l, in: make(chan []byte, queueSize)}
			l.mu.Lock()
			l.peers[f.Peer] = p
			l.mu.Unlock()
			select {
			case l.accept <- p:
			default:
				l.logger.Printf("transport: accept queue full, refusing %s", f.Peer)
				p.Close()
			}
		case FrameData:
			l.mu.Lock()
			p := l.peers[f.Peer]
			l.mu.Unlock()
			if p != nil {
				p.deliver(f.Data)
			}
		case FrameClose:
			l.mu.Lock()
			p := l.peers[f.Peer]
			delete(l.peers, f.Peer)
			l.mu.Unlock()
			if p != nil {
				p.shutdown()
			}
		}
	}
}

// wsPeer is one client as seen by the host
type wsPeer struct {
	id    string
	owner *wsListener
	in    chan []byte

	mu     sync.Mutex
	closed bool
}

func (p *wsPeer) ID() string {
	return p.id
}

func (p *wsPeer) Send(b []byte) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return p.owner.link.writeFrame(Frame{Kind: FrameData, Peer: p.id, Data: b})
}

func (p *wsPeer) Messages() <-chan []byte {
	return p.in
}

func (p *wsPeer) Close() error {
	p.owner.mu.Lock()
	delete(p.owner.peers, p.id)
	p.owner.mu.Unlock()
	if p.shutdown() {
		return p.owner.link.writeFrame(Frame{Kind: FrameClose, Peer: p.id})
	}
	return nil
}

// deliver queues b for the host. A full queue closes the peer instead of
// dropping, so the host never sees a gap in the stream.
func (p *wsPeer) deliver(b []byte) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	select {
	case p.in <- b:
		p.mu.Unlock()
		return
	default:
	}
	p.mu.Unlock()
	p.owner.logger.Printf("transport: peer %s stopped draining, closing", p.id)
	p.Close()
}

func (p *wsPeer) shutdown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.closed = true
	close(p.in)
	return true
}
