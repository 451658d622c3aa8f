package signal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// HeartbeatInterval is how often the client re-registers its presence
const HeartbeatInterval = 3 * time.Second

const (
	outboxSize = 64
	writeWait  = 10 * time.Second
)

var (
	// ErrClientClosed is returned by sends after Close
	ErrClientClosed = errors.New("signal: client closed")
	// ErrClientBusy is returned when the outbox is full
	ErrClientBusy = errors.New("signal: outbox full")
)

// Client is a game's connection to the directory relay. Sends never block;
// they queue for a writer goroutine.
type Client struct {
	conn   *websocket.Conn
	name   string
	logger *log.Logger

	out    chan Message
	events chan Message
	done   chan struct{}
	once   sync.Once
}

// Dial connects to the relay at url and registers name
func Dial(ctx context.Context, url, name string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial directory %s: %w", url, err)
	}
	c := &Client{
		conn:   conn,
		name:   name,
		logger: logger,
		out:    make(chan Message, outboxSize),
		events: make(chan Message, outboxSize),
		done:   make(chan struct{}),
	}
	go c.writeLoop()
	go c.readLoop()
	if err := c.register(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Events yields relayed notifications and lobby lists. It is closed when
// the connection ends.
func (c *Client) Events() <-chan Message {
	return c.events
}

// Name is the presence this client registered
func (c *Client) Name() string {
	return c.name
}

func (c *Client) register() error {
	return c.send(Message{Type: TypeRegisterPlayer, Name: c.name})
}

// AnnounceLobby advertises a hosted room
func (c *Client) AnnounceLobby(code, hostName string, count, maxPlayers int) error {
	return c.send(Message{
		Type:        TypeRegisterLobby,
		Code:        code,
		HostName:    hostName,
		PlayerCount: count,
		MaxPlayers:  maxPlayers,
	})
}

// RequestLobbies asks for the lobby list; the answer arrives on Events
func (c *Client) RequestLobbies() error {
	return c.send(Message{Type: TypeGetLobbies})
}

// Invite asks target to join roomCode
func (c *Client) Invite(target, roomCode string) error {
	return c.send(Message{Type: TypeSendInvite, TargetName: target, HostName: c.name, RoomCode: roomCode})
}

// FriendRequest sends a friend request to another presence
func (c *Client) FriendRequest(to string) error {
	return c.send(Message{Type: TypeFriendRequest, From: c.name, To: to})
}

// FriendAccept accepts a friend request from another presence
func (c *Client) FriendAccept(to string) error {
	return c.send(Message{Type: TypeFriendAccept, From: c.name, To: to})
}

func (c *Client) send(m Message) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.out <- m:
		return nil
	default:
		return ErrClientBusy
	}
}

// Close shuts the connection down
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()
	for {
		var m Message
		select {
		case <-c.done:
			return
		case <-ticker.C:
			m = Message{Type: TypeRegisterPlayer, Name: c.name}
		case m = <-c.out:
		}
		b, err := Encode(m)
		if err != nil {
			c.logger.Printf("signal: encode %s: %v", m.Type, err)
			continue
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			c.logger.Printf("signal: write %s: %v", m.Type, err)
			c.Close()
			return
		}
	}
}

func (c *Client) readLoop() {
	defer close(c.events)
	defer c.Close()
	for {
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		m, err := Decode(b)
		if err != nil {
			c.logger.Printf("signal: dropping message: %v", err)
			continue
		}
		select {
		case c.events <- m:
		default:
			if debug.Load() {
				c.logger.Printf("signal: events full, dropping %s", m.Type)
			}
		}
	}
}
