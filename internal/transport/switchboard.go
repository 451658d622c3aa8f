package transport

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	HostPath = "/peer/host"
	JoinPath = "/peer/join"

	writeWait = 10 * time.Second
	readLimit = 1 << 20
)

// FrameKind tags a multiplexed frame on a host link
type FrameKind string

const (
	FrameOpen  FrameKind = "open"
	FrameData  FrameKind = "data"
	FrameClose FrameKind = "close"
)

// Frame is the unit exchanged on a host link. Client links carry raw
// payloads; the switchboard wraps them so one host socket serves many peers.
type Frame struct {
	Kind FrameKind `json:"kind"`
	Peer string    `json:"peer"`
	Data []byte    `json:"data,omitempty"`
}

// SwitchboardConfig configures a Switchboard
type SwitchboardConfig struct {
	Logger *log.Logger
}

// Switchboard is the rendezvous point of WSNetwork. It pairs one host link
// with any number of client links per room code and never looks inside the
// payloads it forwards.
type Switchboard struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	rooms map[string]*switchRoom
}

type switchRoom struct {
	host    *link
	clients map[string]*link
}

type link struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (l *link) write(b []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return l.conn.WriteMessage(websocket.TextMessage, b)
}

func (l *link) writeFrame(f Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return l.write(b)
}

// NewSwitchboard creates an empty switchboard
func NewSwitchboard(cfg SwitchboardConfig) *Switchboard {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Switchboard{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		rooms: make(map[string]*switchRoom),
	}
}

// Rooms returns the number of rooms with a connected host
func (s *Switchboard) Rooms() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// ServeHTTP routes host and join upgrades
func (s *Switchboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("code")))
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}
	switch r.URL.Path {
	case HostPath:
		s.handleHost(w, r, code)
	case JoinPath:
		s.handleJoin(w, r, code)
	default:
		http.NotFound(w, r)
	}
}

func (s *Switchboard) handleHost(w http.ResponseWriter, r *http.Request, code string) {
	s.mu.Lock()
	if _, taken := s.rooms[code]; taken {
		s.mu.Unlock()
		http.Error(w, "room code taken", http.StatusConflict)
		return
	}
	room := &switchRoom{clients: make(map[string]*link)}
	s.rooms[code] = room
	s.mu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("switchboard: host upgrade failed for %s: %v", code, err)
		s.dropRoom(code, room)
		return
	}
	conn.SetReadLimit(readLimit)
	host := &link{conn: conn}
	s.mu.Lock()
	room.host = host
	s.mu.Unlock()
	s.logger.Printf("switchboard: host opened room %s", code)

	defer func() {
		s.dropRoom(code, room)
		conn.Close()
		s.logger.Printf("switchboard: room %s closed", code)
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f Frame
		if err := json.Unmarshal(payload, &f); err != nil {
			s.logger.Printf("switchboard: discarding malformed frame in %s: %v", code, err)
			continue
		}
		s.mu.Lock()
		client := room.clients[f.Peer]
		s.mu.Unlock()
		if client == nil {
			continue
		}
		switch f.Kind {
		case FrameData:
			if err := client.write(f.Data); err != nil {
				client.conn.Close()
			}
		case FrameClose:
			client.conn.Close()
		}
	}
}

func (s *Switchboard) dropRoom(code string, room *switchRoom) {
	s.mu.Lock()
	if s.rooms[code] == room {
		delete(s.rooms, code)
	}
	clients := make([]*link, 0, len(room.clients))
	for _, c := range room.clients {
		clients = append(clients, c)
	}
	room.clients = make(map[string]*link)
	s.mu.Unlock()
	for _, c := range clients {
		c.conn.Close()
	}
}

func (s *Switchboard) handleJoin(w http.ResponseWriter, r *http.Request, code string) {
	s.mu.Lock()
	room, ok := s.rooms[code]
	ready := ok && room.host != nil
	s.mu.Unlock()
	if !ready {
		http.Error(w, "no host for room", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("switchboard: join upgrade failed for %s: %v", code, err)
		return
	}
	conn.SetReadLimit(readLimit)
	peer := uuid.New().String()
	client := &link{conn: conn}

	s.mu.Lock()
	if s.rooms[code] != room {
		s.mu.Unlock()
		conn.Close()
		return
	}
	room.clients[peer] = client
	host := room.host
	s.mu.Unlock()

	if err := host.writeFrame(Frame{Kind: FrameOpen, Peer: peer}); err != nil {
		conn.Close()
		return
	}
	defer func() {
		s.mu.Lock()
		delete(room.clients, peer)
		s.mu.Unlock()
		conn.Close()
		_ = host.writeFrame(Frame{Kind: FrameClose, Peer: peer})
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := host.writeFrame(Frame{Kind: FrameData, Peer: peer, Data: payload}); err != nil {
			return
		}
	}
}
