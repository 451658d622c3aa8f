package handlers

import (
	"fmt"
	"log"
	"net/http"
	"sync/atomic"

	"github.com/aaronzipp/sussie-baka/internal/signal"
	"github.com/aaronzipp/sussie-baka/internal/store"
	"github.com/aaronzipp/sussie-baka/internal/transport"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

var debug atomic.Bool

// SetDebug turns verbose per-message logging on or off for the handlers
// and the relay they drive
func SetDebug(on bool) {
	debug.Store(on)
	signal.SetDebug(on)
}

// Context holds shared application dependencies
type Context struct {
	LobbyStore    *store.LobbyStore
	PresenceStore *store.PresenceStore
	Relay         *signal.Relay
	Switchboard   *transport.Switchboard
	Logger        *log.Logger

	// RelayRate and RelayBurst bound inbound directory messages per connection
	RelayRate  rate.Limit
	RelayBurst int
	// InviteBase prefixes the room code in invite QR codes
	InviteBase string

	upgrader websocket.Upgrader
}

// NewContext wires the stores, the relay and the peer switchboard
func NewContext(lobbies *store.LobbyStore, logger *log.Logger) *Context {
	if logger == nil {
		logger = log.Default()
	}
	presences := store.NewPresenceStore()
	return &Context{
		LobbyStore:    lobbies,
		PresenceStore: presences,
		Relay:         signal.NewRelay(lobbies, presences, logger),
		Switchboard:   transport.NewSwitchboard(transport.SwitchboardConfig{Logger: logger}),
		Logger:        logger,
		RelayRate:     20,
		RelayBurst:    40,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Routes registers every endpoint of the relay process
func (ctx *Context) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", ctx.HandleIndex)
	mux.HandleFunc("GET /lobbies", ctx.HandleLobbies)
	mux.HandleFunc("GET /invite/{file}", ctx.HandleInviteQR)
	mux.HandleFunc("GET /healthz", ctx.HandleHealth)
	mux.Handle(transport.HostPath, ctx.Switchboard)
	mux.Handle(transport.JoinPath, ctx.Switchboard)
	return mux
}

// HandleIndex serves the directory socket on the root path and a short
// banner to plain HTTP requests
func (ctx *Context) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if websocket.IsWebSocketUpgrade(r) {
		ctx.HandleDirectory(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "sussie-baka discovery and signaling relay")
}

// HandleHealth reports liveness and registry sizes
func (ctx *Context) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{
		"lobbies":   len(ctx.LobbyStore.List()),
		"presences": ctx.PresenceStore.Count(),
		"rooms":     ctx.Switchboard.Rooms(),
	})
}
