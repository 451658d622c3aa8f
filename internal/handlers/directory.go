package handlers

import (
	"net/http"

	"github.com/aaronzipp/sussie-baka/internal/signal"
	"golang.org/x/time/rate"
)

// HandleDirectory runs one directory connection: presence registration,
// lobby heartbeats, lobby listing and relayed invites
func (ctx *Context) HandleDirectory(w http.ResponseWriter, r *http.Request) {
	conn, err := ctx.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctx.Logger.Printf("HandleDirectory: upgrade failed: %v", err)
		return
	}
	conn.SetReadLimit(readLimit)
	p := &peer{conn: conn}
	limiter := rate.NewLimiter(ctx.RelayRate, ctx.RelayBurst)

	name := ""
	defer func() {
		ctx.Relay.Disconnect(p, name)
		conn.Close()
		if debug.Load() {
			ctx.Logger.Printf("HandleDirectory: %q disconnected", name)
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !limiter.Allow() {
			ctx.Logger.Printf("HandleDirectory: rate limit exceeded for %q, dropping message", name)
			continue
		}
		m, err := signal.Decode(payload)
		if err != nil {
			ctx.Logger.Printf("HandleDirectory: invalid message: %v", err)
			continue
		}
		name = ctx.Relay.Handle(p, name, m)
	}
}
