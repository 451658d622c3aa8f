package handlers

import (
	"net/http"
	"strings"

	"github.com/aaronzipp/sussie-baka/internal/game"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// HandleLobbies lists the advertised lobbies, same as GET_LOBBIES
func (ctx *Context) HandleLobbies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ctx.LobbyStore.List())
}

// HandleInviteQR renders /invite/{code}.png for a listed lobby
func (ctx *Context) HandleInviteQR(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	if !strings.HasSuffix(file, ".png") {
		http.NotFound(w, r)
		return
	}
	roomCode := game.NormalizeRoomCode(strings.TrimSuffix(file, ".png"))
	if roomCode == "" {
		http.Error(w, "Invalid room code", http.StatusBadRequest)
		return
	}
	if !ctx.LobbyStore.Exists(roomCode) {
		http.Error(w, "Lobby not found", http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(ctx.InviteBase+roomCode, qrcode.Medium, qrSize)
	if err != nil {
		ctx.Logger.Printf("HandleInviteQR: encode %s: %v", roomCode, err)
		http.Error(w, "Failed to render invite", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
