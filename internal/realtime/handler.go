package realtime

import (
	"net/http"
	"time"

	ws "github.com/coder/websocket"
	"github.com/frahmantamala/shopping-list/internal/auth"
	"github.com/frahmantamala/shopping-list/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Hub            *Hub
	OriginPatterns []string
}

func NewHandler(baseHandler *transport.BaseHandler, hub *Hub, originPatterns []string) *Handler {
	return &Handler{
		BaseHandler:    baseHandler,
		Hub:            hub,
		OriginPatterns: originPatterns,
	}
}

// Connect upgrades an authenticated request and serves it until the peer
// disconnects.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Server read and write timeouts would otherwise cut long-lived sockets.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := ws.Accept(w, r, &ws.AcceptOptions{
		OriginPatterns: h.OriginPatterns,
	})
	if err != nil {
		h.Logger.Warn("Connect: websocket accept failed", "error", err, "user_id", user.ID)
		return
	}
	defer conn.CloseNow()

	NewClient(h.Hub, conn, user.ID).Run(r.Context())
}
