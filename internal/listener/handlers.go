package listener

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-log"

	"github.com/pixil98/go-town/internal/directory"
	"github.com/pixil98/go-town/internal/gateway"
	"github.com/pixil98/go-town/internal/protocol"
	"github.com/pixil98/go-town/internal/town"
)

// Request headers carrying credentials. The update password authorizes
// town administration; the session token authorizes in-town requests.
const (
	headerTownPassword = "X-Town-Password"
	headerSessionToken = "X-Session-Token"
)

type Handler struct {
	directory *directory.TownDirectory
	cm        *gateway.ConnectionManager
	upgrader  websocket.Upgrader
}

func NewHandler(d *directory.TownDirectory, cm *gateway.ConnectionManager) *Handler {
	return &Handler{
		directory: d,
		cm:        cm,
		upgrader: websocket.Upgrader{
			// Cross-origin web clients are expected.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /towns", h.createTown)
	mux.HandleFunc("GET /towns", h.listTowns)
	mux.HandleFunc("PATCH /towns/{townID}", h.updateTown)
	mux.HandleFunc("DELETE /towns/{townID}", h.deleteTown)
	mux.HandleFunc("POST /towns/{townID}/conversationArea", h.createConversationArea)
	mux.HandleFunc("POST /towns/{townID}/viewingArea", h.createViewingArea)
	mux.HandleFunc("GET /towns/{townID}/chatMessages", h.chatMessages)
	mux.HandleFunc("GET /town/{townID}/ws", h.connect)
	return mux
}

type createTownRequest struct {
	FriendlyName     string `json:"friendlyName"`
	IsPubliclyListed bool   `json:"isPubliclyListed"`
	MapPath          string `json:"mapPath,omitempty"`
}

type createTownResponse struct {
	TownID             string `json:"townID"`
	TownUpdatePassword string `json:"townUpdatePassword"`
}

func (h *Handler) createTown(w http.ResponseWriter, r *http.Request) {
	var req createTownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	id, password, err := h.directory.CreateTown(req.FriendlyName, req.IsPubliclyListed, req.MapPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, createTownResponse{
		TownID:             id,
		TownUpdatePassword: password,
	})
}

func (h *Handler) listTowns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.directory.ListTowns())
}

func (h *Handler) updateTown(w http.ResponseWriter, r *http.Request) {
	var update protocol.TownSettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if !h.directory.UpdateTown(r.PathValue("townID"), r.Header.Get(headerTownPassword), update) {
		writeError(w, http.StatusUnauthorized, "invalid town id or password")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) deleteTown(w http.ResponseWriter, r *http.Request) {
	if !h.directory.DeleteTown(r.PathValue("townID"), r.Header.Get(headerTownPassword)) {
		writeError(w, http.StatusUnauthorized, "invalid town id or password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createConversationArea(w http.ResponseWriter, r *http.Request) {
	t, ok := h.authorizedTown(w, r)
	if !ok {
		return
	}

	var model protocol.Interactable
	if err := json.NewDecoder(r.Body).Decode(&model); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if !t.AddConversationArea(model) {
		writeError(w, http.StatusBadRequest, "unable to create conversation area")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) createViewingArea(w http.ResponseWriter, r *http.Request) {
	t, ok := h.authorizedTown(w, r)
	if !ok {
		return
	}

	var model protocol.Interactable
	if err := json.NewDecoder(r.Body).Decode(&model); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if !t.AddViewingArea(model) {
		writeError(w, http.StatusBadRequest, "unable to create viewing area")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) chatMessages(w http.ResponseWriter, r *http.Request) {
	t, ok := h.authorizedTown(w, r)
	if !ok {
		return
	}

	var filter *string
	if id := r.URL.Query().Get("interactableID"); id != "" {
		filter = &id
	}
	writeJSON(w, http.StatusOK, t.GetChatMessages(filter))
}

// connect upgrades the request and hands the socket to the gateway. The
// session runs until the client disconnects or the town closes.
func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	townID := r.PathValue("townID")
	userID := r.URL.Query().Get("userID")
	userName := r.URL.Query().Get("userName")
	if userID == "" || userName == "" {
		writeError(w, http.StatusBadRequest, "userID and userName are required")
		return
	}
	if h.directory.GetTown(townID) == nil {
		writeError(w, http.StatusNotFound, "no such town")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the failure response.
		log.GetLogger(r.Context()).Errorf("upgrading connection: %s", err)
		return
	}

	h.cm.AcceptConnection(r.Context(), conn, gateway.JoinRequest{
		TownID:   townID,
		UserID:   userID,
		UserName: userName,
	})
}

// authorizedTown resolves the town and checks the session token header,
// writing the failure response itself when either is invalid.
func (h *Handler) authorizedTown(w http.ResponseWriter, r *http.Request) (*town.Town, bool) {
	t := h.directory.GetTown(r.PathValue("townID"))
	if t == nil {
		writeError(w, http.StatusNotFound, "no such town")
		return nil, false
	}
	if t.GetPlayerBySessionToken(r.Header.Get(headerSessionToken)) == nil {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return nil, false
	}
	return t, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
