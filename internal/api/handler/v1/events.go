package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/songcontest/songcontest-api/internal/api/middleware"
	"github.com/songcontest/songcontest-api/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	sendBufferSize = 16
)

type phaseEvent struct {
	Type string `json:"type"`
	domain.PhaseChange
}

// EditionReader is the access check run before a subscription is accepted.
type EditionReader interface {
	GetEdition(ctx context.Context, userID string, editionID uint) (domain.Edition, error)
}

type subscriber struct {
	conn      *websocket.Conn
	send      chan []byte
	editionID uint
	userID    string
}

type broadcast struct {
	editionID uint
	payload   []byte
}

// EventsHandler streams phase changes of an edition to its participants over
// websocket. It implements service.PhaseNotifier.
type EventsHandler struct {
	editions EditionReader
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	subscribers map[uint]map[*subscriber]struct{}

	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan broadcast
	done       chan struct{}
}

func NewEventsHandler(editions EditionReader, allowedOrigins []string) *EventsHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &EventsHandler{
		editions: editions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		subscribers: make(map[uint]map[*subscriber]struct{}),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		broadcast:   make(chan broadcast, 64),
		done:        make(chan struct{}),
	}
}

// Run serves the hub until ctx is done, then disconnects every subscriber.
func (h *EventsHandler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, subs := range h.subscribers {
				for s := range subs {
					close(s.send)
				}
			}
			h.subscribers = make(map[uint]map[*subscriber]struct{})
			h.mu.Unlock()
			return
		case s := <-h.register:
			h.mu.Lock()
			if h.subscribers[s.editionID] == nil {
				h.subscribers[s.editionID] = make(map[*subscriber]struct{})
			}
			h.subscribers[s.editionID][s] = struct{}{}
			h.mu.Unlock()
		case s := <-h.unregister:
			h.mu.Lock()
			h.drop(s)
			h.mu.Unlock()
		case b := <-h.broadcast:
			h.mu.Lock()
			for s := range h.subscribers[b.editionID] {
				select {
				case s.send <- b.payload:
				default:
					zap.L().Warn("dropping slow event subscriber", zap.Uint("editionID", s.editionID), zap.String("userID", s.userID))
					h.drop(s)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop must be called with mu held.
func (h *EventsHandler) drop(s *subscriber) {
	subs, ok := h.subscribers[s.editionID]
	if !ok {
		return
	}
	if _, ok = subs[s]; !ok {
		return
	}
	delete(subs, s)
	close(s.send)
	if len(subs) == 0 {
		delete(h.subscribers, s.editionID)
	}
}

func (h *EventsHandler) subscriberCount(editionID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[editionID])
}

// PhaseChanged queues the change for the edition's subscribers. It never
// blocks the caller; events are dropped when the hub is saturated.
func (h *EventsHandler) PhaseChanged(change domain.PhaseChange) {
	payload, err := json.Marshal(phaseEvent{Type: "phase_changed", PhaseChange: change})
	if err != nil {
		zap.L().Error("json.Marshal phase event", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- broadcast{editionID: change.EditionID, payload: payload}:
	default:
		zap.L().Warn("event hub saturated, phase event dropped", zap.Uint("editionID", change.EditionID))
	}
}

// HandleEditionEvents godoc
// @Summary      Subscribe to edition events
// @Description  Upgrades to a websocket that receives a JSON message for every phase change of the edition.
// @Tags         editions
// @Param        editionID  path      int  true  "Edition ID"
// @Success      101        {string}  string  "Switching Protocols"
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Router       /editions/{editionID}/events [get]
// @Security     BearerAuth
func (h *EventsHandler) HandleEditionEvents(ctx *gin.Context) {
	editionID, ok := pathID(ctx, "editionID")
	if !ok {
		return
	}

	userID := middleware.UserID(ctx)
	if _, err := h.editions.GetEdition(ctx.Request.Context(), userID, editionID); err != nil {
		renderErr(ctx, "v1.HandleEditionEvents -> h.editions.GetEdition", err)
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Debug("websocket upgrade failed", zap.Uint("editionID", editionID), zap.Error(err))
		return
	}

	s := &subscriber{
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		editionID: editionID,
		userID:    userID,
	}
	select {
	case h.register <- s:
	case <-h.done:
		conn.Close()
		return
	}

	go s.writePump()
	go s.readPump(h)
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the peer going away; clients do not send
// anything meaningful.
func (s *subscriber) readPump(h *EventsHandler) {
	defer func() {
		select {
		case h.unregister <- s:
		case <-h.done:
		}
		s.conn.Close()
	}()

	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("event subscriber closed", zap.Uint("editionID", s.editionID), zap.Error(err))
			}
			return
		}
	}
}
