package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/domain/state"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// liveMessage is one frame of the live stream.
type liveMessage struct {
	Type  string     `json:"type"`
	State *StateView `json:"state,omitempty"`
	Error string     `json:"error,omitempty"`
	Kind  string     `json:"kind,omitempty"`
	At    *time.Time `json:"at,omitempty"`
}

// LiveHandler streams the session state over a websocket: the current view
// on connect, then one frame per change, plus persistence failures.
type LiveHandler struct {
	Upgrader websocket.Upgrader
	Logger   *logrus.Logger
	Now      func() time.Time
}

// NewLiveHandler accepts upgrades from origins; an empty list keeps the
// same-origin check.
func NewLiveHandler(origins []string, logger *logrus.Logger) *LiveHandler {
	h := &LiveHandler{Logger: logger, Now: time.Now}
	if len(origins) > 0 {
		allowed := make(map[string]bool, len(origins))
		for _, o := range origins {
			allowed[strings.TrimRight(o, "/")] = true
		}
		h.Upgrader.CheckOrigin = func(r *http.Request) bool {
			return allowed[r.Header.Get("Origin")]
		}
	}
	return h
}

func (h *LiveHandler) Stream(c *gin.Context) {
	s, ok := sessionOf(c)
	if !ok {
		return
	}
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.Logger.WithError(err).Debug("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// only the newest state matters; older pending ones are replaced
	updates := make(chan state.State, 1)
	unwatch := s.Watch(func(st state.State) {
		for {
			select {
			case updates <- st:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unwatch()

	closed := make(chan struct{})
	go h.readLoop(conn, closed)

	log := h.Logger.WithField("session", s.ID)
	log.Debug("live stream opened")
	defer log.Debug("live stream closed")

	view := NewStateView(s.State(), h.Now())
	if err := h.write(conn, liveMessage{Type: "state", State: &view}); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		var msg liveMessage
		select {
		case <-closed:
			return
		case st := <-updates:
			view := NewStateView(st, h.Now())
			msg = liveMessage{Type: "state", State: &view}
		case f := <-s.Failures():
			at := f.At
			msg = liveMessage{Type: "failure", Kind: string(f.Command.Kind), Error: f.Err.Error(), At: &at}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}
		if err := h.write(conn, msg); err != nil {
			log.WithError(err).Debug("live write failed")
			return
		}
	}
}

func (h *LiveHandler) write(conn *websocket.Conn, msg liveMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readLoop drains client frames so pongs and close frames are processed.
func (h *LiveHandler) readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
