package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/varunrmantri23/nexacode/internal/core"
)

const (
	socketWriteWait  = 10 * time.Second
	socketPongWait   = 60 * time.Second
	socketPingPeriod = socketPongWait * 9 / 10
)

// socketInbound is a message from the editor. Type "update" (the default)
// replaces one buffer, type "title" renames the session.
type socketInbound struct {
	Type  string `json:"type"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type socketOutbound struct {
	Type     string `json:"type"`
	Document string `json:"document,omitempty"`
	Version  uint64 `json:"version,omitempty"`
	Title    string `json:"title,omitempty"`
	Error    string `json:"error,omitempty"`
}

// sessionSocket carries buffer updates in and composed documents out. One
// goroutine reads; this one owns every write to the connection.
func (h *handler) sessionSocket(w http.ResponseWriter, r *http.Request) {
	s, err := h.lookupSession(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxSourceBytes)
	_ = conn.SetReadDeadline(time.Now().Add(socketPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socketPongWait))
	})

	replies := make(chan socketOutbound, 8)
	quit := make(chan struct{})
	done := make(chan struct{})
	defer close(quit)

	go func() {
		defer close(done)
		for {
			var msg socketInbound
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			reply, ok := h.applySocketMessage(s.ID, msg)
			if !ok {
				continue
			}
			select {
			case replies <- reply:
			case <-quit:
				return
			}
		}
	}()

	write := func(v socketOutbound) error {
		_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
		return conn.WriteJSON(v)
	}

	doc, version := s.Document()
	if err := write(socketOutbound{Type: "document", Document: doc, Version: version}); err != nil {
		return
	}

	ping := time.NewTicker(socketPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case _, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(socketWriteWait))
				return
			}
			doc, version := s.Document()
			if err := write(socketOutbound{Type: "document", Document: doc, Version: version}); err != nil {
				return
			}
		case reply := <-replies:
			if err := write(reply); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// applySocketMessage applies msg to the session and returns a reply for
// the writer, if any.
func (h *handler) applySocketMessage(id string, msg socketInbound) (socketOutbound, bool) {
	s, err := h.sessions.Get(id)
	if err != nil {
		return socketOutbound{Type: "error", Error: err.Error()}, true
	}

	switch msg.Type {
	case "", "update":
		kind, err := core.ParseBufferKind(msg.Kind)
		if err != nil {
			return socketOutbound{Type: "error", Error: err.Error()}, true
		}
		if err := s.Update(kind, msg.Value); err != nil {
			return socketOutbound{Type: "error", Error: err.Error()}, true
		}
		return socketOutbound{}, false
	case "title":
		if err := s.SetTitle(msg.Value); err != nil {
			return socketOutbound{Type: "error", Error: err.Error()}, true
		}
		return socketOutbound{Type: "title", Title: s.Title()}, true
	default:
		return socketOutbound{Type: "error", Error: "unknown message type " + msg.Type}, true
	}
}
