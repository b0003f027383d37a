package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/michaelbrown/codepad/internal/execution"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // auth is handled in front of the server
	},
}

// wsIncoming is a message from the client.
type wsIncoming struct {
	Type       string               `json:"type"`
	ID         string               `json:"id"`
	SourceCode string               `json:"source_code"`
	LanguageID execution.LanguageID `json:"language_id"`
	Stdin      string               `json:"stdin"`
}

// wsOutgoing is a message to the client.
type wsOutgoing struct {
	Type    string             `json:"type"`
	ID      string             `json:"id,omitempty"`
	Outcome *execution.Outcome `json:"outcome,omitempty"`
	Content string             `json:"content,omitempty"`
}

// wsConn serializes writes to one websocket connection.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
	log  *zap.Logger
}

func (c *wsConn) send(v wsOutgoing) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("websocket marshal error", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.log.Debug("websocket write error", zap.Error(err))
	}
}

func (s *Server) handleRunSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade error", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	log := s.log.With(zap.String("conn", connID))
	ws := &wsConn{conn: conn, log: log}

	var wg sync.WaitGroup
	defer func() {
		// Closing the socket aborts everything it started
		s.runs.CancelConn(connID)
		wg.Wait()
	}()

	// Read loop
	for {
		var msg wsIncoming
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "run":
			if msg.ID == "" {
				msg.ID = uuid.NewString()
			}
			req := execution.Request{Source: msg.SourceCode, Language: msg.LanguageID, Stdin: msg.Stdin}
			if err := validateRun(req); err != nil {
				ws.send(wsOutgoing{Type: "error", ID: msg.ID, Content: err.Error()})
				continue
			}

			ctx, gen, err := s.runs.Start(context.Background(), connID, msg.ID)
			if err != nil {
				ws.send(wsOutgoing{Type: "error", ID: msg.ID, Content: err.Error()})
				continue
			}

			ws.send(wsOutgoing{Type: "pending", ID: msg.ID, Outcome: &execution.Outcome{}})

			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				defer s.runs.Finish(connID, id, gen)
				s.runOverSocket(ctx, ws, id, req)
			}(msg.ID)

		case "cancel":
			if !s.runs.Cancel(connID, msg.ID) {
				ws.send(wsOutgoing{Type: "error", ID: msg.ID, Content: "no such run in progress"})
			}

		default:
			ws.send(wsOutgoing{Type: "error", ID: msg.ID, Content: "invalid message"})
		}
	}
}

func (s *Server) runOverSocket(ctx context.Context, ws *wsConn, id string, req execution.Request) {
	out, err := s.runner.Run(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			ws.send(wsOutgoing{Type: "error", ID: id, Content: "cancelled"})
			return
		}
		ws.send(wsOutgoing{Type: "error", ID: id, Content: err.Error()})
		return
	}
	ws.send(wsOutgoing{Type: "outcome", ID: id, Outcome: out})
}
