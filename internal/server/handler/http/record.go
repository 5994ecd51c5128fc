package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/audio"
	"github.com/dmitrijs2005/rooznegar/internal/capture"
	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/dmitrijs2005/rooznegar/internal/journal"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"github.com/gorilla/websocket"
)

const recordWriteTimeout = 5 * time.Second

// RecorderFactory builds a recorder reading from the given audio capture.
type RecorderFactory func(c audio.Capture) *capture.Recorder

// Finisher stores a finished transcript.
type Finisher interface {
	Finish(ctx context.Context, email, transcript string, duration int) (*journal.Entry, error)
}

// RecordHandler runs one recording per websocket connection. Binary frames
// carry 16 kHz mono s16le PCM; a text frame {"type":"stop"} ends the
// recording. Closing the socket without "stop" discards it.
type RecordHandler struct {
	Tokens    TokenVerifier
	Recorders RecorderFactory
	Pipeline  Finisher
	Logger    logging.Logger
	Upgrader  websocket.Upgrader
}

type clientMessage struct {
	Type string `json:"type"`
}

type serverMessage struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	Entry *journal.Entry `json:"entry,omitempty"`
	Error string         `json:"error,omitempty"`
}

// wsConn serializes writes; gorilla allows one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(m serverMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(recordWriteTimeout))
	return c.conn.WriteJSON(m)
}

func (c *wsConn) close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
	_ = c.conn.Close()
}

func (h *RecordHandler) Record(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if t, ok := bearerToken(r); ok {
		token = t
	}
	email, err := h.Tokens.Email(token)
	if err != nil {
		writeError(w, common.ErrInvalidToken)
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied
		h.Logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	ws := &wsConn{conn: conn}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	stream := audio.NewStream()
	rec, err := h.Recorders(audio.StreamCapture{Stream: stream}).Start(ctx, func(text string) {
		if err := ws.send(serverMessage{Type: "transcript", Text: text}); err != nil {
			h.Logger.Debug(ctx, "failed to relay fragment", "error", err)
		}
	})
	if err != nil {
		h.Logger.Error(ctx, "failed to start recording", "error", err)
		_ = ws.send(serverMessage{Type: "error", Error: "recording unavailable"})
		ws.close(websocket.CloseInternalServerErr, "recording unavailable")
		return
	}

	if !h.readUntilStop(ctx, conn, stream) {
		rec.Abort()
		_ = conn.Close()
		return
	}

	res := rec.Stop()
	entry, err := h.Pipeline.Finish(ctx, email, res.Transcript, res.Duration)
	switch {
	case err != nil:
		h.Logger.Error(ctx, "failed to save recording", "error", err)
		_ = ws.send(serverMessage{Type: "error", Error: "failed to save entry"})
	case entry == nil:
		_ = ws.send(serverMessage{Type: "discarded"})
	default:
		_ = ws.send(serverMessage{Type: "saved", Entry: entry})
	}
	ws.close(websocket.CloseNormalClosure, "")
}

// readUntilStop feeds binary frames into stream. It returns true on a stop
// message and false when the client went away.
func (h *RecordHandler) readUntilStop(ctx context.Context, conn *websocket.Conn, stream *audio.Stream) bool {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.Logger.Warn(ctx, "recording socket closed", "error", err)
			}
			return false
		}

		switch kind {
		case websocket.BinaryMessage:
			if _, err := stream.Write(data); err != nil && !errors.Is(err, audio.ErrStreamStopped) {
				h.Logger.Warn(ctx, "failed to buffer audio", "error", err)
			}
		case websocket.TextMessage:
			var m clientMessage
			if err := json.Unmarshal(data, &m); err != nil {
				h.Logger.Debug(ctx, "ignoring malformed message", "error", err)
				continue
			}
			if m.Type == "stop" {
				return true
			}
		}
	}
}
