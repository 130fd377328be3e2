package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/MegaGrindStone/doc-web-ui/internal/chat"
	"github.com/MegaGrindStone/doc-web-ui/internal/models"
	"github.com/tmaxmax/go-sse"
)

type chatRequest struct {
	Messages []models.Message `json:"messages"`
}

// sseEventWriter forwards orchestrator events to one client as server-sent events, one event per
// orchestrator event, flushed immediately so the client sees output as it is produced.
type sseEventWriter struct {
	sess *sse.Session
}

func (w sseEventWriter) Write(event chat.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sse.Message{Type: sse.Type(string(event.Type))}
	msg.AppendData(string(data))

	if err := w.sess.Send(msg); err != nil {
		return err
	}
	return w.sess.Flush()
}

// HandleChat processes one turn. The client POSTs its full message history; the newest entry's
// metadata may carry a document identifier and an extracted table. The response is an SSE stream
// of the turn's events, closed when the turn is done.
//
// The request context flows into the upstream calls, so a client disconnect cancels whatever
// call is in flight. A turn that fails before producing its chat reply ends with a terminal
// error event.
func (m Main) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.logger.Error("Failed to decode chat request", slog.String(errLoggerKey, err.Error()))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		m.logger.Error("Messages are required")
		http.Error(w, "Messages are required", http.StatusBadRequest)
		return
	}

	sess, err := sse.Upgrade(w, r)
	if err != nil {
		m.logger.Error("Failed to upgrade to SSE", slog.String(errLoggerKey, err.Error()))
		http.Error(w, "SSE unsupported", http.StatusInternalServerError)
		return
	}

	writer := sseEventWriter{sess: sess}
	if err := m.orchestrator.Run(r.Context(), req.Messages, writer); err != nil {
		m.logger.Error("Turn failed", slog.String(errLoggerKey, err.Error()))
		if werr := writer.Write(chat.Event{Type: chat.EventError, Message: err.Error()}); werr != nil {
			m.logger.Error("Failed to write error event", slog.String(errLoggerKey, werr.Error()))
		}
	}
}
