package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/MegaGrindStone/doc-web-ui/internal/chat"
)

// Main handles the HTTP surface of the document workspace: the per-turn chat stream, file
// extraction, and health. It owns the orchestrator and forwards its events to the client as
// server-sent events on the request that provoked them; there is no server-side session state.
type Main struct {
	orchestrator *chat.Orchestrator

	logger *slog.Logger
}

const errLoggerKey = "err"

// NewMain creates a new Main instance on top of the provided Completer. When streamText is set,
// chat replies are forwarded delta by delta from the upstream token stream.
func NewMain(llm chat.Completer, streamText bool, logger *slog.Logger) Main {
	return Main{
		orchestrator: chat.NewOrchestrator(llm, streamText, logger),
		logger:       logger.With(slog.String("module", "handlers")),
	}
}

// HandleHealth reports process liveness.
func (m Main) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
