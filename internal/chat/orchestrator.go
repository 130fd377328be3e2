package chat

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/MegaGrindStone/doc-web-ui/internal/models"
	"github.com/google/uuid"
)

// Completer is the upstream chat-completion capability. Complete waits for the full response;
// Stream yields text fragments lazily as the model produces them. A stream is restartable from
// scratch, not resumable mid-flight. Implementations live in internal/services.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
	Stream(ctx context.Context, messages []models.Message) iter.Seq2[string, error]
}

// Orchestrator runs one turn: it classifies the inbound history, branches into the resume,
// plain, or plain-plus-document path, and emits the ordered event sequence to the writer.
//
// A turn issues at most two upstream calls, always sequentially: the chat reply completes before
// the document call starts, so the acknowledgement text is causally prior to the artifact. An
// error from the first call aborts the turn with no partial output; an error from the second is
// logged and swallowed, leaving the already-emitted chat reply standing.
type Orchestrator struct {
	llm        Completer
	streamText bool

	logger *slog.Logger
}

const resumeAcknowledgement = "I created a document with the forecasted infrastructure costs" +
	" based on your uploaded estimate and request. Please open the document card below to view" +
	" the results."

// NewOrchestrator creates an Orchestrator on top of the given Completer. When streamText is set,
// the chat reply is forwarded delta by delta from the upstream token stream; otherwise the reply
// is emitted as a single delta once the buffered call returns.
func NewOrchestrator(llm Completer, streamText bool, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		llm:        llm,
		streamText: streamText,
		logger:     logger.With(slog.String("module", "orchestrator")),
	}
}

// Run executes one turn against the given history, writing events to w. The returned error is
// terminal for the turn; the caller surfaces it to the stream consumer.
func (o *Orchestrator) Run(ctx context.Context, history []models.Message, w EventWriter) error {
	intent := Classify(history)

	o.logger.Debug("Turn classified",
		slog.Bool("document", intent.IsDocument),
		slog.Bool("update", intent.IsUpdate),
		slog.Bool("confirmation", intent.IsConfirmation),
		slog.String("documentID", intent.DocumentID))

	if intent.IsConfirmation && intent.Pending != nil {
		return o.resume(ctx, history, intent, w)
	}

	messageID, err := o.plain(ctx, history, intent, w)
	if err != nil {
		return err
	}

	if intent.IsDocument || intent.IsUpdate {
		o.document(ctx, history, intent, messageID, w)
	}

	return nil
}

// resume consumes the pending action: one buffered call on the resume context, then a fixed
// acknowledgement and the produced document under one identifier. Terminal; the plain and
// document paths never run in the same turn.
func (o *Orchestrator) resume(ctx context.Context, history []models.Message, intent Intent, w EventWriter) error {
	o.logger.Info("Resuming pending action", slog.String("kind", intent.Pending.Kind))

	content, err := o.llm.Complete(ctx, BuildResumeContext(history, intent))
	if err != nil {
		return fmt.Errorf("resume call failed: %w", err)
	}

	messageID := uuid.New().String()
	if err := writeText(w, messageID, resumeAcknowledgement); err != nil {
		return err
	}

	return w.Write(Event{
		Type: EventDocumentData,
		ID:   messageID,
		Data: &models.DocumentData{
			Status:  models.DocumentStatusSuccess,
			Content: content,
			Title:   "Forecasted Infrastructure Costs",
		},
	})
}

// plain produces the chat reply and returns the message identifier its text events were emitted
// under. No text event is written before the first fragment arrives, so a call that fails
// immediately leaves the stream untouched.
func (o *Orchestrator) plain(ctx context.Context, history []models.Message, intent Intent, w EventWriter) (string, error) {
	msgs := BuildChatContext(history, intent.DocumentID)
	messageID := uuid.New().String()

	if !o.streamText {
		content, err := o.llm.Complete(ctx, msgs)
		if err != nil {
			return "", fmt.Errorf("chat call failed: %w", err)
		}
		return messageID, writeText(w, messageID, content)
	}

	started := false
	for chunk, err := range o.llm.Stream(ctx, msgs) {
		if err != nil {
			if !started {
				return "", fmt.Errorf("chat call failed: %w", err)
			}
			// Partial text is already out; close the part before surfacing the error.
			if werr := w.Write(Event{Type: EventTextEnd, ID: messageID}); werr != nil {
				return "", werr
			}
			return "", fmt.Errorf("chat stream failed: %w", err)
		}

		if !started {
			if err := w.Write(Event{Type: EventTextStart, ID: messageID}); err != nil {
				return "", err
			}
			started = true
		}
		if err := w.Write(Event{Type: EventTextDelta, ID: messageID, Delta: chunk}); err != nil {
			return "", err
		}
	}

	if !started {
		return messageID, writeText(w, messageID, "")
	}
	return messageID, w.Write(Event{Type: EventTextEnd, ID: messageID})
}

// document issues the second upstream call and emits the artifact under the plain path's
// identifier. Failures degrade gracefully: the chat reply stands, the document never appears.
func (o *Orchestrator) document(ctx context.Context, history []models.Message, intent Intent, messageID string, w EventWriter) {
	msgs, updating := BuildDocumentContext(history, intent)

	content, err := o.llm.Complete(ctx, msgs)
	if err != nil {
		o.logger.Error("Document call failed, leaving chat reply without artifact",
			slog.String("err", err.Error()))
		return
	}

	title := "Generated Document"
	if updating {
		title = "Updated Document"
	}

	if err := w.Write(Event{
		Type: EventDocumentData,
		ID:   messageID,
		Data: &models.DocumentData{
			Status:  models.DocumentStatusSuccess,
			Content: content,
			Title:   title,
		},
	}); err != nil {
		o.logger.Error("Failed to write document event", slog.String("err", err.Error()))
	}
}

func writeText(w EventWriter, messageID, content string) error {
	if err := w.Write(Event{Type: EventTextStart, ID: messageID}); err != nil {
		return err
	}
	if err := w.Write(Event{Type: EventTextDelta, ID: messageID, Delta: content}); err != nil {
		return err
	}
	return w.Write(Event{Type: EventTextEnd, ID: messageID})
}
