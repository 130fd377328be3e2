package chat

import "github.com/MegaGrindStone/doc-web-ui/internal/models"

// EventType identifies the kind of an outbound stream event.
type EventType string

const (
	// EventTextStart opens a text part under a message identifier.
	EventTextStart EventType = "text-start"
	// EventTextDelta appends a text fragment to an open text part.
	EventTextDelta EventType = "text-delta"
	// EventTextEnd closes a text part.
	EventTextEnd EventType = "text-end"
	// EventDocumentData carries a document payload under the same identifier as the turn's text
	// part, which is how the client pairs a chat bubble with a document card.
	EventDocumentData EventType = "document-data"
	// EventError terminates a turn that failed before producing its chat reply.
	EventError EventType = "error"
)

// Event is one entry of the ordered outbound stream. Fields beyond Type are filled per kind:
// ID for all text and document events, Delta for text-delta, Data for document-data, and
// Message for error.
type Event struct {
	Type  EventType            `json:"type"`
	ID    string               `json:"id,omitempty"`
	Delta string               `json:"delta,omitempty"`
	Data  *models.DocumentData `json:"data,omitempty"`

	Message string `json:"message,omitempty"`
}

// EventWriter is the sink for a turn's output events. Writes are single-producer and strictly
// ordered; implementations forward events as they are produced rather than buffering until the
// turn completes.
type EventWriter interface {
	Write(event Event) error
}
