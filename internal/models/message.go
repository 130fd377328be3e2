package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Message represents an individual communication entry within a conversation. It contains the core
// components of a chat message including its unique identifier, the participant's role, the ordered
// content parts, and an open metadata mapping carrying auxiliary signals such as a referenced
// document identifier, an extracted table, or a pending action descriptor.
//
// Messages are immutable once appended to a history. The client holds the history and resends it
// whole on every turn, so there is no server-side session state attached to this type.
type Message struct {
	ID       string         `json:"id"`
	Role     Role           `json:"role"`
	Parts    []Part         `json:"parts"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Part is a tagged fragment of a message's content.
type Part struct {
	Type PartType `json:"type"`

	// Text would be filled if Type is PartTypeText or PartTypeReasoning.
	Text string `json:"text,omitempty"`

	// URL would be filled if Type is PartTypeSourceURL.
	URL string `json:"url,omitempty"`

	// ID would be filled if Type is PartTypeDocumentData. It equals the identifier of the
	// assistant message the part was emitted under, which is how the client correlates a chat
	// bubble with a document card, and how prior document content is recovered from history.
	ID string `json:"id,omitempty"`
	// Data would be filled if Type is PartTypeDocumentData.
	Data *DocumentData `json:"data,omitempty"`
}

// DocumentData is the payload of a document part. It is the sole channel by which the assistant
// communicates a generated or updated document to the client.
type DocumentData struct {
	Status  DocumentStatus `json:"status"`
	Content string         `json:"content"`
	Title   string         `json:"title"`
}

// PendingAction marks a deferred operation the assistant proposed and is awaiting user
// confirmation for. It lives under the "pendingAction" metadata key of an assistant message and
// is consumed the next time a turn is classified as a confirmation.
type PendingAction struct {
	Kind       string `json:"kind"`
	DocumentID string `json:"documentId,omitempty"`
}

// Role represents the role of a message participant.
type Role string

// PartType represents the type of a message part.
type PartType string

// DocumentStatus represents the lifecycle state of a document payload.
type DocumentStatus string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"

	// PartTypeText represents plain text content.
	PartTypeText PartType = "text"
	// PartTypeReasoning represents a model thinking trace, rendered distinctly by the client.
	PartTypeReasoning PartType = "reasoning"
	// PartTypeSourceURL represents a citation reference.
	PartTypeSourceURL PartType = "source-url"
	// PartTypeDocumentData represents a generated document payload.
	PartTypeDocumentData PartType = "document-data"

	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusStreaming  DocumentStatus = "streaming"
	DocumentStatusSuccess    DocumentStatus = "success"
	DocumentStatusError      DocumentStatus = "error"
)

// Metadata keys recognized by the turn core.
const (
	MetadataDocumentID     = "documentId"
	MetadataExtractedTable = "extractedTable"
	MetadataPendingAction  = "pendingAction"
)

// NewTextMessage creates a message with a freshly minted identifier and a single text part.
func NewTextMessage(role Role, text string) Message {
	return Message{
		ID:   uuid.New().String(),
		Role: role,
		Parts: []Part{
			{
				Type: PartTypeText,
				Text: text,
			},
		},
		Metadata: map[string]any{},
	}
}

// Text flattens the message to the concatenated text of its text and reasoning parts, joined by a
// single space. Part-type distinctions are lost, which is the accepted boundary behavior when
// translating messages for the upstream completion endpoint.
func (m Message) Text() string {
	var texts []string
	for _, part := range m.Parts {
		if part.Type != PartTypeText && part.Type != PartTypeReasoning {
			continue
		}
		if part.Text == "" {
			continue
		}
		texts = append(texts, part.Text)
	}
	return strings.Join(texts, " ")
}

// DocumentID returns the document identifier carried in the message metadata, or an empty string.
func (m Message) DocumentID() string {
	return metadataString(m.Metadata, MetadataDocumentID)
}

// ExtractedTable returns the extracted table payload carried in the message metadata, or an empty
// string.
func (m Message) ExtractedTable() string {
	return metadataString(m.Metadata, MetadataExtractedTable)
}

// PendingAction returns the pending action descriptor carried in the message metadata, or nil.
// Metadata decoded from JSON arrives as a generic map, so both the typed and the decoded shapes
// are accepted.
func (m Message) PendingAction() *PendingAction {
	v, ok := m.Metadata[MetadataPendingAction]
	if !ok {
		return nil
	}
	switch pa := v.(type) {
	case PendingAction:
		return &pa
	case *PendingAction:
		return pa
	case map[string]any:
		kind, _ := pa["kind"].(string)
		if kind == "" {
			return nil
		}
		docID, _ := pa["documentId"].(string)
		return &PendingAction{Kind: kind, DocumentID: docID}
	default:
		return nil
	}
}

func metadataString(metadata map[string]any, key string) string {
	v, ok := metadata[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// rawMessage mirrors the two inbound message shapes: the canonical id/parts form, and a raw
// role/content record whose content is either a plain string or a list of text fragments.
type rawMessage struct {
	ID       string          `json:"id"`
	Role     Role            `json:"role"`
	Parts    []Part          `json:"parts"`
	Metadata map[string]any  `json:"metadata"`
	Content  json.RawMessage `json:"content"`
}

// UnmarshalJSON normalizes inbound messages at the system boundary. A record carrying an id and
// parts is taken as-is; anything else is treated as a raw role/content record and wrapped into
// the canonical shape with a minted identifier and a single text part.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.ID != "" && raw.Parts != nil {
		m.ID = raw.ID
		m.Role = raw.Role
		m.Parts = raw.Parts
		m.Metadata = raw.Metadata
		return nil
	}

	m.ID = raw.ID
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.Role = raw.Role
	m.Parts = contentParts(raw.Content)
	m.Metadata = raw.Metadata
	return nil
}

func contentParts(content json.RawMessage) []Part {
	if len(content) == 0 {
		return []Part{{Type: PartTypeText}}
	}

	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		return []Part{{Type: PartTypeText, Text: text}}
	}

	var fragments []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(content, &fragments); err == nil {
		parts := make([]Part, 0, len(fragments))
		for _, f := range fragments {
			parts = append(parts, Part{Type: PartTypeText, Text: f.Text})
		}
		if len(parts) > 0 {
			return parts
		}
	}

	return []Part{{Type: PartTypeText, Text: string(content)}}
}
