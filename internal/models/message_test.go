package models_test

import (
	"encoding/json"
	"testing"

	"github.com/MegaGrindStone/doc-web-ui/internal/models"
)

func TestUnmarshalCanonicalMessage(t *testing.T) {
	data := []byte(`{
		"id": "msg-1",
		"role": "user",
		"parts": [{"type": "text", "text": "Hello"}],
		"metadata": {"documentId": "doc-1"}
	}`)

	var msg models.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if msg.ID != "msg-1" {
		t.Errorf("ID = %q, want %q", msg.ID, "msg-1")
	}
	if msg.Role != models.RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, models.RoleUser)
	}
	if len(msg.Parts) != 1 || msg.Parts[0].Text != "Hello" {
		t.Errorf("Parts = %+v, want one text part %q", msg.Parts, "Hello")
	}
	if msg.DocumentID() != "doc-1" {
		t.Errorf("DocumentID() = %q, want %q", msg.DocumentID(), "doc-1")
	}
}

func TestUnmarshalRawMessage(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantText string
	}{
		{
			name:     "string content",
			data:     `{"role": "user", "content": "What's 2+2?"}`,
			wantText: "What's 2+2?",
		},
		{
			name:     "fragment list content",
			data:     `{"role": "user", "content": [{"text": "Hello"}, {"text": "there"}]}`,
			wantText: "Hello there",
		},
		{
			name:     "missing content",
			data:     `{"role": "user"}`,
			wantText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg models.Message
			if err := json.Unmarshal([]byte(tt.data), &msg); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if msg.ID == "" {
				t.Error("raw message should get a minted id")
			}
			if got := msg.Text(); got != tt.wantText {
				t.Errorf("Text() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestMessageText(t *testing.T) {
	msg := models.Message{
		ID:   "msg-1",
		Role: models.RoleAssistant,
		Parts: []models.Part{
			{Type: models.PartTypeReasoning, Text: "thinking"},
			{Type: models.PartTypeText, Text: "Hello"},
			{Type: models.PartTypeSourceURL, URL: "https://example.com"},
			{Type: models.PartTypeDocumentData, ID: "msg-1", Data: &models.DocumentData{
				Status:  models.DocumentStatusSuccess,
				Content: "# Doc",
				Title:   "Generated Document",
			}},
			{Type: models.PartTypeText, Text: "world"},
		},
	}

	want := "thinking Hello world"
	if got := msg.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestPendingAction(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		want     *models.PendingAction
	}{
		{
			name:     "no metadata",
			metadata: nil,
			want:     nil,
		},
		{
			name: "typed value",
			metadata: map[string]any{
				"pendingAction": models.PendingAction{Kind: "forecast", DocumentID: "doc-1"},
			},
			want: &models.PendingAction{Kind: "forecast", DocumentID: "doc-1"},
		},
		{
			name: "decoded map value",
			metadata: map[string]any{
				"pendingAction": map[string]any{"kind": "forecast", "documentId": "doc-1"},
			},
			want: &models.PendingAction{Kind: "forecast", DocumentID: "doc-1"},
		},
		{
			name: "map without kind",
			metadata: map[string]any{
				"pendingAction": map[string]any{"documentId": "doc-1"},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := models.Message{ID: "msg-1", Role: models.RoleAssistant, Metadata: tt.metadata}
			got := msg.PendingAction()
			if tt.want == nil {
				if got != nil {
					t.Errorf("PendingAction() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("PendingAction() = nil, want value")
			}
			if *got != *tt.want {
				t.Errorf("PendingAction() = %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

func TestPendingActionSurvivesJSONRoundTrip(t *testing.T) {
	msg := models.Message{
		ID:    "msg-1",
		Role:  models.RoleAssistant,
		Parts: []models.Part{{Type: models.PartTypeText, Text: "Shall I proceed?"}},
		Metadata: map[string]any{
			"pendingAction": models.PendingAction{Kind: "forecast", DocumentID: "doc-1"},
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded models.Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	got := decoded.PendingAction()
	if got == nil {
		t.Fatal("PendingAction() = nil after round trip")
	}
	if got.Kind != "forecast" || got.DocumentID != "doc-1" {
		t.Errorf("PendingAction() = %+v, want forecast/doc-1", *got)
	}
}
