package chat_test

import (
	"testing"

	"github.com/MegaGrindStone/doc-web-ui/internal/chat"
	"github.com/MegaGrindStone/doc-web-ui/internal/models"
)

func userMessage(text string) models.Message {
	return models.NewTextMessage(models.RoleUser, text)
}

func assistantMessage(text string) models.Message {
	return models.NewTextMessage(models.RoleAssistant, text)
}

func assistantWithPending(text, kind, documentID string) models.Message {
	msg := assistantMessage(text)
	msg.Metadata = map[string]any{
		models.MetadataPendingAction: models.PendingAction{Kind: kind, DocumentID: documentID},
	}
	return msg
}

func TestClassifyDocumentKeywords(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantDocument bool
		wantUpdate   bool
	}{
		{
			name:         "plain question",
			text:         "What's 2+2?",
			wantDocument: false,
			wantUpdate:   false,
		},
		{
			name:         "draft request",
			text:         "Please draft a proposal for the Q3 launch",
			wantDocument: true,
			wantUpdate:   false,
		},
		{
			name:         "uppercase write",
			text:         "WRITE a memo",
			wantDocument: true,
			wantUpdate:   false,
		},
		{
			name:         "revise request",
			text:         "please revise the intro section",
			wantDocument: false,
			wantUpdate:   true,
		},
		{
			name:         "both sets match",
			text:         "update and write a new summary",
			wantDocument: true,
			wantUpdate:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := chat.Classify([]models.Message{userMessage(tt.text)})
			if intent.IsDocument != tt.wantDocument {
				t.Errorf("IsDocument = %v, want %v", intent.IsDocument, tt.wantDocument)
			}
			if intent.IsUpdate != tt.wantUpdate {
				t.Errorf("IsUpdate = %v, want %v", intent.IsUpdate, tt.wantUpdate)
			}
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	history := []models.Message{
		userMessage("draft a plan"),
		assistantMessage("Here you go."),
		userMessage("now revise it"),
	}

	first := chat.Classify(history)
	second := chat.Classify(history)

	if first.IsDocument != second.IsDocument ||
		first.IsUpdate != second.IsUpdate ||
		first.IsConfirmation != second.IsConfirmation ||
		first.DocumentID != second.DocumentID {
		t.Errorf("Classify() not deterministic: %+v vs %+v", first, second)
	}
}

func TestClassifyConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		history []models.Message
		want    bool
	}{
		{
			name: "ok after pending action",
			history: []models.Message{
				userMessage("forecast costs for 2027"),
				assistantWithPending("Shall I run the forecast?", "forecast", "doc-1"),
				userMessage("  OK "),
			},
			want: true,
		},
		{
			name: "affirmation without pending action",
			history: []models.Message{
				assistantMessage("Anything else?"),
				userMessage("ok"),
			},
			want: false,
		},
		{
			name: "non-affirmation after pending action",
			history: []models.Message{
				assistantWithPending("Shall I run the forecast?", "forecast", "doc-1"),
				userMessage("ok but change the timeframe first"),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := chat.Classify(tt.history)
			if intent.IsConfirmation != tt.want {
				t.Errorf("IsConfirmation = %v, want %v", intent.IsConfirmation, tt.want)
			}
		})
	}
}

func TestClassifyDocumentID(t *testing.T) {
	last := userMessage("revise the doc")
	last.Metadata = map[string]any{models.MetadataDocumentID: "doc-7"}

	intent := chat.Classify([]models.Message{
		userMessage("write a plan"),
		assistantMessage("Done."),
		last,
	})

	if intent.DocumentID != "doc-7" {
		t.Errorf("DocumentID = %q, want %q", intent.DocumentID, "doc-7")
	}
}

func TestClassifyEmptyHistory(t *testing.T) {
	intent := chat.Classify(nil)
	if intent.LastUser != nil {
		t.Errorf("LastUser = %+v, want nil", intent.LastUser)
	}
	if intent.IsDocument || intent.IsUpdate || intent.IsConfirmation {
		t.Errorf("intent flags set for empty history: %+v", intent)
	}
}
