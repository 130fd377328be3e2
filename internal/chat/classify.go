package chat

import (
	"strings"

	"github.com/MegaGrindStone/doc-web-ui/internal/models"
)

// Intent is the classification of one inbound turn. It is computed once per turn by Classify and
// drives the orchestrator's branching.
type Intent struct {
	// IsDocument reports that the latest user message asks for long-form content.
	IsDocument bool
	// IsUpdate reports that the latest user message asks to change existing content. The two
	// keyword sets are evaluated independently, so both flags may be set; the orchestrator
	// resolves that ambiguity.
	IsUpdate bool
	// IsConfirmation reports that the latest user message affirms a pending action proposed by
	// the most recent assistant message.
	IsConfirmation bool

	// DocumentID is the document identifier the client attached to the newest message as display
	// context. There is no server-side document store to look it up in.
	DocumentID string

	// Pending is the deferred action found on the most recent assistant message, if any.
	Pending *models.PendingAction

	// LastUser is the newest user message in the history, or nil.
	LastUser *models.Message
}

var creationKeywords = []string{
	"write", "draft", "create", "generate", "outline", "expand", "turn", "poem", "article",
	"blog", "notes", "summary", "summarize", "plan", "spec", "email", "document", "doc",
	"prd", "proposal", "brief", "forecast",
}

var updateKeywords = []string{
	"update", "edit", "revise", "change", "modify", "replace", "improve", "rewrite",
	"reword", "rephrase", "add", "remove", "delete",
}

var affirmations = map[string]struct{}{
	"yes":         {},
	"please do":   {},
	"go ahead":    {},
	"proceed":     {},
	"sure":        {},
	"ok":          {},
	"okay":        {},
	"yep":         {},
	"affirmative": {},
}

// Classify inspects the running history and the newest user message and returns the turn's
// intent. It is a pure function of its input: no I/O, no hidden state.
func Classify(history []models.Message) Intent {
	var intent Intent

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			intent.LastUser = &history[i]
			break
		}
	}

	if intent.LastUser != nil {
		intent.DocumentID = intent.LastUser.DocumentID()
	} else if len(history) > 0 {
		intent.DocumentID = history[len(history)-1].DocumentID()
	}

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != models.RoleAssistant {
			continue
		}
		if pa := history[i].PendingAction(); pa != nil {
			intent.Pending = pa
			break
		}
	}

	if intent.LastUser == nil {
		return intent
	}

	text := strings.ToLower(intent.LastUser.Text())
	intent.IsDocument = containsAny(text, creationKeywords)
	intent.IsUpdate = containsAny(text, updateKeywords)

	if intent.Pending != nil {
		_, affirmed := affirmations[strings.TrimSpace(text)]
		intent.IsConfirmation = affirmed
	}

	return intent
}

func containsAny(text string, keywords []string) bool {
	for _, word := range keywords {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
