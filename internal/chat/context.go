package chat

import (
	"regexp"
	"slices"
	"strings"

	"github.com/MegaGrindStone/doc-web-ui/internal/models"
)

// The assembler builds the ordered message list for each downstream call. The chat path carries
// the whole history behind a synthesized persona instruction; the document and resume paths build
// independent lists from the pieces of history they need.

var chatSystemPrompt = []string{
	"You are a focused chat assistant inside a document workspace.",
	"When the user asks to create, draft, write, outline, summarize into a doc, generate text," +
		" or produce any long-form content (e.g., article, blog post, notes, PRD, email, plan," +
		" poem, spec), the document path will produce it.",
	"Do not paste whole documents into the chat transcript yourself; the UI streams them into a" +
		" document card.",
	"If the user is not asking for a document and just wants a short answer, answer succinctly" +
		" in chat.",
	"After a document is produced, do not repeat its content in your chat reply. Acknowledge the" +
		" creation and invite the user to open the document card.",
	"Ask brief clarifying questions only when essential; otherwise make a reasonable assumption" +
		" and proceed.",
	"If the user asks to change, revise, update, or modify an existing document, ALWAYS produce" +
		" a NEW document reflecting the requested changes. Do NOT edit in place or paste the" +
		" revised document into chat.",
}

var documentSystemPrompt = []string{
	"You generate a polished, useful document from the conversation context.",
	"If a table is provided, always use it as the primary data source for your answer.",
	"Output strictly content (Markdown).",
	"Content requirements:",
	"- Use clean Markdown with headings, short paragraphs, and bullet lists where helpful.",
	"- Include code blocks or tables if they add clarity.",
	"- Avoid YAML front matter and avoid repeating the title as an H1 unless explicitly requested.",
	"- Keep tone clear and professional; match any user-provided tone if specified.",
	"- If requirements are ambiguous, choose sensible defaults and proceed.",
}

const documentUpdateInstruction = "The user wants to update the following document. Apply their" +
	" requested changes to this document, keeping all other content unchanged unless specified."

var resumeSystemPrompt = []string{
	"You are an expert financial analyst.",
	"You are given a table extracted from an uploaded spreadsheet or document containing" +
		" infrastructure cost estimates.",
	"Your task is to forecast infrastructure costs for the period or timeframe specified by the" +
		" user, using the table below as the primary data source for your analysis and calculations.",
	"If the uploaded table covers a different period than requested, extrapolate or adjust as" +
		" needed to estimate costs for the user's requested timeframe.",
	"If a table is provided, always use it as the primary data source for your answer.",
	"Output strictly content (Markdown).",
	"Content requirements:",
	"- Use clean Markdown with headings, short paragraphs, and bullet lists where helpful.",
	"- Include tables if they add clarity.",
	"- Avoid YAML front matter and avoid repeating the title as an H1 unless explicitly requested.",
	"- Keep tone clear and professional; match any user-provided tone if specified.",
	"- If requirements are ambiguous, choose sensible defaults and proceed.",
}

const tableContextPreamble = "Below is the extracted table from the uploaded file. Use this data" +
	" for your analysis and calculations.\n\n"

var markdownTablePattern = regexp.MustCompile(`\|(.+)\|\n\|([\s\-|]+)\|`)

// BuildChatContext prepends the synthesized persona instruction to the full history. When the
// client attached a document identifier, the instruction names it as display context.
func BuildChatContext(history []models.Message, documentID string) []models.Message {
	lines := chatSystemPrompt
	if documentID != "" {
		lines = append(slices.Clone(lines),
			"Current document context: The user is viewing document with id: "+documentID+
				". Use this only as reference; still create a NEW document with changes.")
	}

	system := models.NewTextMessage(models.RoleSystem, strings.Join(lines, "\n"))
	return append([]models.Message{system}, history...)
}

// BuildDocumentContext builds the independent message list for a document-generation call. It
// returns the list and whether the call is an update of recoverable prior content, which decides
// the artifact title and the update instruction.
//
// The supporting context is chosen by priority: an extracted-table metadata payload found newest
// first, else a Markdown table found in text parts newest first, else the prior document content
// when updating. The user's latest request comes last, unless its text is the attached table.
func BuildDocumentContext(history []models.Message, intent Intent) ([]models.Message, bool) {
	prior := RecoverDocumentContent(history, intent.DocumentID)
	updating := intent.IsUpdate && prior != ""

	lines := documentSystemPrompt
	if updating {
		lines = append([]string{documentUpdateInstruction}, lines...)
	}
	msgs := []models.Message{
		models.NewTextMessage(models.RoleSystem, strings.Join(lines, "\n")),
	}

	table := latestExtractedTable(history)
	if table == "" {
		table = latestMarkdownTable(history)
	}

	switch {
	case table != "":
		msgs = append(msgs, models.NewTextMessage(models.RoleUser, tableContextPreamble+table))
	case updating:
		msgs = append(msgs, models.NewTextMessage(models.RoleUser, "Current document:\n\n"+prior))
	}

	msgs = append(msgs, latestRequest(intent.LastUser, table, "Write a document as requested."))
	return msgs, updating
}

// BuildResumeContext builds the message list for resuming a deferred action: the action's
// instruction, the recovered prior document content, and the originally deferred request (the
// user message preceding the assistant message that proposed the action).
func BuildResumeContext(history []models.Message, intent Intent) []models.Message {
	msgs := []models.Message{
		models.NewTextMessage(models.RoleSystem, strings.Join(resumeSystemPrompt, "\n")),
	}

	documentID := intent.DocumentID
	if intent.Pending != nil && intent.Pending.DocumentID != "" {
		documentID = intent.Pending.DocumentID
	}
	if prior := RecoverDocumentContent(history, documentID); prior != "" {
		msgs = append(msgs, models.NewTextMessage(models.RoleUser, tableContextPreamble+prior))
	}

	msgs = append(msgs, latestRequest(deferredRequest(history), "", "Write a forecast document as requested."))
	return msgs
}

// RecoverDocumentContent scans assistant messages newest first for a document part whose
// identifier equals documentID, and returns its content. An empty documentID recovers nothing.
func RecoverDocumentContent(history []models.Message, documentID string) string {
	if documentID == "" {
		return ""
	}

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != models.RoleAssistant {
			continue
		}
		for _, part := range history[i].Parts {
			if part.Type != models.PartTypeDocumentData {
				continue
			}
			if part.ID != documentID || part.Data == nil {
				continue
			}
			if part.Data.Content != "" {
				return part.Data.Content
			}
		}
	}

	return ""
}

func latestExtractedTable(history []models.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if table := history[i].ExtractedTable(); strings.TrimSpace(table) != "" {
			return table
		}
	}
	return ""
}

func latestMarkdownTable(history []models.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		for _, part := range history[i].Parts {
			if part.Type != models.PartTypeText {
				continue
			}
			if markdownTablePattern.MatchString(part.Text) {
				return part.Text
			}
		}
	}
	return ""
}

// latestRequest wraps the user's request as a fresh message carrying its original parts. A
// request whose text is exactly the already-attached table is dropped so the same table is not
// sent twice; the fallback text stands in when no request remains.
func latestRequest(user *models.Message, table, fallback string) models.Message {
	if user == nil {
		return models.NewTextMessage(models.RoleUser, fallback)
	}
	if table != "" && user.Text() == table {
		return models.NewTextMessage(models.RoleUser, fallback)
	}

	msg := models.NewTextMessage(models.RoleUser, "")
	msg.Parts = slices.Clone(user.Parts)
	msg.Metadata = user.Metadata
	return msg
}

// deferredRequest finds the user message that preceded the assistant message proposing the
// pending action.
func deferredRequest(history []models.Message) *models.Message {
	pendingIdx := -1
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleAssistant && history[i].PendingAction() != nil {
			pendingIdx = i
			break
		}
	}
	if pendingIdx == -1 {
		return nil
	}

	for i := pendingIdx - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			return &history[i]
		}
	}
	return nil
}
