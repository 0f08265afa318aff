package model

// ToolChoice identifies the backend capability selected for a request.
type ToolChoice string

const (
	// ToolProfileContext answers questions grounded in the owner's
	// profile, projects, and social snapshot. Read-only.
	ToolProfileContext ToolChoice = "get_profile_context"

	// ToolEmailDraft synthesizes a mail-compose draft from the user's
	// message. The only tool with a user-visible side effect.
	ToolEmailDraft ToolChoice = "compose_email_draft"
)

// DefaultTool is what routing falls back to whenever classification is
// inconclusive. Ambiguity must never resolve toward the tool that can
// trigger a mail-compose action, so the read-only tool is the default.
const DefaultTool = ToolProfileContext

// Known reports whether t names a recognized tool.
func (t ToolChoice) Known() bool {
	return t == ToolProfileContext || t == ToolEmailDraft
}
