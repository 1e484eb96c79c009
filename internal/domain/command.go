package domain

// TextCommandPrefix is the marker used to indicate text commands (vs audio)
const TextCommandPrefix = "__TEXT__:"

// ToolUse is one tool invocation chosen by the model. Arguments are the raw
// decoded JSON values; the registry validates them before execution.
type ToolUse struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolReturn is the literal result of executing one tool use, fed back to
// the model for the synthesis round.
type ToolReturn struct {
	ToolUseID string
	Content   string
	IsError   bool
}

// Outcome is what the pipeline hands back to the caller. Message is always
// literal, user-safe text and is shown verbatim.
type Outcome struct {
	Success   bool
	Message   string
	EntityRef string
}

type ChangeType string

const (
	ChangeShotLogged     ChangeType = "shot_logged"
	ChangeShotUpdated    ChangeType = "shot_updated"
	ChangeBeanAdded      ChangeType = "bean_added"
	ChangeBagAdded       ChangeType = "bag_added"
	ChangeEquipmentAdded ChangeType = "equipment_added"
	ChangeProfileAdded   ChangeType = "profile_added"
)
