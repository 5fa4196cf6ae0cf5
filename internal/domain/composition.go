package domain

// CompositionMode selects how dataset rows become embeddable text units.
type CompositionMode string

const (
	// CompositionMode_SINGLE_COLUMN composes one unit per row from one column.
	CompositionMode_SINGLE_COLUMN CompositionMode = "SINGLE_COLUMN"
	// CompositionMode_MULTI_COLUMN composes one unit per row from joined columns.
	CompositionMode_MULTI_COLUMN CompositionMode = "MULTI_COLUMN"
	// CompositionMode_CONVERSATIONAL composes units from rows grouped into conversations.
	CompositionMode_CONVERSATIONAL CompositionMode = "CONVERSATIONAL"
)

// ConversationStrategy selects how conversational rows map to units.
type ConversationStrategy string

const (
	// ConversationStrategy_TURN_ONLY emits one unit per row holding only that turn.
	ConversationStrategy_TURN_ONLY ConversationStrategy = "TURN_ONLY"
	// ConversationStrategy_HISTORY_UNTIL emits one unit per row holding every turn up to and including it.
	ConversationStrategy_HISTORY_UNTIL ConversationStrategy = "HISTORY_UNTIL"
	// ConversationStrategy_TURN_PLUS_N emits one unit per row holding the turn plus the previous N turns.
	ConversationStrategy_TURN_PLUS_N ConversationStrategy = "TURN_PLUS_N"
	// ConversationStrategy_FULL_CONVERSATION emits one unit per conversation holding every turn.
	ConversationStrategy_FULL_CONVERSATION ConversationStrategy = "FULL_CONVERSATION"
)

// DefaultTurnSeparator joins turns inside history-style units.
const DefaultTurnSeparator = "\n\n"

// CompositionConfig configures the text composer for one layer.
type CompositionConfig struct {
	Mode CompositionMode `json:"mode"`

	// Single-column mode.
	Column string `json:"column,omitempty"`

	// Multi-column mode.
	Columns   []string `json:"columns,omitempty"`
	Separator string   `json:"separator,omitempty"`

	// Conversational mode.
	ConversationIDColumn string               `json:"conversation_id_column,omitempty"`
	SequenceColumn       string               `json:"sequence_column,omitempty"`
	Strategy             ConversationStrategy `json:"strategy,omitempty"`
	WindowSize           int                  `json:"window_size,omitempty"`
	TurnColumns          []string             `json:"turn_columns,omitempty"`
	TurnSeparator        string               `json:"turn_separator,omitempty"`
}

// Validate checks that the configuration is complete for its mode.
func (c CompositionConfig) Validate() error {
	switch c.Mode {
	case CompositionMode_SINGLE_COLUMN:
		if c.Column == "" {
			return NewValidationErr("single-column composition requires a column")
		}
	case CompositionMode_MULTI_COLUMN:
		if len(c.Columns) == 0 {
			return NewValidationErr("multi-column composition requires at least one column")
		}
	case CompositionMode_CONVERSATIONAL:
		if c.ConversationIDColumn == "" {
			return NewValidationErr("conversational composition requires a conversation_id_column")
		}
		if c.SequenceColumn == "" {
			return NewValidationErr("conversational composition requires a sequence_column")
		}
		if len(c.TurnColumns) == 0 {
			return NewValidationErr("conversational composition requires at least one turn column")
		}
		switch c.Strategy {
		case ConversationStrategy_TURN_ONLY,
			ConversationStrategy_HISTORY_UNTIL,
			ConversationStrategy_FULL_CONVERSATION:
		case ConversationStrategy_TURN_PLUS_N:
			if c.WindowSize < 1 {
				return NewValidationErr("turn-plus-n composition requires window_size >= 1")
			}
		default:
			return NewValidationErr("unknown conversation strategy: " + string(c.Strategy))
		}
	default:
		return NewValidationErr("unknown composition mode: " + string(c.Mode))
	}
	return nil
}

// CompositionUnit is one text string about to be embedded, with the
// source rows it was derived from and an optional group label.
type CompositionUnit struct {
	Text       string
	RowIndices []int
	Label      string
}
