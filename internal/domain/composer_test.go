package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func turnRow(convID string, seq float64, speaker, message string) Row {
	return Row{
		"conversation_id": StringValue(convID),
		"turn":            NumberValue(seq),
		"speaker":         StringValue(speaker),
		"message":         StringValue(message),
	}
}

func conversationalConfig(strategy ConversationStrategy, windowSize int) CompositionConfig {
	return CompositionConfig{
		Mode:                 CompositionMode_CONVERSATIONAL,
		ConversationIDColumn: "conversation_id",
		SequenceColumn:       "turn",
		Strategy:             strategy,
		WindowSize:           windowSize,
		TurnColumns:          []string{"speaker", "message"},
	}
}

func TestComposeUnits_SingleColumn(t *testing.T) {
	rows := []Row{
		{"message": StringValue("hello"), "other": StringValue("ignored")},
		{"message": NumberValue(42)},
		{"other": StringValue("no message column")},
	}

	units, err := ComposeUnits(rows, CompositionConfig{
		Mode:   CompositionMode_SINGLE_COLUMN,
		Column: "message",
	})

	assert.NoError(t, err)
	assert.Len(t, units, 3)
	assert.Equal(t, "hello", units[0].Text)
	assert.Equal(t, []int{0}, units[0].RowIndices)
	assert.Equal(t, "42", units[1].Text)
	assert.Equal(t, "", units[2].Text, "missing column renders as empty text")
}

func TestComposeUnits_MultiColumn(t *testing.T) {
	rows := []Row{
		{"subject": StringValue("refund"), "body": StringValue("please refund me")},
	}

	units, err := ComposeUnits(rows, CompositionConfig{
		Mode:      CompositionMode_MULTI_COLUMN,
		Columns:   []string{"subject", "body"},
		Separator: " | ",
	})

	assert.NoError(t, err)
	assert.Len(t, units, 1)
	assert.Equal(t, "refund | please refund me", units[0].Text)
	assert.Equal(t, []int{0}, units[0].RowIndices)
}

func TestComposeUnits_Conversational(t *testing.T) {
	// conv-a turns arrive out of order; conv-b interleaves; one row has no
	// conversation id and must be skipped.
	rows := []Row{
		turnRow("conv-a", 2, "agent", "sure, done"),      // 0
		turnRow("conv-b", 1, "customer", "app crashes"),  // 1
		turnRow("conv-a", 1, "customer", "reset please"), // 2
		{"speaker": StringValue("ghost"), "message": StringValue("orphan row")}, // 3
		turnRow("conv-b", 2, "agent", "fix is coming"), // 4
	}

	tests := map[string]struct {
		strategy   ConversationStrategy
		windowSize int
		wantUnits  int
		check      func(t *testing.T, units []CompositionUnit)
	}{
		"turn-only-emits-one-unit-per-turn": {
			strategy:  ConversationStrategy_TURN_ONLY,
			wantUnits: 4,
			check: func(t *testing.T, units []CompositionUnit) {
				// conv-a first (first appearance), sorted by sequence.
				assert.Equal(t, "speaker: customer\nmessage: reset please", units[0].Text)
				assert.Equal(t, []int{2}, units[0].RowIndices)
				assert.Equal(t, "conv-a", units[0].Label)
				assert.Equal(t, "speaker: agent\nmessage: sure, done", units[1].Text)
				assert.Equal(t, "conv-b", units[2].Label)
			},
		},
		"history-until-accumulates-turns": {
			strategy:  ConversationStrategy_HISTORY_UNTIL,
			wantUnits: 4,
			check: func(t *testing.T, units []CompositionUnit) {
				assert.Equal(t, []int{2}, units[0].RowIndices)
				assert.Equal(t, []int{2, 0}, units[1].RowIndices)
				assert.Contains(t, units[1].Text, "reset please")
				assert.Contains(t, units[1].Text, "sure, done")
			},
		},
		"turn-plus-n-windows-previous-turns": {
			strategy:   ConversationStrategy_TURN_PLUS_N,
			windowSize: 1,
			wantUnits:  4,
			check: func(t *testing.T, units []CompositionUnit) {
				// The second unit of conv-a holds turns 1 and 2.
				assert.Equal(t, []int{2, 0}, units[1].RowIndices)
			},
		},
		"full-conversation-emits-one-unit-per-conversation": {
			strategy:  ConversationStrategy_FULL_CONVERSATION,
			wantUnits: 2,
			check: func(t *testing.T, units []CompositionUnit) {
				assert.Equal(t, "conv-a", units[0].Label)
				assert.Equal(t, []int{2, 0}, units[0].RowIndices)
				assert.Equal(t, "conv-b", units[1].Label)
				assert.Equal(t, []int{1, 4}, units[1].RowIndices)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			units, err := ComposeUnits(rows, conversationalConfig(tt.strategy, tt.windowSize))

			assert.NoError(t, err)
			assert.Len(t, units, tt.wantUnits)
			tt.check(t, units)
		})
	}
}

func TestComposeUnits_ConversationalStringSequenceOrdering(t *testing.T) {
	rows := []Row{
		{
			"conversation_id": StringValue("conv-a"),
			"turn":            StringValue("b"),
			"message":         StringValue("second"),
		},
		{
			"conversation_id": StringValue("conv-a"),
			"turn":            StringValue("a"),
			"message":         StringValue("first"),
		},
	}

	cfg := CompositionConfig{
		Mode:                 CompositionMode_CONVERSATIONAL,
		ConversationIDColumn: "conversation_id",
		SequenceColumn:       "turn",
		Strategy:             ConversationStrategy_TURN_ONLY,
		TurnColumns:          []string{"message"},
	}

	units, err := ComposeUnits(rows, cfg)

	assert.NoError(t, err)
	assert.Len(t, units, 2)
	assert.Equal(t, "message: first", units[0].Text, "non-numeric sequences sort lexicographically")
}

func TestCompositionConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		cfg     CompositionConfig
		wantErr string
	}{
		"valid-single-column": {
			cfg: CompositionConfig{Mode: CompositionMode_SINGLE_COLUMN, Column: "message"},
		},
		"single-column-missing-column": {
			cfg:     CompositionConfig{Mode: CompositionMode_SINGLE_COLUMN},
			wantErr: "single-column composition requires a column",
		},
		"multi-column-missing-columns": {
			cfg:     CompositionConfig{Mode: CompositionMode_MULTI_COLUMN},
			wantErr: "multi-column composition requires at least one column",
		},
		"conversational-missing-sequence-column": {
			cfg: CompositionConfig{
				Mode:                 CompositionMode_CONVERSATIONAL,
				ConversationIDColumn: "conversation_id",
				TurnColumns:          []string{"message"},
				Strategy:             ConversationStrategy_TURN_ONLY,
			},
			wantErr: "conversational composition requires a sequence_column",
		},
		"turn-plus-n-requires-window-size": {
			cfg: CompositionConfig{
				Mode:                 CompositionMode_CONVERSATIONAL,
				ConversationIDColumn: "conversation_id",
				SequenceColumn:       "turn",
				TurnColumns:          []string{"message"},
				Strategy:             ConversationStrategy_TURN_PLUS_N,
			},
			wantErr: "turn-plus-n composition requires window_size >= 1",
		},
		"unknown-strategy-rejected": {
			cfg: CompositionConfig{
				Mode:                 CompositionMode_CONVERSATIONAL,
				ConversationIDColumn: "conversation_id",
				SequenceColumn:       "turn",
				TurnColumns:          []string{"message"},
				Strategy:             ConversationStrategy("SIDEWAYS"),
			},
			wantErr: "unknown conversation strategy: SIDEWAYS",
		},
		"unknown-mode-rejected": {
			cfg:     CompositionConfig{Mode: CompositionMode("SPIRAL")},
			wantErr: "unknown composition mode: SPIRAL",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.IsType(t, &ValidationErr{}, err)
		})
	}
}
