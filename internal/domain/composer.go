package domain

import (
	"sort"
	"strings"
)

// ComposeUnits converts dataset rows into embeddable composition units
// following the given configuration. Rows are only read, never mutated.
func ComposeUnits(rows []Row, cfg CompositionConfig) ([]CompositionUnit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Mode {
	case CompositionMode_SINGLE_COLUMN:
		return composeSingleColumn(rows, cfg), nil
	case CompositionMode_MULTI_COLUMN:
		return composeMultiColumn(rows, cfg), nil
	default:
		return composeConversational(rows, cfg), nil
	}
}

func composeSingleColumn(rows []Row, cfg CompositionConfig) []CompositionUnit {
	units := make([]CompositionUnit, 0, len(rows))
	for i, row := range rows {
		units = append(units, CompositionUnit{
			Text:       row.Get(cfg.Column).String(),
			RowIndices: []int{i},
		})
	}
	return units
}

func composeMultiColumn(rows []Row, cfg CompositionConfig) []CompositionUnit {
	units := make([]CompositionUnit, 0, len(rows))
	for i, row := range rows {
		parts := make([]string, 0, len(cfg.Columns))
		for _, column := range cfg.Columns {
			parts = append(parts, row.Get(column).String())
		}
		units = append(units, CompositionUnit{
			Text:       strings.Join(parts, cfg.Separator),
			RowIndices: []int{i},
		})
	}
	return units
}

// conversationTurn is one ordered row inside a conversation group.
type conversationTurn struct {
	rowIndex int
	sequence Value
	text     string
}

func composeConversational(rows []Row, cfg CompositionConfig) []CompositionUnit {
	separator := cfg.TurnSeparator
	if separator == "" {
		separator = DefaultTurnSeparator
	}

	groups, order := groupConversations(rows, cfg)

	var units []CompositionUnit
	for _, convID := range order {
		turns := groups[convID]
		sortTurns(turns)

		switch cfg.Strategy {
		case ConversationStrategy_TURN_ONLY:
			for _, turn := range turns {
				units = append(units, CompositionUnit{
					Text:       turn.text,
					RowIndices: []int{turn.rowIndex},
					Label:      convID,
				})
			}
		case ConversationStrategy_HISTORY_UNTIL:
			for i := range turns {
				units = append(units, windowUnit(turns, 0, i, separator, convID))
			}
		case ConversationStrategy_TURN_PLUS_N:
			for i := range turns {
				start := i - cfg.WindowSize
				if start < 0 {
					start = 0
				}
				units = append(units, windowUnit(turns, start, i, separator, convID))
			}
		case ConversationStrategy_FULL_CONVERSATION:
			units = append(units, windowUnit(turns, 0, len(turns)-1, separator, convID))
		}
	}
	return units
}

// groupConversations buckets rows by conversation id, preserving the order in
// which each conversation first appears. Rows without a conversation id are
// skipped entirely; that is a composition rule, not an error.
func groupConversations(rows []Row, cfg CompositionConfig) (map[string][]*conversationTurn, []string) {
	groups := map[string][]*conversationTurn{}
	var order []string
	for i, row := range rows {
		idValue := row.Get(cfg.ConversationIDColumn)
		if idValue.IsNull() {
			continue
		}
		convID := idValue.String()
		if convID == "" {
			continue
		}
		if _, seen := groups[convID]; !seen {
			order = append(order, convID)
		}
		groups[convID] = append(groups[convID], &conversationTurn{
			rowIndex: i,
			sequence: row.Get(cfg.SequenceColumn),
			text:     formatTurn(row, cfg.TurnColumns),
		})
	}
	return groups, order
}

// sortTurns orders turns by their sequence value: numeric comparison when both
// values parse as numbers, lexicographic string comparison otherwise.
func sortTurns(turns []*conversationTurn) {
	sort.SliceStable(turns, func(i, j int) bool {
		a, aOK := turns[i].sequence.AsNumber()
		b, bOK := turns[j].sequence.AsNumber()
		if aOK && bOK {
			return a < b
		}
		return turns[i].sequence.String() < turns[j].sequence.String()
	})
}

// formatTurn renders the configured columns as "column: value" lines.
func formatTurn(row Row, columns []string) string {
	lines := make([]string, 0, len(columns))
	for _, column := range columns {
		lines = append(lines, column+": "+row.Get(column).String())
	}
	return strings.Join(lines, "\n")
}

// windowUnit joins turns[start..end] (inclusive, newest last) into one unit.
func windowUnit(turns []*conversationTurn, start, end int, separator, convID string) CompositionUnit {
	texts := make([]string, 0, end-start+1)
	indices := make([]int, 0, end-start+1)
	for _, turn := range turns[start : end+1] {
		texts = append(texts, turn.text)
		indices = append(indices, turn.rowIndex)
	}
	return CompositionUnit{
		Text:       strings.Join(texts, separator),
		RowIndices: indices,
		Label:      convID,
	}
}
