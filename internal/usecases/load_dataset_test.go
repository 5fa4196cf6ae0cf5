package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLoadDatasetImpl_Execute(t *testing.T) {
	fixedTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		name        string
		csv         string
		expectedErr string
		verify      func(t *testing.T, dataset domain.Dataset, rows []domain.DatasetRow)
	}{
		"success-typed-cells": {
			name: "tickets",
			csv: "conversation_id,turn,message,resolved,created\n" +
				"conv-1,1,hello there,false,2026-01-15\n" +
				"conv-1,2,,true,2026-01-16\n",
			verify: func(t *testing.T, dataset domain.Dataset, rows []domain.DatasetRow) {
				assert.Equal(t, []string{"conversation_id", "turn", "message", "resolved", "created"}, dataset.Columns)
				assert.Equal(t, 2, dataset.RowCount)
				assert.Len(t, rows, 2)

				first := rows[0].Values
				assert.Equal(t, domain.StringValue("conv-1"), first["conversation_id"])
				assert.Equal(t, domain.NumberValue(1), first["turn"])
				assert.Equal(t, domain.StringValue("hello there"), first["message"])
				assert.Equal(t, domain.BoolValue(false), first["resolved"])
				assert.Equal(t, domain.StringValue("2026-01-15T00:00:00Z"), first["created"])

				assert.True(t, rows[1].Values["message"].IsNull())
				assert.Equal(t, 0, rows[0].Index)
				assert.Equal(t, 1, rows[1].Index)
			},
		},
		"empty-name-rejected": {
			name:        "",
			csv:         "a,b\n1,2\n",
			expectedErr: "dataset name cannot be empty",
		},
		"empty-stream-rejected": {
			name:        "tickets",
			csv:         "",
			expectedErr: "failed to read csv header: EOF",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			uow := newFakeUnitOfWork()
			var createdDataset domain.Dataset
			var insertedRows []domain.DatasetRow
			uow.dataset.createDataset = func(ctx context.Context, dataset domain.Dataset) error {
				createdDataset = dataset
				return nil
			}
			uow.dataset.insertRows = func(ctx context.Context, datasetID uuid.UUID, rows []domain.DatasetRow) error {
				assert.Equal(t, createdDataset.ID, datasetID)
				insertedRows = rows
				return nil
			}

			impl := NewLoadDatasetImpl(uow, fixedTimeProvider{now: fixedTime})
			dataset, err := impl.Execute(context.Background(), tc.name, strings.NewReader(tc.csv))

			if tc.expectedErr != "" {
				assert.EqualError(t, err, tc.expectedErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, fixedTime, dataset.CreatedAt)
			tc.verify(t, dataset, insertedRows)
		})
	}
}
