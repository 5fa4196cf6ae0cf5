package postgres

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPointRepository_DeletePointsByLayer(t *testing.T) {
	layerID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(t, err)
	defer db.Close() // nolint:errcheck

	mock.ExpectExec("DELETE FROM points WHERE layer_id = $1").
		WithArgs(layerID).
		WillReturnResult(sqlmock.NewResult(0, 5))

	repo := NewPointRepository(db)
	assert.NoError(t, repo.DeletePointsByLayer(context.Background(), layerID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointRepository_UpdateClusterIDs(t *testing.T) {
	layerID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(t, err)
	defer db.Close() // nolint:errcheck

	mock.ExpectExec("UPDATE points SET cluster_id = $1 WHERE layer_id = $2 AND ord = $3").
		WithArgs(0, layerID, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE points SET cluster_id = $1 WHERE layer_id = $2 AND ord = $3").
		WithArgs(-1, layerID, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPointRepository(db)
	assert.NoError(t, repo.UpdateClusterIDs(context.Background(), layerID, []int{0, -1}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointRepository_SearchText(t *testing.T) {
	layerID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	hitID := uuid.MustParse("223e4567-e89b-12d3-a456-426614174000")

	tests := map[string]struct {
		opts     []domain.SearchOption
		expected string
		args     []driver.Value
	}{
		"default-scope": {
			opts:     nil,
			expected: "SELECT id FROM points WHERE layer_id = $1 AND (text ILIKE $2 OR label ILIKE $3) ORDER BY ord ASC LIMIT 20",
			args:     []driver.Value{layerID, "%refund%", "%refund%"},
		},
		"label-and-limit": {
			opts: []domain.SearchOption{
				domain.WithLabelFilter("conv-42"),
				domain.WithLimit(5),
			},
			expected: "SELECT id FROM points WHERE layer_id = $1 AND (text ILIKE $2 OR label ILIKE $3) AND label = $4 ORDER BY ord ASC LIMIT 5",
			args:     []driver.Value{layerID, "%refund%", "%refund%", "conv-42"},
		},
		"metadata-column": {
			opts: []domain.SearchOption{
				domain.WithMetadataColumns("topic"),
			},
			expected: "SELECT id FROM points WHERE layer_id = $1 AND (text ILIKE $2 OR label ILIKE $3 OR metadata->>$4 ILIKE $5) ORDER BY ord ASC LIMIT 20",
			args:     []driver.Value{layerID, "%refund%", "%refund%", "topic", "%refund%"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
			assert.NoError(t, err)
			defer db.Close() // nolint:errcheck

			mock.ExpectQuery(tt.expected).
				WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(hitID))

			repo := NewPointRepository(db)
			hits, gotErr := repo.SearchText(context.Background(), layerID, "refund", tt.opts...)

			assert.NoError(t, gotErr)
			assert.Len(t, hits, 1)
			assert.Equal(t, hitID, hits[0].PointID)
			assert.Nil(t, hits[0].Distance)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPointRepository_SearchVector(t *testing.T) {
	layerID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	hitID := uuid.MustParse("223e4567-e89b-12d3-a456-426614174000")

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(t, err)
	defer db.Close() // nolint:errcheck

	rows := sqlmock.NewRows([]string{"id", "distance"}).AddRow(hitID, 0.12)
	mock.ExpectQuery("SELECT id, (embedding <=> $1) FROM points WHERE layer_id = $2 AND (1 - (embedding <=> $3)) > $4 ORDER BY embedding <=> $5 ASC LIMIT 20").
		WithArgs(sqlmock.AnyArg(), layerID, sqlmock.AnyArg(), 0.3, sqlmock.AnyArg()).
		WillReturnRows(rows)

	repo := NewPointRepository(db)
	hits, gotErr := repo.SearchVector(context.Background(), layerID, []float64{0.1, 0.2, 0.3}, 0.3)

	assert.NoError(t, gotErr)
	assert.Len(t, hits, 1)
	assert.Equal(t, hitID, hits[0].PointID)
	if assert.NotNil(t, hits[0].Distance) {
		assert.InDelta(t, 0.12, *hits[0].Distance, 1e-9)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointRepository_NeighborsOfPoint(t *testing.T) {
	layerID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	pointID := uuid.MustParse("223e4567-e89b-12d3-a456-426614174000")
	hitID := uuid.MustParse("323e4567-e89b-12d3-a456-426614174000")

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(t, err)
	defer db.Close() // nolint:errcheck

	rows := sqlmock.NewRows([]string{"id", "distance"}).AddRow(hitID, 0.05)
	mock.ExpectQuery("SELECT id, (embedding <=> (SELECT embedding FROM points WHERE id = $1)) FROM points WHERE layer_id = $2 AND id <> $3 AND (embedding <=> (SELECT embedding FROM points WHERE id = $4)) < 1 ORDER BY embedding <=> (SELECT embedding FROM points WHERE id = $5) ASC LIMIT 20").
		WithArgs(pointID, layerID, pointID, pointID, pointID).
		WillReturnRows(rows)

	repo := NewPointRepository(db)
	hits, gotErr := repo.NeighborsOfPoint(context.Background(), layerID, pointID)

	assert.NoError(t, gotErr)
	assert.Len(t, hits, 1)
	assert.Equal(t, hitID, hits[0].PointID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
