package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
)

var (
	layerFields = []string{
		"id",
		"dataset_id",
		"name",
		"provider",
		"model",
		"dimension",
		"composition",
		"clustering",
		"stats",
		"is_active",
		"created_at",
		"last_accessed_at",
	}
)

// LayerRepository implements domain.LayerRepository using PostgreSQL.
type LayerRepository struct {
	sb squirrel.StatementBuilderType
}

// NewLayerRepository creates a new instance of LayerRepository.
func NewLayerRepository(br squirrel.BaseRunner) LayerRepository {
	return LayerRepository{
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(br),
	}
}

// UpsertLayer inserts or replaces layer metadata.
func (lr LayerRepository) UpsertLayer(ctx context.Context, layer domain.Layer) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	compositionJSON, err := json.Marshal(layer.Composition)
	if telemetry.RecordErrorAndStatus(span, err) {
		return fmt.Errorf("failed to marshal layer composition: %w", err)
	}
	clusteringJSON, err := json.Marshal(layer.Clustering)
	if telemetry.RecordErrorAndStatus(span, err) {
		return fmt.Errorf("failed to marshal layer clustering: %w", err)
	}
	statsJSON, err := json.Marshal(layer.Stats)
	if telemetry.RecordErrorAndStatus(span, err) {
		return fmt.Errorf("failed to marshal layer stats: %w", err)
	}

	_, err = lr.sb.
		Insert("layers").
		Columns(layerFields...).
		Values(
			layer.ID,
			layer.DatasetID,
			layer.Name,
			layer.Provider,
			layer.Model,
			layer.Dimension,
			compositionJSON,
			clusteringJSON,
			statsJSON,
			layer.Active,
			layer.CreatedAt,
			layer.LastAccessedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			provider = EXCLUDED.provider,
			model = EXCLUDED.model,
			dimension = EXCLUDED.dimension,
			composition = EXCLUDED.composition,
			clustering = EXCLUDED.clustering,
			stats = EXCLUDED.stats,
			is_active = EXCLUDED.is_active,
			last_accessed_at = EXCLUDED.last_accessed_at`).
		ExecContext(spanCtx)

	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

// GetLayer retrieves layer metadata by id.
func (lr LayerRepository) GetLayer(ctx context.Context, id uuid.UUID) (domain.Layer, bool, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	return lr.getOne(spanCtx, squirrel.Eq{"id": id})
}

// GetActiveLayer retrieves the single active layer of a dataset.
func (lr LayerRepository) GetActiveLayer(ctx context.Context, datasetID uuid.UUID) (domain.Layer, bool, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	return lr.getOne(spanCtx, squirrel.Eq{"dataset_id": datasetID, "is_active": true})
}

func (lr LayerRepository) getOne(ctx context.Context, pred squirrel.Eq) (domain.Layer, bool, error) {
	var layer domain.Layer
	var compositionJSON, clusteringJSON, statsJSON []byte
	err := lr.sb.
		Select(layerFields...).
		From("layers").
		Where(pred).
		QueryRowContext(ctx).
		Scan(
			&layer.ID,
			&layer.DatasetID,
			&layer.Name,
			&layer.Provider,
			&layer.Model,
			&layer.Dimension,
			&compositionJSON,
			&clusteringJSON,
			&statsJSON,
			&layer.Active,
			&layer.CreatedAt,
			&layer.LastAccessedAt,
		)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Layer{}, false, nil
		}
		return domain.Layer{}, false, err
	}

	if err := json.Unmarshal(compositionJSON, &layer.Composition); err != nil {
		return domain.Layer{}, false, fmt.Errorf("failed to unmarshal layer composition: %w", err)
	}
	if err := json.Unmarshal(clusteringJSON, &layer.Clustering); err != nil {
		return domain.Layer{}, false, fmt.Errorf("failed to unmarshal layer clustering: %w", err)
	}
	if err := json.Unmarshal(statsJSON, &layer.Stats); err != nil {
		return domain.Layer{}, false, fmt.Errorf("failed to unmarshal layer stats: %w", err)
	}
	return layer, true, nil
}

// ListLayers lists layer summaries for a dataset, newest first.
func (lr LayerRepository) ListLayers(ctx context.Context, datasetID uuid.UUID) ([]domain.LayerSummary, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	rows, err := lr.sb.
		Select(
			"l.id",
			"l.name",
			"l.is_active",
			"l.composition->>'mode'",
			"l.created_at",
			"COUNT(p.id)",
		).
		From("layers l").
		LeftJoin("points p ON p.layer_id = l.id").
		Where(squirrel.Eq{"l.dataset_id": datasetID}).
		GroupBy("l.id", "l.name", "l.is_active", "l.composition", "l.created_at").
		OrderBy("l.created_at DESC").
		QueryContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var summaries []domain.LayerSummary
	for rows.Next() {
		var summary domain.LayerSummary
		var mode string
		err := rows.Scan(
			&summary.ID,
			&summary.Name,
			&summary.Active,
			&mode,
			&summary.CreatedAt,
			&summary.PointCount,
		)
		if telemetry.RecordErrorAndStatus(span, err) {
			return nil, err
		}
		summary.Mode = domain.CompositionMode(mode)
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	return summaries, nil
}

// SetActiveLayer marks one layer active and all dataset siblings inactive in a
// single statement, so concurrent activations serialize to last-write-wins.
func (lr LayerRepository) SetActiveLayer(ctx context.Context, datasetID, layerID uuid.UUID) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	_, err := lr.sb.
		Update("layers").
		Set("is_active", squirrel.Expr("(id = ?)", layerID)).
		Where(squirrel.Eq{"dataset_id": datasetID}).
		ExecContext(spanCtx)

	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

// UpdateClustering replaces the clustering configuration and statistics of a layer.
func (lr LayerRepository) UpdateClustering(ctx context.Context, layerID uuid.UUID, cfg domain.ClusteringConfig, stats domain.ClusterStats) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	clusteringJSON, err := json.Marshal(cfg)
	if telemetry.RecordErrorAndStatus(span, err) {
		return fmt.Errorf("failed to marshal layer clustering: %w", err)
	}
	statsJSON, err := json.Marshal(stats)
	if telemetry.RecordErrorAndStatus(span, err) {
		return fmt.Errorf("failed to marshal layer stats: %w", err)
	}

	result, err := lr.sb.
		Update("layers").
		Set("clustering", clusteringJSON).
		Set("stats", statsJSON).
		Where(squirrel.Eq{"id": layerID}).
		ExecContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}

	affected, err := result.RowsAffected()
	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	if affected == 0 {
		return domain.NewNotFoundErr(fmt.Sprintf("layer %s not found", layerID))
	}
	return nil
}

// TouchLastAccessed updates the last-accessed timestamp of a layer.
func (lr LayerRepository) TouchLastAccessed(ctx context.Context, layerID uuid.UUID, at time.Time) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	_, err := lr.sb.
		Update("layers").
		Set("last_accessed_at", at).
		Where(squirrel.Eq{"id": layerID}).
		ExecContext(spanCtx)

	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

// DeleteLayer removes layer metadata; its points follow via cascade.
func (lr LayerRepository) DeleteLayer(ctx context.Context, id uuid.UUID) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	_, err := lr.sb.
		Delete("layers").
		Where(squirrel.Eq{"id": id}).
		ExecContext(spanCtx)

	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

// InitLayerRepository is a Symbiont initializer for LayerRepository.
type InitLayerRepository struct {
	DB *sql.DB `resolve:""`
}

// Initialize registers the LayerRepository in the dependency container.
func (i InitLayerRepository) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[domain.LayerRepository](NewLayerRepository(i.DB))
	return ctx, nil
}
