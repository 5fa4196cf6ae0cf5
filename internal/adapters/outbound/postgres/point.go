package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/common"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont/depend"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel/trace"
)

var (
	pointFields = []string{
		"id",
		"layer_id",
		"ord",
		"text",
		"label",
		"metadata",
		"embedding",
		"x",
		"y",
		"cluster_id",
		"neighbors",
		"row_indices",
	}
)

// pointInsertChunkSize bounds per-statement size for point inserts.
const pointInsertChunkSize = 1000

// PointRepository implements domain.PointRepository using PostgreSQL with
// the pgvector extension for similarity queries.
type PointRepository struct {
	sb squirrel.StatementBuilderType
}

// NewPointRepository creates a new instance of PointRepository.
func NewPointRepository(br squirrel.BaseRunner) PointRepository {
	return PointRepository{
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(br),
	}
}

// InsertPoints bulk-inserts points in fixed-size chunks.
func (pr PointRepository) InsertPoints(ctx context.Context, points []domain.Point) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	for start := 0; start < len(points); start += pointInsertChunkSize {
		end := start + pointInsertChunkSize
		if end > len(points) {
			end = len(points)
		}

		insert := pr.sb.
			Insert("points").
			Columns(pointFields...)
		for _, point := range points[start:end] {
			metadataJSON, err := json.Marshal(point.Metadata)
			if telemetry.RecordErrorAndStatus(span, err) {
				return fmt.Errorf("failed to marshal point metadata: %w", err)
			}
			neighborsJSON, err := json.Marshal(point.Neighbors)
			if telemetry.RecordErrorAndStatus(span, err) {
				return fmt.Errorf("failed to marshal point neighbors: %w", err)
			}
			rowIndicesJSON, err := json.Marshal(point.RowIndices)
			if telemetry.RecordErrorAndStatus(span, err) {
				return fmt.Errorf("failed to marshal point row indices: %w", err)
			}
			insert = insert.Values(
				point.ID,
				point.LayerID,
				point.Ord,
				point.Text,
				point.Label,
				metadataJSON,
				pgvector.NewVector(common.ToFloat32(point.Embedding)),
				point.X,
				point.Y,
				point.ClusterID,
				neighborsJSON,
				rowIndicesJSON,
			)
		}

		if _, err := insert.ExecContext(spanCtx); telemetry.RecordErrorAndStatus(span, err) {
			return err
		}
	}
	return nil
}

// DeletePointsByLayer removes every point of a layer.
func (pr PointRepository) DeletePointsByLayer(ctx context.Context, layerID uuid.UUID) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	_, err := pr.sb.
		Delete("points").
		Where(squirrel.Eq{"layer_id": layerID}).
		ExecContext(spanCtx)

	if telemetry.RecordErrorAndStatus(span, err) {
		return err
	}
	return nil
}

// ListPoints returns the full point set of a layer in insertion order.
func (pr PointRepository) ListPoints(ctx context.Context, layerID uuid.UUID) ([]domain.Point, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	rows, err := pr.sb.
		Select(pointFields...).
		From("points").
		Where(squirrel.Eq{"layer_id": layerID}).
		OrderBy("ord ASC").
		QueryContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var points []domain.Point
	for rows.Next() {
		point, err := scanPoint(rows.Scan)
		if telemetry.RecordErrorAndStatus(span, err) {
			return nil, err
		}
		points = append(points, point)
	}

	if err := rows.Err(); telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	return points, nil
}

// GetPoint retrieves one point by id.
func (pr PointRepository) GetPoint(ctx context.Context, id uuid.UUID) (domain.Point, bool, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	point, err := scanPoint(pr.sb.
		Select(pointFields...).
		From("points").
		Where(squirrel.Eq{"id": id}).
		QueryRowContext(spanCtx).
		Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Point{}, false, nil
		}
		telemetry.RecordErrorAndStatus(span, err)
		return domain.Point{}, false, err
	}
	return point, true, nil
}

// UpdateClusterIDs replaces cluster labels, indexed by point insertion order.
func (pr PointRepository) UpdateClusterIDs(ctx context.Context, layerID uuid.UUID, labels []int) error {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	for ord, clusterID := range labels {
		_, err := pr.sb.
			Update("points").
			Set("cluster_id", clusterID).
			Where(squirrel.Eq{"layer_id": layerID, "ord": ord}).
			ExecContext(spanCtx)
		if telemetry.RecordErrorAndStatus(span, err) {
			return err
		}
	}
	return nil
}

// SearchText runs a case-insensitive substring match over the point text,
// group label and any designated metadata columns.
func (pr PointRepository) SearchText(ctx context.Context, layerID uuid.UUID, query string, opts ...domain.SearchOption) ([]domain.SearchHit, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	params := searchParams(opts)
	pattern := "%" + query + "%"

	match := squirrel.Or{
		squirrel.ILike{"text": pattern},
		squirrel.ILike{"label": pattern},
	}
	for _, column := range params.MetadataColumns {
		match = append(match, squirrel.Expr("metadata->>? ILIKE ?", column, pattern))
	}

	qry := pr.sb.
		Select("id").
		From("points").
		Where(squirrel.Eq{"layer_id": layerID}).
		Where(match).
		OrderBy("ord ASC")
	qry = applyScope(qry, params)

	rows, err := qry.QueryContext(spanCtx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var hits []domain.SearchHit
	for rows.Next() {
		var hit domain.SearchHit
		if err := rows.Scan(&hit.PointID); telemetry.RecordErrorAndStatus(span, err) {
			return nil, err
		}
		hits = append(hits, hit)
	}

	if err := rows.Err(); telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	return hits, nil
}

// SearchVector returns points whose cosine similarity to the query vector
// exceeds minSimilarity, nearest first.
func (pr PointRepository) SearchVector(ctx context.Context, layerID uuid.UUID, embedding []float64, minSimilarity float64, opts ...domain.SearchOption) ([]domain.SearchHit, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	params := searchParams(opts)
	queryVector := pgvector.NewVector(common.ToFloat32(embedding))

	qry := pr.sb.
		Select("id").
		Column("(embedding <=> ?)", queryVector).
		From("points").
		Where(squirrel.Eq{"layer_id": layerID}).
		Where(squirrel.Expr("(1 - (embedding <=> ?)) > ?", queryVector, minSimilarity)).
		OrderByClause("embedding <=> ? ASC", queryVector)
	qry = applyScope(qry, params)

	return pr.queryHits(spanCtx, span, qry)
}

// NeighborsOfPoint returns the stored points most similar to the given point,
// excluding the point itself.
func (pr PointRepository) NeighborsOfPoint(ctx context.Context, layerID, pointID uuid.UUID, opts ...domain.SearchOption) ([]domain.SearchHit, error) {
	spanCtx, span := telemetry.Start(ctx)
	defer span.End()

	params := searchParams(opts)
	anchor := "(SELECT embedding FROM points WHERE id = ?)"

	qry := pr.sb.
		Select("id").
		Column("(embedding <=> "+anchor+")", pointID).
		From("points").
		Where(squirrel.Eq{"layer_id": layerID}).
		Where(squirrel.NotEq{"id": pointID}).
		Where(squirrel.Expr("(embedding <=> "+anchor+") < 1", pointID)).
		OrderByClause("embedding <=> "+anchor+" ASC", pointID)
	qry = applyScope(qry, params)

	return pr.queryHits(spanCtx, span, qry)
}

func (pr PointRepository) queryHits(ctx context.Context, span trace.Span, qry squirrel.SelectBuilder) ([]domain.SearchHit, error) {
	rows, err := qry.QueryContext(ctx)
	if telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var hits []domain.SearchHit
	for rows.Next() {
		var hit domain.SearchHit
		var distance float64
		if err := rows.Scan(&hit.PointID, &distance); telemetry.RecordErrorAndStatus(span, err) {
			return nil, err
		}
		hit.Distance = &distance
		hits = append(hits, hit)
	}

	if err := rows.Err(); telemetry.RecordErrorAndStatus(span, err) {
		return nil, err
	}
	return hits, nil
}

func searchParams(opts []domain.SearchOption) domain.SearchParams {
	params := domain.SearchParams{Limit: 20}
	for _, opt := range opts {
		opt(&params)
	}
	return params
}

func applyScope(qry squirrel.SelectBuilder, params domain.SearchParams) squirrel.SelectBuilder {
	if params.Label != nil {
		qry = qry.Where(squirrel.Eq{"label": *params.Label})
	}
	if params.ClusterID != nil {
		qry = qry.Where(squirrel.Eq{"cluster_id": *params.ClusterID})
	}
	if params.Limit > 0 {
		qry = qry.Limit(uint64(params.Limit))
	}
	return qry
}

func scanPoint(scan func(dest ...any) error) (domain.Point, error) {
	var point domain.Point
	var metadataJSON, neighborsJSON, rowIndicesJSON []byte
	var embedding pgvector.Vector
	err := scan(
		&point.ID,
		&point.LayerID,
		&point.Ord,
		&point.Text,
		&point.Label,
		&metadataJSON,
		&embedding,
		&point.X,
		&point.Y,
		&point.ClusterID,
		&neighborsJSON,
		&rowIndicesJSON,
	)
	if err != nil {
		return domain.Point{}, err
	}

	point.Embedding = common.ToFloat64(embedding.Slice())
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &point.Metadata); err != nil {
			return domain.Point{}, fmt.Errorf("failed to unmarshal point metadata: %w", err)
		}
	}
	if len(neighborsJSON) > 0 {
		if err := json.Unmarshal(neighborsJSON, &point.Neighbors); err != nil {
			return domain.Point{}, fmt.Errorf("failed to unmarshal point neighbors: %w", err)
		}
	}
	if err := json.Unmarshal(rowIndicesJSON, &point.RowIndices); err != nil {
		return domain.Point{}, fmt.Errorf("failed to unmarshal point row indices: %w", err)
	}
	return point, nil
}

// InitPointRepository is a Symbiont initializer for PointRepository.
type InitPointRepository struct {
	DB *sql.DB `resolve:""`
}

// Initialize registers the PointRepository in the dependency container.
func (i InitPointRepository) Initialize(ctx context.Context) (context.Context, error) {
	depend.Register[domain.PointRepository](NewPointRepository(i.DB))
	return ctx, nil
}
