package usecases

import (
	"context"
	"time"

	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/domain"
	"github.com/google/uuid"
)

// Hand-written fakes for the domain interfaces. Function fields left nil
// panic, which keeps unexpected calls visible in tests.

type fakeUnitOfWork struct {
	dataset *fakeDatasetRepo
	layer   *fakeLayerRepo
	point   *fakePointRepo
	outbox  *fakeOutboxRepo
	execErr error
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		dataset: &fakeDatasetRepo{},
		layer:   &fakeLayerRepo{},
		point:   &fakePointRepo{},
		outbox:  &fakeOutboxRepo{},
	}
}

func (f *fakeUnitOfWork) Dataset() domain.DatasetRepository { return f.dataset }
func (f *fakeUnitOfWork) Layer() domain.LayerRepository     { return f.layer }
func (f *fakeUnitOfWork) Point() domain.PointRepository     { return f.point }
func (f *fakeUnitOfWork) Outbox() domain.OutboxRepository   { return f.outbox }

func (f *fakeUnitOfWork) Execute(ctx context.Context, fn func(uow domain.UnitOfWork) error) error {
	if f.execErr != nil {
		return f.execErr
	}
	return fn(f)
}

type fakeDatasetRepo struct {
	createDataset func(ctx context.Context, dataset domain.Dataset) error
	getDataset    func(ctx context.Context, id uuid.UUID) (domain.Dataset, bool, error)
	listDatasets  func(ctx context.Context) ([]domain.Dataset, error)
	insertRows    func(ctx context.Context, datasetID uuid.UUID, rows []domain.DatasetRow) error
	listRows      func(ctx context.Context, datasetID uuid.UUID) ([]domain.DatasetRow, error)
	deleteDataset func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeDatasetRepo) CreateDataset(ctx context.Context, dataset domain.Dataset) error {
	return f.createDataset(ctx, dataset)
}
func (f *fakeDatasetRepo) GetDataset(ctx context.Context, id uuid.UUID) (domain.Dataset, bool, error) {
	return f.getDataset(ctx, id)
}
func (f *fakeDatasetRepo) ListDatasets(ctx context.Context) ([]domain.Dataset, error) {
	return f.listDatasets(ctx)
}
func (f *fakeDatasetRepo) InsertRows(ctx context.Context, datasetID uuid.UUID, rows []domain.DatasetRow) error {
	return f.insertRows(ctx, datasetID, rows)
}
func (f *fakeDatasetRepo) ListRows(ctx context.Context, datasetID uuid.UUID) ([]domain.DatasetRow, error) {
	return f.listRows(ctx, datasetID)
}
func (f *fakeDatasetRepo) DeleteDataset(ctx context.Context, id uuid.UUID) error {
	return f.deleteDataset(ctx, id)
}

type fakeLayerRepo struct {
	upsertLayer       func(ctx context.Context, layer domain.Layer) error
	getLayer          func(ctx context.Context, id uuid.UUID) (domain.Layer, bool, error)
	getActiveLayer    func(ctx context.Context, datasetID uuid.UUID) (domain.Layer, bool, error)
	listLayers        func(ctx context.Context, datasetID uuid.UUID) ([]domain.LayerSummary, error)
	setActiveLayer    func(ctx context.Context, datasetID, layerID uuid.UUID) error
	updateClustering  func(ctx context.Context, layerID uuid.UUID, cfg domain.ClusteringConfig, stats domain.ClusterStats) error
	touchLastAccessed func(ctx context.Context, layerID uuid.UUID, at time.Time) error
	deleteLayer       func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeLayerRepo) UpsertLayer(ctx context.Context, layer domain.Layer) error {
	return f.upsertLayer(ctx, layer)
}
func (f *fakeLayerRepo) GetLayer(ctx context.Context, id uuid.UUID) (domain.Layer, bool, error) {
	return f.getLayer(ctx, id)
}
func (f *fakeLayerRepo) GetActiveLayer(ctx context.Context, datasetID uuid.UUID) (domain.Layer, bool, error) {
	return f.getActiveLayer(ctx, datasetID)
}
func (f *fakeLayerRepo) ListLayers(ctx context.Context, datasetID uuid.UUID) ([]domain.LayerSummary, error) {
	return f.listLayers(ctx, datasetID)
}
func (f *fakeLayerRepo) SetActiveLayer(ctx context.Context, datasetID, layerID uuid.UUID) error {
	return f.setActiveLayer(ctx, datasetID, layerID)
}
func (f *fakeLayerRepo) UpdateClustering(ctx context.Context, layerID uuid.UUID, cfg domain.ClusteringConfig, stats domain.ClusterStats) error {
	return f.updateClustering(ctx, layerID, cfg, stats)
}
func (f *fakeLayerRepo) TouchLastAccessed(ctx context.Context, layerID uuid.UUID, at time.Time) error {
	return f.touchLastAccessed(ctx, layerID, at)
}
func (f *fakeLayerRepo) DeleteLayer(ctx context.Context, id uuid.UUID) error {
	return f.deleteLayer(ctx, id)
}

type fakePointRepo struct {
	insertPoints        func(ctx context.Context, points []domain.Point) error
	deletePointsByLayer func(ctx context.Context, layerID uuid.UUID) error
	listPoints          func(ctx context.Context, layerID uuid.UUID) ([]domain.Point, error)
	getPoint            func(ctx context.Context, id uuid.UUID) (domain.Point, bool, error)
	updateClusterIDs    func(ctx context.Context, layerID uuid.UUID, labels []int) error
	searchText          func(ctx context.Context, layerID uuid.UUID, query string, opts ...domain.SearchOption) ([]domain.SearchHit, error)
	searchVector        func(ctx context.Context, layerID uuid.UUID, embedding []float64, minSimilarity float64, opts ...domain.SearchOption) ([]domain.SearchHit, error)
	neighborsOfPoint    func(ctx context.Context, layerID, pointID uuid.UUID, opts ...domain.SearchOption) ([]domain.SearchHit, error)
}

func (f *fakePointRepo) InsertPoints(ctx context.Context, points []domain.Point) error {
	return f.insertPoints(ctx, points)
}
func (f *fakePointRepo) DeletePointsByLayer(ctx context.Context, layerID uuid.UUID) error {
	return f.deletePointsByLayer(ctx, layerID)
}
func (f *fakePointRepo) ListPoints(ctx context.Context, layerID uuid.UUID) ([]domain.Point, error) {
	return f.listPoints(ctx, layerID)
}
func (f *fakePointRepo) GetPoint(ctx context.Context, id uuid.UUID) (domain.Point, bool, error) {
	return f.getPoint(ctx, id)
}
func (f *fakePointRepo) UpdateClusterIDs(ctx context.Context, layerID uuid.UUID, labels []int) error {
	return f.updateClusterIDs(ctx, layerID, labels)
}
func (f *fakePointRepo) SearchText(ctx context.Context, layerID uuid.UUID, query string, opts ...domain.SearchOption) ([]domain.SearchHit, error) {
	return f.searchText(ctx, layerID, query, opts...)
}
func (f *fakePointRepo) SearchVector(ctx context.Context, layerID uuid.UUID, embedding []float64, minSimilarity float64, opts ...domain.SearchOption) ([]domain.SearchHit, error) {
	return f.searchVector(ctx, layerID, embedding, minSimilarity, opts...)
}
func (f *fakePointRepo) NeighborsOfPoint(ctx context.Context, layerID, pointID uuid.UUID, opts ...domain.SearchOption) ([]domain.SearchHit, error) {
	return f.neighborsOfPoint(ctx, layerID, pointID, opts...)
}

type fakeOutboxRepo struct {
	recorded    []domain.LayerEvent
	recordErr   error
	fetchEvents func(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	updated     []domain.OutboxStatus
	deleted     []uuid.UUID
	updateErr   error
	deleteErr   error
}

func (f *fakeOutboxRepo) RecordEvent(ctx context.Context, event domain.LayerEvent) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, event)
	return nil
}
func (f *fakeOutboxRepo) FetchPendingEvents(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	return f.fetchEvents(ctx, limit)
}
func (f *fakeOutboxRepo) UpdateEvent(ctx context.Context, eventID uuid.UUID, status domain.OutboxStatus, retryCount int, lastError string) error {
	f.updated = append(f.updated, status)
	return f.updateErr
}
func (f *fakeOutboxRepo) DeleteEvent(ctx context.Context, eventID uuid.UUID) error {
	f.deleted = append(f.deleted, eventID)
	return f.deleteErr
}

type fakeEmbedder struct {
	embedTexts func(ctx context.Context, provider, model string, texts []string, observer domain.ProgressObserver) (domain.EmbeddingResult, error)
	embedQuery func(ctx context.Context, provider, model, query string) ([]float64, error)
	queryCalls int
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, provider, model string, texts []string, observer domain.ProgressObserver) (domain.EmbeddingResult, error) {
	return f.embedTexts(ctx, provider, model, texts, observer)
}
func (f *fakeEmbedder) EmbedQuery(ctx context.Context, provider, model, query string) ([]float64, error) {
	f.queryCalls++
	return f.embedQuery(ctx, provider, model, query)
}

type fakeCoordStore struct {
	saved   map[uuid.UUID][][]float64
	saveErr error
	loadErr error
	deleted []uuid.UUID
}

func newFakeCoordStore() *fakeCoordStore {
	return &fakeCoordStore{saved: map[uuid.UUID][][]float64{}}
}

func (f *fakeCoordStore) SaveCoordinates(ctx context.Context, layerID uuid.UUID, coords [][]float64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[layerID] = coords
	return nil
}
func (f *fakeCoordStore) LoadCoordinates(ctx context.Context, layerID uuid.UUID) ([][]float64, bool, error) {
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	coords, ok := f.saved[layerID]
	return coords, ok, nil
}
func (f *fakeCoordStore) DeleteCoordinates(ctx context.Context, layerID uuid.UUID) error {
	f.deleted = append(f.deleted, layerID)
	return nil
}

type fakePublisher struct {
	published []domain.OutboxEvent
	err       error
}

func (f *fakePublisher) PublishEvent(ctx context.Context, event domain.OutboxEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	return nil
}

type fixedTimeProvider struct {
	now time.Time
}

func (f fixedTimeProvider) Now() time.Time {
	return f.now
}
