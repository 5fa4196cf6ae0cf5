package app

import (
	"github.com/cleitonmarx/symbiont"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/adapters/inbound/http"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/adapters/inbound/mcp"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/adapters/inbound/workers"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/adapters/outbound/blob"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/adapters/outbound/config"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/adapters/outbound/log"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/adapters/outbound/modelrunner"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/adapters/outbound/postgres"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/adapters/outbound/projector"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/adapters/outbound/pubsub"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/adapters/outbound/time"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/projection"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/telemetry"
	"github.com/cleitonmarx/symbiont-semantic-atlas/internal/usecases"
)

// NewAtlasApp creates and returns a new instance of the semantic atlas application.
func NewAtlasApp(initializers ...symbiont.Initializer) *symbiont.App {
	return symbiont.NewApp().
		Initialize(initializers...).
		Initialize(
			&log.InitLogger{},
			&telemetry.InitOpenTelemetry{},
			&telemetry.InitHttpClient{},
			&config.InitVaultProvider{},
			&postgres.InitDB{},
			&postgres.InitUnitOfWork{},
			&postgres.InitDatasetRepository{},
			&postgres.InitLayerRepository{},
			&postgres.InitPointRepository{},
			&time.InitCurrentTimeProvider{},
			&pubsub.InitClient{},
			&pubsub.InitPublisher{},
			&blob.InitCoordinateStore{},
			&modelrunner.InitBatchEmbedder{},
			&projector.InitUMAPEngineClient{},
			&projection.InitTwoStageReducer{},

			&usecases.InitPipelineDefaults{},
			&usecases.InitLoadDataset{},
			&usecases.InitListDatasets{},
			&usecases.InitGenerateLayer{},
			&usecases.InitReclusterLayer{},
			&usecases.InitActivateLayer{},
			&usecases.InitDeleteLayer{},
			&usecases.InitListLayers{},
			&usecases.InitGetActiveLayer{},
			&usecases.InitSearchLayer{},
			&usecases.InitVectorSearch{},
			&usecases.InitPointNeighbors{},
			&usecases.InitRelayOutbox{},
		).
		Host(
			&http.AtlasServer{},
			&mcp.AtlasMCPServer{},
			&workers.MessageRelay{},
		).
		Introspect(&MermaidGraphIntrospector{})
}
