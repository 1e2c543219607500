// Package httpapi is the JSON HTTP surface (C8): ingest, entity/chunk/
// expansion search, enhanced search, and the operational endpoints
// (health, stats, extraction status, model info). It speaks only to the
// pipeline orchestrator, the search service, and the graph store's read
// handlers — it never touches SQL directly.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/siherrmann/kgraph/apperr"
	"github.com/siherrmann/kgraph/extraction"
	"github.com/siherrmann/kgraph/graphstore"
	"github.com/siherrmann/kgraph/model"
	"github.com/siherrmann/kgraph/pipeline"
)

// version is the service's reported build version. It is a constant, so
// -ldflags -X cannot override it; this repository has no release tooling
// of its own.
const version = "0.1.0"

// entitySearchStore is the narrow slice of graphstore's entity handler the
// entity/chunk/expand handlers need, kept as an interface so tests stub it
// without a live Postgres instance.
type entitySearchStore interface {
	SearchEntities(term, typePrimary string, limit, minMentions int) ([]*model.Entity, error)
	SelectEntityByID(id uuid.UUID) (*model.Entity, error)
	SelectChunksMentioningEntity(entityID uuid.UUID) ([]*graphstore.ChunkMention, error)
	SelectEntitiesByChunk(chunkID uuid.UUID) ([]*model.Entity, error)
}

// documentLookup is the narrow slice of the documents handler the
// chunk-search handler needs to resolve content_id to a document.
type documentLookup interface {
	SelectDocumentByContentID(contentID int64) (*model.Document, error)
}

// chunkLister is the narrow slice of the chunks handler the chunk-search
// handler needs to list a document's chunks.
type chunkLister interface {
	SelectChunksByDocument(documentID uuid.UUID) ([]*model.Chunk, error)
}

// schemaValidator is the narrow slice of graphstore.Schema the schema-
// validate handler needs.
type schemaValidator interface {
	Validate() (*graphstore.ValidationResult, error)
}

// enhancedSearcher is the C9 search service's single entry point.
type enhancedSearcher interface {
	Search(req model.EnhancedSearchRequest) (*model.EnhancedSearchResponse, error)
}

// Dependencies bundles everything the HTTP surface calls into. Handlers
// depend on these narrow interfaces, not concrete types, so tests can stub
// every one of them without a live Postgres instance or LLM server.
type Dependencies struct {
	Pipeline  *pipeline.Pipeline
	Search    enhancedSearcher
	Entities  entitySearchStore
	Documents documentLookup
	Chunks    chunkLister
	Schema    schemaValidator
	Graph     graphHealthChecker
	LLM       llmHealthChecker

	// NERLoaded reports whether the local NER model is available. Unlike
	// the LLM and graph store, this can't be health-checked at request
	// time — it's fixed at startup by which extractors main.go built — so
	// a bool is enough rather than a polled interface.
	NERLoaded bool

	// LLMModel and NERModel name the configured models, reported verbatim
	// by GET /api/v1/model-info.
	LLMModel string
	NERModel string

	// ExtractionMetrics reports the live extraction-gate counters for
	// whichever extractor mode the pipeline was built with (unified or
	// NER+relationship-only). Nil is treated as "extraction not configured".
	ExtractionMetrics extractionMetricsSource
}

type extractionMetricsSource interface {
	Metrics() extraction.Snapshot
}

// graphHealthChecker is the subset of *sql.DB (via helper.Database.Instance)
// GET /health needs to confirm the store is reachable.
type graphHealthChecker interface {
	PingContext(ctx context.Context) error
}

type llmHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server wires Dependencies into an *echo.Echo and tracks the running
// counters GET /stats reports.
type Server struct {
	echo    *echo.Echo
	deps    Dependencies
	logger  *slog.Logger
	started time.Time

	statsMu               sync.Mutex
	documentsProcessed    int
	documentsFailed       int
	entitiesTotal         int
	relationshipsTotal    int
	totalProcessingTimeMs int64
	lastProcessedAt       time.Time
}

// New builds a Server and registers every route. Call Start to begin
// serving.
func New(deps Dependencies, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	s := &Server{echo: e, deps: deps, logger: logger, started: time.Now()}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/stats", s.handleStats)

	api := s.echo.Group("/api/v1")
	api.GET("/extraction/status", s.handleExtractionStatus)
	api.GET("/model-info", s.handleModelInfo)
	api.GET("/documents/:content_id", s.handleGetDocument)
	api.GET("/schema/validate", s.handleSchemaValidate)
	api.POST("/ingest", s.handleIngest)
	api.POST("/search/entities", s.handleSearchEntities)
	api.POST("/search/chunks", s.handleSearchChunks)
	api.POST("/expand/entities", s.handleExpandEntities)
	api.POST("/search/enhanced", s.handleSearchEnhanced)
}

// Start begins serving on addr, blocking until the server stops. Returns
// nil on a graceful http.ErrServerClosed shutdown.
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server, per the §5
// "inbound HTTP client disconnects propagate cancellation" ordering — this
// is the mirror operation, stopping the listener itself.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// recordIngest updates the GET /stats running counters after one
// ProcessDocument call, success or failure.
func (s *Server) recordIngest(entities, relationships int, processingTimeMs int64, failed bool) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	s.documentsProcessed++
	if failed {
		s.documentsFailed++
		return
	}
	s.entitiesTotal += entities
	s.relationshipsTotal += relationships
	s.totalProcessingTimeMs += processingTimeMs
	s.lastProcessedAt = time.Now()
}

// writeError maps an apperr.Category to its HTTP status and renders a
// uniform {"error": "..."} body, the shape every handler below uses.
func writeError(c echo.Context, err error) error {
	status := apperr.StatusCode(apperr.CategoryOf(err))
	return c.JSON(status, map[string]string{"error": err.Error()})
}
