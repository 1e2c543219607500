// Command kgraphd starts the knowledge-graph extraction and retrieval
// service (§6): it wires the graph store, the LLM client, the extraction
// branch configured by EXTRACTION_MODE, the orchestrator, and the enhanced
// search service into the HTTP surface, then serves until interrupted.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/siherrmann/kgraph/config"
	"github.com/siherrmann/kgraph/extraction"
	"github.com/siherrmann/kgraph/graphstore"
	"github.com/siherrmann/kgraph/helper"
	"github.com/siherrmann/kgraph/httpapi"
	"github.com/siherrmann/kgraph/llm"
	"github.com/siherrmann/kgraph/pipeline"
	"github.com/siherrmann/kgraph/search"
)

func main() {
	opts := helper.PrettyHandlerOptions{SlogOpts: slog.HandlerOptions{Level: slog.LevelInfo}}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db := helper.NewDatabase("kgraphd", &cfg.Database, logger)
	defer db.Close()

	store, err := graphstore.New(db, false)
	if err != nil {
		logger.Error("initialize graph store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	llmClient := llm.New(llm.Config{
		BaseURL:            cfg.LLMBaseURL,
		APIKey:             cfg.LLMAPIKey,
		Model:              cfg.LLMModel,
		Timeout:            time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		ModelRetryInterval: time.Duration(cfg.LLMModelRetryIntervalSeconds) * time.Second,
	}, logger)

	pipelineDeps := pipeline.Dependencies{
		Documents:     store.Documents,
		Chunks:        store.Chunks,
		Entities:      store.Entities,
		Relationships: store.Relationships,
		CoOccurrence:  store.CoOccurrence,
	}
	pipelineCfg := pipeline.Config{EnableCoOccurrenceWrites: cfg.EnableCoOccurrenceWrites}

	httpDeps := httpapi.Dependencies{
		Search:    search.New(store.Entities, logger),
		Entities:  store.Entities,
		Documents: store.Documents,
		Chunks:    store.Chunks,
		Schema:    store.Schema,
		Graph:     db.Instance,
		LLM:       llmClient,
		LLMModel:  cfg.LLMModel,
	}

	if cfg.ExtractionMode == "ner" {
		nerExtractor, err := extraction.NewNERExtractor(cfg.NERModel, cfg.NEROnnxPath, cfg.NERConfidenceThreshold)
		if err != nil {
			logger.Error("load NER model", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer nerExtractor.Close()

		relationshipExtractor := extraction.NewRelationshipOnlyExtractor(llmClient, cfg.MaxConcurrentExtractions, cfg.UnifiedRelationshipConfidenceThreshold)

		pipelineCfg.Mode = pipeline.ModeNER
		pipelineDeps.NER = nerExtractor
		pipelineDeps.RelationshipOnly = relationshipExtractor

		httpDeps.NERLoaded = true
		httpDeps.NERModel = cfg.NERModel
		httpDeps.ExtractionMetrics = relationshipExtractor
	} else {
		unifiedExtractor := extraction.NewUnifiedExtractor(llmClient, cfg.MaxConcurrentExtractions, cfg.UnifiedEntityConfidenceThreshold, cfg.UnifiedRelationshipConfidenceThreshold)

		pipelineCfg.Mode = pipeline.ModeUnified
		pipelineDeps.Unified = unifiedExtractor

		httpDeps.ExtractionMetrics = unifiedExtractor
	}

	orchestrator := pipeline.New(pipelineDeps, pipelineCfg, logger)
	httpDeps.Pipeline = orchestrator

	server := httpapi.New(httpDeps, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serveErrs := make(chan error, 1)
	go func() {
		addr := ":" + strconv.Itoa(cfg.HTTPPort)
		logger.Info("starting server", slog.String("addr", addr), slog.String("extraction_mode", cfg.ExtractionMode))
		serveErrs <- server.Start(addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErrs:
		if err != nil {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}
