package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ArticlePublisher/internal/catalog"
	"ArticlePublisher/internal/compliance"
	"ArticlePublisher/internal/content"
	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/outline"
	"ArticlePublisher/internal/ports"
	"ArticlePublisher/internal/publication"
	"ArticlePublisher/internal/retry"
	"ArticlePublisher/internal/topic"
)

// Phase names as they appear in errors and logs.
const (
	PhaseCatalog      = "catalog"
	PhaseTopic        = "topic"
	PhaseOutline      = "outline"
	PhaseLock         = "lock"
	PhaseRegistryRead = "registry-read"
	PhaseContent      = "content"
	PhaseValidate     = "validate"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Catalog     ports.CatalogSource
	Publisher   ports.Publisher
	Registry    ports.UsageRegistry
	Lock        ports.RegistryLock
	Retry       retry.Policy
	AccentColor string
	Logger      *slog.Logger
}

// Request is one pipeline invocation.
type Request struct {
	Keyword string
	Target  domain.PublishTarget
	// DryRun stops after validation; nothing is published and the registry is not written.
	DryRun bool
}

// Result describes what a run produced.
type Result struct {
	RunID       string
	Topic       domain.Topic
	Document    *domain.Document
	Report      domain.ComplianceReport
	Corrections []string
	Record      domain.PublicationRecord
	Published   bool
}

// Pipeline implements the catalog to publication workflow. Phases run
// strictly in sequence and any fatal condition aborts the whole run.
type Pipeline struct {
	catalog   ports.CatalogSource
	publisher ports.Publisher
	registry  ports.UsageRegistry
	lock      ports.RegistryLock
	retry     retry.Policy
	accent    string
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	accent := deps.AccentColor
	if accent == "" {
		accent = content.DefaultAccentColor
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		catalog:   deps.Catalog,
		publisher: deps.Publisher,
		registry:  deps.Registry,
		lock:      deps.Lock,
		retry:     deps.Retry,
		accent:    strings.ToLower(accent),
		logger:    logger,
	}
}

// Run executes one article from catalog read to publication.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if p.catalog == nil || p.publisher == nil || p.registry == nil {
		return Result{}, fmt.Errorf("pipeline is not configured")
	}

	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	policy := p.retry
	policy.Logger = logger.With("component", "retry")
	result := Result{RunID: runID}

	logger.Info("pipeline started", "keyword", req.Keyword, "destination", req.Target.Destination, "dry_run", req.DryRun)

	snapshot, err := retry.Value(ctx, policy, PhaseCatalog, catalog.NewBuilder(p.catalog, logger.With("component", "catalog")).Build)
	if err != nil {
		return result, err
	}
	logger.Info("catalog snapshot ready", "items", snapshot.TotalItems, "categories", len(snapshot.Categories))

	selector := topic.NewSelector(logger.With("component", "topic"))
	result.Topic, err = retry.Value(ctx, policy, PhaseTopic, func(context.Context) (domain.Topic, error) {
		return selector.Select(req.Keyword, snapshot)
	})
	if err != nil {
		return result, err
	}
	logger.Info("topic selected", "keyword", result.Topic.Keyword, "candidates", len(result.Topic.Candidates), "found", result.Topic.Found, "expanded", result.Topic.Expanded)

	plan, err := retry.Value(ctx, policy, PhaseOutline, func(context.Context) (domain.Outline, error) {
		return outline.Build(result.Topic), nil
	})
	if err != nil {
		return result, err
	}

	// publishing runs hold the single-writer lock from registry read to append
	if !req.DryRun && p.lock != nil {
		if err := policy.Do(ctx, PhaseLock, p.lock.Acquire); err != nil {
			return result, err
		}
		defer func() {
			if relErr := p.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
				logger.Warn("registry lock release failed", "error", relErr)
			}
		}()
	}

	used, err := retry.Value(ctx, policy, PhaseRegistryRead, p.registry.UsedAssets)
	if err != nil {
		return result, err
	}

	assembler := content.NewAssembler(content.Options{StoreURL: p.publisher.StoreURL(), AccentColor: p.accent}, logger.With("component", "content"))
	result.Document, err = retry.Value(ctx, policy, PhaseContent, func(context.Context) (*domain.Document, error) {
		return assembler.Assemble(result.Topic, plan, used)
	})
	if err != nil {
		return result, err
	}
	logger.Info("document assembled", "length", result.Document.Metrics.Length, "assets", len(result.Document.Assets))

	if err := policy.Do(ctx, PhaseValidate, func(context.Context) error {
		return p.validate(result.Document, &result, logger)
	}); err != nil {
		return result, err
	}

	if req.DryRun {
		logger.Info("dry run finished", "score", result.Report.Score)
		return result, nil
	}

	gateway := publication.NewGateway(p.publisher, p.registry, policy, logger.With("component", "publication"))
	result.Record, err = gateway.Publish(ctx, result.Document, req.Target)
	if result.Record.ExternalID != "" {
		result.Published = true
	}
	if err != nil {
		return result, err
	}

	logger.Info("pipeline finished", "id", result.Record.ExternalID, "url", result.Record.URL)
	return result, nil
}

// validate applies known fixes once and re-checks; violations that survive
// the single correction pass abort the run.
func (p *Pipeline) validate(doc *domain.Document, result *Result, logger *slog.Logger) error {
	validator := compliance.NewValidator(p.accent)

	report := validator.Validate(doc)
	if !report.Compliant() {
		logger.Info("compliance violations found", "rules", report.ViolatedRules(), "score", report.Score)
		corrector := compliance.NewCorrector(p.accent, logger.With("component", "compliance"))
		result.Corrections = corrector.Correct(doc, report)
		report = validator.Validate(doc)
	}
	result.Report = report

	for _, w := range report.Warnings {
		logger.Warn("compliance warning", "rule", w.Rule, "detail", w.Detail)
	}
	if !report.Compliant() {
		return fmt.Errorf("%w: %s", domain.ErrValidationUnrecoverable, describe(report.Violations))
	}
	logger.Info("document validated", "score", report.Score, "corrections", result.Corrections)
	return nil
}

func describe(violations []domain.Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.Rule+" ("+v.Detail+")")
	}
	return strings.Join(parts, "; ")
}
