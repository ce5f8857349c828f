package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dusk-indust/roleflow/internal/config"
	"github.com/dusk-indust/roleflow/internal/role"
	"github.com/dusk-indust/roleflow/internal/rolestep"
)

// Compile-time interface check.
var _ Orchestrator = (*Service)(nil)

// Service wires the router, executor, resolver, and assembler for task
// requests. The registry and service config are read-only after start;
// project configuration is loaded fresh per request. Independent requests
// may therefore run concurrently with no shared mutable state.
type Service struct {
	reg      *role.Registry
	cfg      *config.Service
	producer rolestep.Producer
	progress *ProgressReporter
	logger   *zap.Logger
}

// NewService creates a Service.
func NewService(reg *role.Registry, cfg *config.Service, producer rolestep.Producer, logger *zap.Logger) *Service {
	return &Service{
		reg:      reg,
		cfg:      cfg,
		producer: producer,
		progress: NewProgressReporter(),
		logger:   logger,
	}
}

// Validate checks the current project configuration before any task is
// processed. Disabling the last implementation-capable role is rejected here,
// at configuration time.
func (s *Service) Validate() error {
	_, err := s.activeView()
	return err
}

// Progress returns the channel emitting run progress events.
func (s *Service) Progress() <-chan ProgressEvent {
	return s.progress.Subscribe()
}

// Close shuts down the progress reporter.
func (s *Service) Close() {
	s.progress.Close()
}

// Route classifies the task without executing it.
func (s *Service) Route(_ context.Context, req TaskRequest) ([]ActivationDecision, error) {
	view, err := s.activeView()
	if err != nil {
		return nil, err
	}
	router := NewRouter(view, s.cfg.Router.Threshold, s.logger)
	return router.Classify(req)
}

// Run executes the full flow: classification, sequential pipeline execution
// with bounded loop-back, conflict resolution, and assembly.
func (s *Service) Run(ctx context.Context, req TaskRequest) (*FinalDocument, error) {
	view, err := s.activeView()
	if err != nil {
		return nil, err
	}

	router := NewRouter(view, s.cfg.Router.Threshold, s.logger)
	decisions, err := router.Classify(req)
	if err != nil {
		return nil, err
	}
	activated := router.Activated(decisions)

	runID := uuid.NewString()
	_, body := SplitPrefix(req.Text)

	s.logger.Info("run starting",
		zap.String("run", runID),
		zap.Int("roles", len(activated)))

	exec := NewExecutor(s.producer, s.options(), s.progress.Emit, s.logger)
	pctx, err := exec.Run(ctx, runID, body, activated)
	if err != nil {
		return nil, err
	}

	notes := NewResolver(view, s.logger).Resolve(pctx)
	doc := Assemble(pctx, notes)

	s.logger.Info("run complete",
		zap.String("run", runID),
		zap.Int("sections", len(doc.Sections)),
		zap.Bool("notes", doc.Notes != nil))

	return doc, nil
}

// activeView loads the project configuration and contracts the registry onto
// the enabled role set.
func (s *Service) activeView() (*role.ActiveView, error) {
	pc := config.LoadProject(s.cfg.Project.File, s.reg, s.logger)
	view, err := s.reg.Activate(pc.Disabled(), pc.Extra())
	if err != nil {
		return nil, fmt.Errorf("project configuration: %w", err)
	}
	return view, nil
}

func (s *Service) options() Options {
	return Options{
		Threshold:      s.cfg.Router.Threshold,
		LoopBackBudget: s.cfg.Pipeline.LoopBackBudget,
		StepTimeout:    time.Duration(s.cfg.Pipeline.StepTimeoutSeconds) * time.Second,
	}
}
