package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/engine"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
	"github.com/arka-edu/timetable-api/pkg/jobs"
)

type catalogSource interface {
	Load(ctx context.Context) (*engine.Catalog, error)
}

type generationStore interface {
	Create(ctx context.Context, run *models.GenerationRun) error
	MarkRunning(ctx context.Context, id string) error
	Finish(ctx context.Context, exec sqlx.ExtContext, run *models.GenerationRun) error
	FindByID(ctx context.Context, id string) (*models.GenerationRun, error)
	FindLatestSuccessful(ctx context.Context) (*models.GenerationRun, error)
	List(ctx context.Context, limit int) ([]models.GenerationRun, error)
}

type slotBatchWriter interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error
	DeleteByGeneration(ctx context.Context, exec sqlx.ExtContext, generationID string) error
}

type generationDB interface {
	sqlx.ExtContext
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type timetableEngine interface {
	Generate(ctx context.Context, catalog *engine.Catalog, generationID string, opts engine.GenerateOptions) (*engine.Result, error)
}

type runQueue interface {
	Enqueue(job jobs.Job) error
}

// GenerationConfig tunes solver runs started through the API.
type GenerationConfig struct {
	TimeLimit time.Duration
	Weights   engine.Weights
}

// GenerationService owns the full-regeneration workflow: it snapshots
// the roster, runs the solver on a worker goroutine, and persists the
// outcome atomically. Only one run may be active at a time; concurrent
// runs would race on the roster snapshot and on the published
// timetable.
type GenerationService struct {
	catalog   catalogSource
	runs      generationStore
	slots     slotBatchWriter
	db        generationDB
	eng       timetableEngine
	queue     runQueue
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       GenerationConfig

	mu     sync.Mutex
	active bool
}

// NewGenerationService wires the generation workflow dependencies. The
// job queue is attached separately because its handler is this
// service's ProcessJob.
func NewGenerationService(
	catalog catalogSource,
	runs generationStore,
	slots slotBatchWriter,
	db generationDB,
	eng timetableEngine,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg GenerationConfig,
) *GenerationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = 60 * time.Second
	}
	if cfg.Weights == (engine.Weights{}) {
		cfg.Weights = engine.DefaultWeights()
	}
	return &GenerationService{
		catalog:   catalog,
		runs:      runs,
		slots:     slots,
		db:        db,
		eng:       eng,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// AttachQueue sets the worker queue used to run generations off the
// request path.
func (s *GenerationService) AttachQueue(q runQueue) {
	s.queue = q
}

type generationJobPayload struct {
	RunID     string
	TimeLimit time.Duration
}

// Start validates the request, records a pending run and enqueues the
// solve. It fails fast with RUN_IN_PROGRESS instead of queueing runs
// behind each other.
func (s *GenerationService) Start(ctx context.Context, req dto.GenerateTimetableRequest) (*models.GenerationRun, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation request")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "generation queue not attached")
	}

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrRunInProgress, "")
	}
	s.active = true
	s.mu.Unlock()

	timeLimit := s.cfg.TimeLimit
	if req.TimeLimitSeconds > 0 {
		timeLimit = time.Duration(req.TimeLimitSeconds) * time.Second
	}

	run := &models.GenerationRun{Notes: req.Notes}
	if err := s.runs.Create(ctx, run); err != nil {
		s.release()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record generation run")
	}

	job := jobs.Job{
		ID:      run.ID,
		Type:    "timetable.generate",
		Payload: generationJobPayload{RunID: run.ID, TimeLimit: timeLimit},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.release()
		s.failRun(context.Background(), run, "QUEUE_ERROR", err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue generation run")
	}
	return run, nil
}

// ProcessJob is the queue handler for generation jobs.
func (s *GenerationService) ProcessJob(ctx context.Context, job jobs.Job) error {
	defer s.release()

	payload, ok := job.Payload.(generationJobPayload)
	if !ok {
		s.logger.Error("unexpected generation job payload", zap.String("job_id", job.ID))
		return errors.New("unexpected generation job payload")
	}
	return s.execute(ctx, payload.RunID, payload.TimeLimit)
}

func (s *GenerationService) execute(ctx context.Context, runID string, timeLimit time.Duration) error {
	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		return err
	}
	if err := s.runs.MarkRunning(ctx, runID); err != nil {
		return err
	}

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		s.failRun(ctx, run, "SNAPSHOT_ERROR", err)
		return err
	}

	res, err := s.eng.Generate(ctx, catalog, runID, engine.GenerateOptions{
		TimeLimit: timeLimit,
		Weights:   s.cfg.Weights,
	})
	if err != nil {
		var ice *engine.InfeasibleCandidateError
		var cde *engine.ConflictDetectedError
		switch {
		case errors.As(err, &ice):
			s.failRun(ctx, run, appErrors.ErrInfeasibleCandidate.Code, err)
		case errors.As(err, &cde):
			s.failRun(ctx, run, appErrors.ErrConflictDetected.Code, err)
		default:
			s.failRun(ctx, run, "SOLVER_ERROR", err)
		}
		return err
	}

	run.SolverStatus = string(res.Status)
	run.SolveSeconds = res.Stats.SolveTime.Seconds()
	if !res.Status.Solved() {
		run.Status = models.GenerationStatusFailed
		if err := s.runs.Finish(ctx, s.db, run); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.ObserveGeneration(run.SolverStatus, res.Stats.SolveTime, 0)
		}
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.failRun(ctx, run, "DB_ERROR", err)
		return err
	}
	defer tx.Rollback()

	// A rerun of the same job must not stack rows onto an earlier
	// partial publish of this generation.
	if err := s.slots.DeleteByGeneration(ctx, tx, run.ID); err != nil {
		s.failRun(ctx, run, "DB_ERROR", err)
		return err
	}
	if err := s.slots.InsertBatch(ctx, tx, res.Slots); err != nil {
		s.failRun(ctx, run, "DB_ERROR", err)
		return err
	}
	run.Status = models.GenerationStatusSuccess
	run.TotalSlots = len(res.Slots)
	if err := s.runs.Finish(ctx, tx, run); err != nil {
		s.failRun(ctx, run, "DB_ERROR", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		s.failRun(ctx, run, "DB_ERROR", err)
		return err
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "timetable:*")
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration(run.SolverStatus, res.Stats.SolveTime, run.TotalSlots)
	}
	s.logger.Info("generation run finished",
		zap.String("run_id", runID),
		zap.String("solver_status", run.SolverStatus),
		zap.Int("slots", run.TotalSlots),
		zap.Float64("solve_seconds", run.SolveSeconds))
	return nil
}

// Active reports whether a generation run currently holds the guard.
func (s *GenerationService) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *GenerationService) release() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

func (s *GenerationService) failRun(ctx context.Context, run *models.GenerationRun, solverStatus string, cause error) {
	run.Status = models.GenerationStatusFailed
	run.SolverStatus = solverStatus
	if cause != nil {
		run.Notes = cause.Error()
	}
	if err := s.runs.Finish(ctx, s.db, run); err != nil {
		s.logger.Error("failed to record generation failure",
			zap.String("run_id", run.ID), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration(solverStatus, 0, 0)
	}
}

// Get returns a run by ID.
func (s *GenerationService) Get(ctx context.Context, id string) (*models.GenerationRun, error) {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "generation run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation run")
	}
	return run, nil
}

// Latest returns the newest successful run.
func (s *GenerationService) Latest(ctx context.Context) (*models.GenerationRun, error) {
	run, err := s.runs.FindLatestSuccessful(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no successful generation yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest generation")
	}
	return run, nil
}

// List returns recent runs newest first.
func (s *GenerationService) List(ctx context.Context, limit int) ([]models.GenerationRun, error) {
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list generation runs")
	}
	return runs, nil
}
