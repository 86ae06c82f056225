package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/dmitrijs2005/fintrack/internal/repositories/metadata"
	"github.com/dmitrijs2005/fintrack/internal/repositories/transactions"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// LastSyncKey is the metadata key holding the completion time of the last
// successful sync, RFC 3339 encoded.
const LastSyncKey = "last_sync_at"

// DefaultSyncWindowDays is how far back a sync looks when no window is given.
const DefaultSyncWindowDays = 90

// StoreInitializer prepares the store before first use. Repeated calls must
// be cheap no-ops.
type StoreInitializer interface {
	Init(ctx context.Context) error
}

// TransactionFetcher is implemented by *Fetcher.
type TransactionFetcher interface {
	Fetch(ctx context.Context, accountID string, window models.DateRange) ([]models.RawTransaction, error)
	FetchAll(ctx context.Context, window models.DateRange) ([]models.RawTransaction, error)
}

// SyncRequest selects what a sync pulls. An empty AccountID means every
// account; a zero Window means the configured trailing window.
type SyncRequest struct {
	AccountID string
	Window    models.DateRange
}

// SyncService runs fetch, normalize and upsert as one single-flight job.
//
// Contract:
//   - Sync never panics and never blocks on another run: a call made while a
//     run is in progress returns at once with Success=false.
//   - State is Running for the duration of a run and Idle otherwise.
//   - LastOutcome is the outcome of the last run that held the gate.
type SyncService interface {
	Sync(ctx context.Context, req SyncRequest) models.SyncOutcome
	State() models.SyncState
	LastOutcome() *models.SyncOutcome
	LastSync(ctx context.Context) (*time.Time, error)
}

type syncService struct {
	store      StoreInitializer
	fetcher    TransactionFetcher
	txs        transactions.Repository
	meta       metadata.Repository
	logger     logging.Logger
	windowDays int
	now        func() time.Time

	gate  *semaphore.Weighted
	state atomic.Int32

	mu   sync.Mutex
	last *models.SyncOutcome
}

func NewSyncService(store StoreInitializer, fetcher TransactionFetcher, txs transactions.Repository,
	meta metadata.Repository, logger logging.Logger, windowDays int) SyncService {
	if windowDays <= 0 {
		windowDays = DefaultSyncWindowDays
	}
	return &syncService{
		store:      store,
		fetcher:    fetcher,
		txs:        txs,
		meta:       meta,
		logger:     logger,
		windowDays: windowDays,
		now:        time.Now,
		gate:       semaphore.NewWeighted(1),
	}
}

func (s *syncService) State() models.SyncState {
	return models.SyncState(s.state.Load())
}

func (s *syncService) LastOutcome() *models.SyncOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	out := *s.last
	return &out
}

func (s *syncService) LastSync(ctx context.Context) (*time.Time, error) {
	raw, err := s.meta.Get(ctx, LastSyncKey)
	if err != nil || raw == nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return nil, fmt.Errorf("bad %s value %q: %w", LastSyncKey, raw, err)
	}
	return &t, nil
}

func (s *syncService) Sync(ctx context.Context, req SyncRequest) (out models.SyncOutcome) {
	if !s.gate.TryAcquire(1) {
		s.logger.Warn(ctx, "sync rejected, another run is in progress")
		return models.SyncOutcome{
			Success: false,
			State:   models.SyncRunning,
			Error:   common.SyncInProgressMessage,
		}
	}

	runID := uuid.NewString()
	log := s.logger.With("run_id", runID)
	s.state.Store(int32(models.SyncRunning))
	started := s.now()

	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, "sync panicked", "panic", r)
			out = failed(runID, fmt.Errorf("unexpected failure: %v", r))
		}

		s.mu.Lock()
		last := out
		s.last = &last
		s.mu.Unlock()

		s.state.Store(int32(models.SyncIdle))
		s.gate.Release(1)
	}()

	log.Info(ctx, "sync started", "account_id", req.AccountID)

	out, err := s.run(ctx, log, runID, req)
	if err != nil {
		log.Error(ctx, "sync failed", "error", err, "elapsed", s.now().Sub(started))
		return out
	}

	log.Info(ctx, "sync finished", "accepted", out.Accepted, "rejected", out.Rejected,
		"write_failures", out.WriteFailures, "total", out.Total, "elapsed", s.now().Sub(started))
	return out
}

func failed(runID string, err error) models.SyncOutcome {
	return models.SyncOutcome{RunID: runID, Success: false, State: models.SyncFailed, Error: err.Error()}
}

func (s *syncService) run(ctx context.Context, log logging.Logger, runID string, req SyncRequest) (models.SyncOutcome, error) {
	if err := s.store.Init(ctx); err != nil {
		return failed(runID, err), err
	}

	window := req.Window
	if window.IsZero() {
		window = models.LastDays(s.now(), s.windowDays)
	}

	var (
		raws []models.RawTransaction
		err  error
	)
	if req.AccountID != "" {
		raws, err = s.fetcher.Fetch(ctx, req.AccountID, window)
	} else {
		raws, err = s.fetcher.FetchAll(ctx, window)
	}
	if err != nil {
		err = fmt.Errorf("fetch: %w", err)
		return failed(runID, err), err
	}

	norm := NormalizeBatch(raws)
	for _, rej := range norm.Rejected {
		log.Debug(ctx, "rejected transaction", "index", rej.Index, "missing", rej.Missing, "invalid", rej.Invalid)
	}

	if len(norm.Valid) == 0 && len(norm.Rejected) > 0 {
		err := fmt.Errorf("%w (%d invalid)", common.ErrNoValidTransactions, len(norm.Rejected))
		out := failed(runID, err)
		out.Rejected = len(norm.Rejected)
		out.Rejections = norm.Rejected
		return out, err
	}

	batch := s.txs.BatchUpsert(ctx, norm.Valid)
	for _, f := range batch.Failed {
		log.Warn(ctx, "failed to store transaction", "index", f.Index, "error", f.Err)
	}

	total, err := s.txs.Count(ctx)
	if err != nil {
		return failed(runID, err), err
	}

	completed := s.now().UTC()
	if err := s.meta.Set(ctx, LastSyncKey, []byte(completed.Format(time.RFC3339Nano))); err != nil {
		return failed(runID, err), err
	}

	return models.SyncOutcome{
		RunID:         runID,
		Success:       true,
		State:         models.SyncSucceeded,
		Accepted:      batch.Applied,
		Rejected:      len(norm.Rejected),
		WriteFailures: len(batch.Failed),
		Total:         total,
		LastSync:      &completed,
		Rejections:    norm.Rejected,
	}, nil
}

// IsInProgress reports whether out is the rejection of a concurrent sync.
func IsInProgress(out models.SyncOutcome) bool {
	return !out.Success && out.RunID == "" && out.Error == common.SyncInProgressMessage
}
