package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SstealzZ/SynapseOS/internal/config"
	"github.com/SstealzZ/SynapseOS/internal/schema"
	"github.com/SstealzZ/SynapseOS/internal/stats"
	"github.com/SstealzZ/SynapseOS/internal/store"
)

const dateLayout = "2006/01/02"

// Store is the document-store surface the service needs. Both the Mongo and
// the Postgres backends satisfy it.
type Store interface {
	InsertNotation(context.Context, store.Notation) (store.Notation, error)
	FindNotationByNameDate(context.Context, string, string) (*store.Notation, error)
	ListNotations(context.Context, store.ListQuery) ([]store.Notation, error)
	InsertInput(context.Context, store.Input) (store.Input, error)
	ListInputs(context.Context, store.ListQuery) ([]store.Input, error)
	LatestInput(context.Context, string) (store.Input, error)
	InsertAIOutput(context.Context, store.AIOutput) (store.AIOutput, error)
	ListAIOutputs(context.Context, store.ListQuery) ([]store.AIOutput, error)
	LatestAIOutput(context.Context, string) (store.AIOutput, error)
	Ping(context.Context) error
}

type Service struct {
	cfg   config.Config
	store Store
	now   func() time.Time
}

func New(cfg config.Config, dataStore Store) *Service {
	return &Service{cfg: cfg, store: dataStore, now: time.Now}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// storeContext bounds every store round trip and carries the request
// context so client disconnects cancel the operation.
func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *Service) CreateNotation(ctx context.Context, payload schema.NotationCreate) (store.Notation, error) {
	if err := payload.Validate(); err != nil {
		return store.Notation{}, err
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	// Best-effort uniqueness on (name, date): the check and the insert are
	// not atomic, so concurrent submissions can still both land.
	existing, err := s.store.FindNotationByNameDate(ctx, payload.Name, payload.Date)
	if err != nil {
		return store.Notation{}, err
	}
	if existing != nil {
		return store.Notation{}, duplicateEntry(
			fmt.Sprintf("notation for user %s on date %s already exists", payload.Name, payload.Date))
	}

	return s.store.InsertNotation(ctx, payload.Record())
}

func (s *Service) ListNotations(ctx context.Context, name, startDate, endDate string) ([]store.Notation, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.store.ListNotations(ctx, store.ListQuery{
		Name:      name,
		StartDate: startDate,
		EndDate:   endDate,
	})
}

// StatsResult distinguishes the no-data case from a computed result without
// the caller having to inspect errors.
type StatsResult struct {
	NoData  bool
	Message string
	Result  stats.Result
}

func (s *Service) NotationStats(ctx context.Context, name string, days int) (StatsResult, error) {
	if days <= 0 {
		days = s.cfg.StatsDays
	}
	if days <= 0 {
		days = 30
	}

	today := s.now()
	startDate := today.AddDate(0, 0, -days).Format(dateLayout)

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	entries, err := s.store.ListNotations(ctx, store.ListQuery{
		Name:      name,
		StartDate: startDate,
		SortAsc:   true,
	})
	if err != nil {
		return StatsResult{}, err
	}
	if len(entries) == 0 {
		return StatsResult{
			NoData:  true,
			Message: fmt.Sprintf("No notations found for user %s in the last %d days", name, days),
		}, nil
	}

	window := s.cfg.TrendWindow
	if window <= 0 {
		window = stats.DefaultWindow
	}
	return StatsResult{
		Result: stats.Compute(entries, window, stats.DateRange{
			Start: startDate,
			End:   today.Format(dateLayout),
		}),
	}, nil
}

func (s *Service) CreateInput(ctx context.Context, payload schema.InputCreate) (store.Input, error) {
	if err := payload.Validate(); err != nil {
		return store.Input{}, err
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.store.InsertInput(ctx, payload.Record())
}

// ListInputs treats limit < 0 as "use the configured default"; an explicit 0
// lifts the bound, matching how the original service behaved.
func (s *Service) ListInputs(ctx context.Context, name string, limit int, startDate, endDate string) ([]store.Input, error) {
	if limit < 0 {
		limit = s.cfg.InputListLimit
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.store.ListInputs(ctx, store.ListQuery{
		Name:      name,
		StartDate: startDate,
		EndDate:   endDate,
		Limit:     int64(limit),
	})
}

func (s *Service) LatestInput(ctx context.Context, name string) (store.Input, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	input, err := s.store.LatestInput(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return store.Input{}, notFound(fmt.Sprintf("no input entries found for user %s", name))
	}
	if err != nil {
		return store.Input{}, err
	}
	return input, nil
}

func (s *Service) CreateAIOutput(ctx context.Context, payload schema.AIOutputCreate) (store.AIOutput, error) {
	if err := payload.Validate(); err != nil {
		return store.AIOutput{}, err
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.store.InsertAIOutput(ctx, payload.Record())
}

func (s *Service) ListAIOutputs(ctx context.Context, name string, limit int, startDate, endDate string) ([]store.AIOutput, error) {
	if limit < 0 {
		limit = s.cfg.AIOutputListLimit
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.store.ListAIOutputs(ctx, store.ListQuery{
		Name:      name,
		StartDate: startDate,
		EndDate:   endDate,
		Limit:     int64(limit),
	})
}

func (s *Service) LatestAIOutput(ctx context.Context, name string) (store.AIOutput, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	output, err := s.store.LatestAIOutput(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return store.AIOutput{}, notFound(fmt.Sprintf("no AI output entries found for user %s", name))
	}
	if err != nil {
		return store.AIOutput{}, err
	}
	return output, nil
}
