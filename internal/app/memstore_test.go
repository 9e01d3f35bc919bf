package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SstealzZ/SynapseOS/internal/store"
)

// memStore is a behavior-complete in-memory document store: it applies the
// same name/date filtering, ordering, and limits as the real backends so
// service and handler tests exercise full query semantics.
type memStore struct {
	mu        sync.Mutex
	nextID    int
	notations []store.Notation
	inputs    []store.Input
	aiOutputs []store.AIOutput

	pingErr error
	failErr error // when set, every store operation fails with it
}

func (m *memStore) id() string {
	m.nextID++
	return fmt.Sprintf("mem-%04d", m.nextID)
}

func dateInRange(date string, query store.ListQuery) bool {
	if query.StartDate != "" && date < query.StartDate {
		return false
	}
	if query.EndDate != "" && date > query.EndDate {
		return false
	}
	return true
}

func (m *memStore) Ping(context.Context) error {
	return m.pingErr
}

func (m *memStore) InsertNotation(_ context.Context, notation store.Notation) (store.Notation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return store.Notation{}, m.failErr
	}
	notation.ID = m.id()
	m.notations = append(m.notations, notation)
	return notation, nil
}

func (m *memStore) FindNotationByNameDate(_ context.Context, name, date string) (*store.Notation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, notation := range m.notations {
		if notation.Name == name && notation.Date == date {
			found := notation
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListNotations(_ context.Context, query store.ListQuery) ([]store.Notation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	out := make([]store.Notation, 0)
	for _, notation := range m.notations {
		if notation.Name == query.Name && dateInRange(notation.Date, query) {
			out = append(out, notation)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if query.SortAsc {
			return out[i].Date < out[j].Date
		}
		return out[i].Date > out[j].Date
	})
	if query.Limit > 0 && int64(len(out)) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (m *memStore) InsertInput(_ context.Context, input store.Input) (store.Input, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return store.Input{}, m.failErr
	}
	input.ID = m.id()
	m.inputs = append(m.inputs, input)
	return input, nil
}

func (m *memStore) ListInputs(_ context.Context, query store.ListQuery) ([]store.Input, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	out := make([]store.Input, 0)
	for _, input := range m.inputs {
		if input.Name == query.Name && dateInRange(input.Date, query) {
			out = append(out, input)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if query.SortAsc {
			return out[i].Date < out[j].Date
		}
		return out[i].Date > out[j].Date
	})
	if query.Limit > 0 && int64(len(out)) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (m *memStore) LatestInput(ctx context.Context, name string) (store.Input, error) {
	items, err := m.ListInputs(ctx, store.ListQuery{Name: name})
	if err != nil {
		return store.Input{}, err
	}
	if len(items) == 0 {
		return store.Input{}, store.ErrNotFound
	}
	return items[0], nil
}

func (m *memStore) InsertAIOutput(_ context.Context, output store.AIOutput) (store.AIOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return store.AIOutput{}, m.failErr
	}
	output.ID = m.id()
	m.aiOutputs = append(m.aiOutputs, output)
	return output, nil
}

func (m *memStore) ListAIOutputs(_ context.Context, query store.ListQuery) ([]store.AIOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	out := make([]store.AIOutput, 0)
	for _, output := range m.aiOutputs {
		if output.Name == query.Name && dateInRange(output.Date, query) {
			out = append(out, output)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if query.SortAsc {
			return out[i].Date < out[j].Date
		}
		return out[i].Date > out[j].Date
	})
	if query.Limit > 0 && int64(len(out)) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (m *memStore) LatestAIOutput(ctx context.Context, name string) (store.AIOutput, error) {
	items, err := m.ListAIOutputs(ctx, store.ListQuery{Name: name})
	if err != nil {
		return store.AIOutput{}, err
	}
	if len(items) == 0 {
		return store.AIOutput{}, store.ErrNotFound
	}
	return items[0], nil
}
