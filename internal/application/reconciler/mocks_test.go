package reconciler_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alejandrodnm/optmark/internal/domain"
)

// mockMarket implementa ports.MarketData en memoria y cuenta las llamadas.
type mockMarket struct {
	mu sync.Mutex

	grids    []domain.QuoteGrid // una por llamada; la última se repite
	gridErrs map[int]error      // error por número de llamada (0 = init)
	index    float64
	indexErr error
	prices   map[string]float64
	futures  []string

	gridDelay time.Duration // simula un venue lento

	gridCalls  int
	indexCalls int
	listCalls  int
	priceCalls map[string]int
}

func newMockMarket(grid domain.QuoteGrid) *mockMarket {
	return &mockMarket{
		grids:      []domain.QuoteGrid{grid},
		gridErrs:   make(map[int]error),
		prices:     make(map[string]float64),
		priceCalls: make(map[string]int),
	}
}

func (m *mockMarket) FetchQuoteGrid(_ context.Context, _ domain.Currency, _ domain.Expiry) (domain.QuoteGrid, error) {
	time.Sleep(m.gridDelay)
	m.mu.Lock()
	defer m.mu.Unlock()
	call := m.gridCalls
	m.gridCalls++
	if err, ok := m.gridErrs[call]; ok {
		return domain.QuoteGrid{}, err
	}
	return m.grids[min(call, len(m.grids)-1)], nil
}

func (m *mockMarket) FetchIndexPrice(_ context.Context, _ domain.Currency) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexCalls++
	return m.index, m.indexErr
}

func (m *mockMarket) FetchInstrumentPrice(_ context.Context, name string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priceCalls[name]++
	p, ok := m.prices[name]
	if !ok {
		return 0, fmt.Errorf("mock %s: %w", name, domain.ErrNoData)
	}
	return p, nil
}

func (m *mockMarket) ListFutures(_ context.Context, _ domain.Currency) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	return m.futures, nil
}

func (m *mockMarket) calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.priceCalls[name]
}

// recordingSink guarda los ciclos emitidos.
type recordingSink struct {
	cycles []domain.Cycle
	err    error
}

func (s *recordingSink) WriteCycle(_ context.Context, c domain.Cycle) error {
	if s.err != nil {
		return s.err
	}
	s.cycles = append(s.cycles, c)
	return nil
}

// recordingNotifier cuenta notificaciones.
type recordingNotifier struct {
	notified int
}

func (n *recordingNotifier) Notify(_ context.Context, _ domain.Cycle) error {
	n.notified++
	return nil
}

// waitRecorder sustituye al temporizador del loop: anota cada espera pedida y
// dispara en el acto.
type waitRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *waitRecorder) after(d time.Duration) <-chan time.Time {
	w.mu.Lock()
	w.waits = append(w.waits, d)
	w.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}
