package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/optmark/internal/domain"
	"github.com/alejandrodnm/optmark/internal/ports"
)

// Reconciler es el loop periódico: snapshot del venue, repricing de cada strike
// con Black-76 y emisión del ciclo a los sinks.
type Reconciler struct {
	cfg      Config
	market   ports.MarketData
	sink     ports.ResultSink
	storage  ports.Storage
	notifier ports.Notifier
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time

	// fijados en init
	runID       string
	ready       bool
	onGrid      map[float64]bool
	interpolate bool
	forward     *ForwardResolver
}

// New crea un Reconciler. storage y notifier pueden ser nil.
func New(
	cfg Config,
	market ports.MarketData,
	sink ports.ResultSink,
	storage ports.Storage,
	notifier ports.Notifier,
) *Reconciler {
	return &Reconciler{
		cfg:      cfg,
		market:   market,
		sink:     sink,
		storage:  storage,
		notifier: notifier,
		now:      time.Now,
		after:    time.After,
	}
}

// SetClock reemplaza el reloj usado para timestamps y tiempo a vencimiento.
func (r *Reconciler) SetClock(now func() time.Time) {
	r.now = now
}

// RunID devuelve el identificador del run. Vacío hasta la inicialización.
func (r *Reconciler) RunID() string {
	return r.runID
}

// Run inicializa y ejecuta Iterations() ciclos. Devuelve nil si el contexto se
// cancela; un error de init o del sink de resultados aborta el run.
func (r *Reconciler) Run(ctx context.Context) error {
	if err := r.init(ctx); err != nil {
		return err
	}

	n := r.cfg.Iterations()
	slog.Info("reconciler starting",
		"run_id", r.runID,
		"currency", r.cfg.Currency,
		"expiry", r.cfg.Expiry.Code,
		"strikes", len(r.cfg.Strikes),
		"interval", r.cfg.Interval,
		"iterations", n,
		"interpolate", r.interpolate,
	)

	if r.storage != nil {
		run := domain.Run{
			ID:         r.runID,
			Currency:   r.cfg.Currency,
			Expiry:     r.cfg.Expiry,
			Strikes:    r.cfg.Strikes,
			Interval:   r.cfg.Interval,
			Iterations: n,
			StartedAt:  r.now().UTC(),
		}
		if err := r.storage.StartRun(ctx, run); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			slog.Info("reconciler stopped", "cycles", i)
			return nil
		}

		start := time.Now()
		cycle := r.cycle(ctx, i)
		if err := r.emit(ctx, cycle); err != nil {
			return err
		}

		elapsed := time.Since(start)
		priced, absent := cycle.Counts()
		slog.Info("cycle complete",
			"cycle", i+1,
			"of", n,
			"priced", priced,
			"absent", absent,
			"duration", elapsed.Round(time.Millisecond),
		)

		// también tras el último ciclo: el run dura Iterations()·Interval
		wait := max(0, r.cfg.Interval-elapsed)
		select {
		case <-ctx.Done():
			slog.Info("reconciler stopped", "cycles", i+1)
			return nil
		case <-r.after(wait):
		}
	}

	slog.Info("reconciler done", "run_id", r.runID, "cycles", n)
	return nil
}

// RunOnce inicializa si hace falta y ejecuta un único ciclo sin emitirlo.
func (r *Reconciler) RunOnce(ctx context.Context) (domain.Cycle, error) {
	if err := r.init(ctx); err != nil {
		return domain.Cycle{}, err
	}
	return r.cycle(ctx, 0), nil
}

// init obtiene el standard grid y la curva de futuros una sola vez por run.
// Si hay strikes fuera del grid y el grid inicial no permite construir la curva
// de IV el run no arranca.
func (r *Reconciler) init(ctx context.Context) error {
	if r.ready {
		return nil
	}

	grid, err := r.market.FetchQuoteGrid(ctx, r.cfg.Currency, r.cfg.Expiry)
	if err != nil {
		return fmt.Errorf("reconciler.init: standard grid: %w", err)
	}

	r.onGrid = make(map[float64]bool)
	for _, k := range grid.Strikes() {
		r.onGrid[k] = true
	}
	r.interpolate = false
	for _, k := range r.cfg.Strikes {
		if !r.onGrid[k] {
			r.interpolate = true
			break
		}
	}

	if r.interpolate {
		for _, kind := range domain.Kinds {
			if _, err := domain.BuildIVCurve(grid.Side(kind)); err != nil {
				return fmt.Errorf("reconciler.init: %s curve from %d quotes: %w", kind, len(grid.Side(kind)), err)
			}
		}
	}

	var curve domain.FuturesCurve
	if r.cfg.Currency.UsesDatedFutures() {
		names, err := r.market.ListFutures(ctx, r.cfg.Currency)
		if err != nil {
			return fmt.Errorf("reconciler.init: list futures: %w", err)
		}
		var skipped []string
		curve, skipped = domain.NewFuturesCurve(names)
		if len(skipped) > 0 {
			slog.Warn("unparseable futures skipped", "names", skipped)
		}
		slog.Debug("futures curve loaded", "currency", r.cfg.Currency, "futures", curve.Len())
	}
	r.forward = NewForwardResolver(r.market, r.cfg.Currency, curve)

	r.runID = uuid.NewString()
	r.ready = true
	return nil
}

// cycle toma un snapshot nuevo, reconstruye las curvas y prica todos los
// strikes. Nunca falla: lo que no se puede resolver queda ausente.
func (r *Reconciler) cycle(ctx context.Context, index int) domain.Cycle {
	// segundos enteros: es la resolución de la columna timestamp del CSV
	ts := r.now().UTC().Truncate(time.Second)
	snap := r.takeSnapshot(ctx, ts)
	results := priceStrikesConcurrent(ctx, snap, r.cfg.Strikes)
	return domain.NewCycle(r.runID, index, r.cfg.Currency, r.cfg.Expiry.Code, ts, results)
}

func (r *Reconciler) takeSnapshot(ctx context.Context, ts time.Time) *snapshot {
	snap := &snapshot{
		currency: r.cfg.Currency,
		expiry:   r.cfg.Expiry,
		onGrid:   r.onGrid,
		curves:   make(map[domain.OptionKind]*domain.IVCurve, len(domain.Kinds)),
	}

	grid, err := r.market.FetchQuoteGrid(ctx, r.cfg.Currency, r.cfg.Expiry)
	if err != nil {
		slog.Warn("snapshot unavailable", "err", err)
		snap.gridErr = err
		grid = domain.NewQuoteGrid()
	}
	snap.grid = grid

	if r.interpolate && snap.gridErr == nil {
		for _, kind := range domain.Kinds {
			c, err := domain.BuildIVCurve(grid.Side(kind))
			if err != nil {
				slog.Warn("iv curve unavailable", "kind", kind, "err", err)
				continue
			}
			snap.curves[kind] = c
			lo, hi := c.Range()
			for _, k := range r.cfg.Strikes {
				if !r.onGrid[k] && (k < lo || k > hi) {
					slog.Debug("extrapolating iv", "kind", kind, "strike", k, "lo", lo, "hi", hi)
				}
			}
		}
	}

	if r.cfg.Currency.IsInverse() {
		idx, err := r.market.FetchIndexPrice(ctx, r.cfg.Currency)
		if err != nil {
			slog.Warn("index price unavailable", "currency", r.cfg.Currency, "err", err)
		} else {
			snap.index = &idx
		}
	}

	snap.years, snap.yearsErr = r.cfg.Expiry.YearsUntil(ts)
	snap.forward = sync.OnceValues(func() (float64, error) {
		return r.forward.Resolve(ctx, r.cfg.Expiry)
	})
	return snap
}

// emit escribe el ciclo como una unidad. Solo el sink de resultados es fatal.
func (r *Reconciler) emit(ctx context.Context, cycle domain.Cycle) error {
	if err := r.sink.WriteCycle(ctx, cycle); err != nil {
		return fmt.Errorf("reconciler.emit: cycle %d: %w", cycle.Index, err)
	}

	if r.storage != nil {
		if err := r.storage.WriteCycle(ctx, cycle); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	if r.notifier != nil {
		if err := r.notifier.Notify(ctx, cycle); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	return nil
}
