package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/optmark/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el ciclo en el modo configurado.
func (c *Console) Notify(_ context.Context, cycle domain.Cycle) error {
	if len(cycle.Records) == 0 {
		fmt.Fprintf(c.out, "[%s] cycle %d: no records\n", cycle.Timestamp.Format("15:04:05"), cycle.Index+1)
		return nil
	}

	if c.table {
		return c.printFull(cycle)
	}
	c.printCompact(cycle)
	return nil
}

// ErrorSummary resume el error de reconciliación |computed − quoted| de las
// celdas que tienen ambos precios.
type ErrorSummary struct {
	Compared int
	Mean     float64
	Median   float64
	Max      float64
}

// Summarize calcula el ErrorSummary del ciclo. Sin celdas comparables devuelve
// Compared = 0.
func Summarize(cycle domain.Cycle) ErrorSummary {
	diffs := make(stats.Float64Data, 0, len(cycle.Records))
	for _, r := range cycle.Records {
		if r.HasBoth() {
			diffs = append(diffs, math.Abs(r.Diff()))
		}
	}
	if len(diffs) == 0 {
		return ErrorSummary{}
	}

	s := ErrorSummary{Compared: len(diffs)}
	s.Mean, _ = diffs.Mean()
	s.Median, _ = diffs.Median()
	s.Max, _ = diffs.Max()
	return s
}

// printCompact imprime una línea por ciclo.
func (c *Console) printCompact(cycle domain.Cycle) {
	priced, absent := cycle.Counts()
	sum := Summarize(cycle)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s %s #%d priced:%d absent:%d",
		cycle.Timestamp.Format("15:04:05"), cycle.Currency, cycle.Expiry,
		cycle.Index+1, priced, absent)
	if sum.Compared > 0 {
		fmt.Fprintf(&sb, " | mean|Δ| %.4f max|Δ| %.4f (n=%d)", sum.Mean, sum.Max, sum.Compared)
	}
	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla strike × tipo con el resumen al pie.
func (c *Console) printFull(cycle domain.Cycle) error {
	priced, absent := cycle.Counts()
	fmt.Fprintf(c.out, "\n[%s] %s %s cycle %d: %d priced, %d absent\n",
		cycle.Timestamp.Format("15:04:05"), cycle.Currency, cycle.Expiry,
		cycle.Index+1, priced, absent)

	table := tablewriter.NewWriter(c.out)
	table.Header("Strike", "Type", "Deribit", "Computed", "Diff", "Diff %")

	for _, r := range cycle.Records {
		diff, pct := "-", "-"
		if r.HasBoth() {
			diff = fmt.Sprintf("%+.4f", r.Diff())
			if *r.Quoted != 0 {
				pct = fmt.Sprintf("%+.2f%%", 100*r.Diff()/(*r.Quoted))
			}
		}
		table.Append(
			formatStrike(r.Strike),
			string(r.Kind),
			formatPrice(r.Quoted),
			formatPrice(r.Computed),
			diff,
			pct,
		)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("notify.Notify: render table: %w", err)
	}

	if sum := Summarize(cycle); sum.Compared > 0 {
		fmt.Fprintf(c.out, "  |Δ| mean %.4f  median %.4f  max %.4f  over %d cells\n",
			sum.Mean, sum.Median, sum.Max, sum.Compared)
	}
	return nil
}

func formatStrike(k float64) string {
	if k == math.Trunc(k) {
		return fmt.Sprintf("%.0f", k)
	}
	return fmt.Sprintf("%g", k)
}

func formatPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}
