package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/alejandrodnm/optmark/internal/domain"
)

// TimestampLayout es el formato de la columna timestamp del CSV (UTC).
const TimestampLayout = "2006-01-02 15:04:05"

// csvRow es una fila del archivo de resultados. Un precio ausente es una celda vacía.
type csvRow struct {
	Timestamp string `csv:"timestamp"`
	Strike    string `csv:"strike_price"`
	Kind      string `csv:"option_type"`
	Quoted    string `csv:"deribit_mark_price"`
	Computed  string `csv:"computed_mark_price"`
}

// CSVSink escribe cada ciclo al final de un archivo CSV. La cabecera se escribe
// solo cuando el archivo está vacío.
type CSVSink struct {
	path string
	mu   sync.Mutex
}

// NewCSVSink crea el sink. El archivo se abre en cada escritura.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Path devuelve la ruta del archivo de resultados.
func (s *CSVSink) Path() string { return s.path }

// WriteCycle añade las filas del ciclo al archivo.
func (s *CSVSink) WriteCycle(_ context.Context, cycle domain.Cycle) error {
	if len(cycle.Records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("storage.WriteCycle: open %q: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("storage.WriteCycle: stat %q: %w", s.path, err)
	}

	rows := make([]*csvRow, 0, len(cycle.Records))
	for _, r := range cycle.Records {
		rows = append(rows, toCSVRow(r))
	}

	if info.Size() == 0 {
		err = gocsv.Marshal(rows, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, f)
	}
	if err != nil {
		return fmt.Errorf("storage.WriteCycle: write %q: %w", s.path, err)
	}
	return nil
}

// ReadCSV lee un archivo de resultados y agrupa las filas por timestamp
// conservando el orden del archivo.
func ReadCSV(path string) ([]domain.Cycle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage.ReadCSV: open %q: %w", path, err)
	}
	defer f.Close()
	return readCycles(f)
}

func readCycles(r io.Reader) ([]domain.Cycle, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("storage.ReadCSV: parse: %w", err)
	}

	var cycles []domain.Cycle
	for i, row := range rows {
		rec, err := fromCSVRow(row)
		if err != nil {
			return nil, fmt.Errorf("storage.ReadCSV: row %d: %w", i+1, err)
		}
		if len(cycles) == 0 || !cycles[len(cycles)-1].Timestamp.Equal(rec.Timestamp) {
			cycles = append(cycles, domain.Cycle{Index: len(cycles), Timestamp: rec.Timestamp})
		}
		c := &cycles[len(cycles)-1]
		c.Records = append(c.Records, rec)
	}
	return cycles, nil
}

func toCSVRow(r domain.Record) *csvRow {
	return &csvRow{
		Timestamp: r.Timestamp.UTC().Format(TimestampLayout),
		Strike:    strconv.FormatFloat(r.Strike, 'f', -1, 64),
		Kind:      string(r.Kind),
		Quoted:    formatPrice(r.Quoted),
		Computed:  formatPrice(r.Computed),
	}
}

func fromCSVRow(row *csvRow) (domain.Record, error) {
	ts, err := time.ParseInLocation(TimestampLayout, row.Timestamp, time.UTC)
	if err != nil {
		return domain.Record{}, fmt.Errorf("timestamp %q: %w", row.Timestamp, err)
	}
	strike, err := strconv.ParseFloat(row.Strike, 64)
	if err != nil {
		return domain.Record{}, fmt.Errorf("strike %q: %w", row.Strike, err)
	}
	kind, err := domain.ParseOptionKind(row.Kind)
	if err != nil {
		return domain.Record{}, err
	}
	quoted, err := parsePrice(row.Quoted)
	if err != nil {
		return domain.Record{}, fmt.Errorf("deribit_mark_price: %w", err)
	}
	computed, err := parsePrice(row.Computed)
	if err != nil {
		return domain.Record{}, fmt.Errorf("computed_mark_price: %w", err)
	}
	return domain.Record{
		Timestamp: ts,
		Strike:    strike,
		Kind:      kind,
		Quoted:    quoted,
		Computed:  computed,
	}, nil
}

func formatPrice(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parsePrice(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
