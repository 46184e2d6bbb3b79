package domain

import (
	"sort"
	"time"
)

// Record es una fila de resultado: un strike y un tipo dentro de un ciclo.
// Quoted y Computed son nil cuando el dato está ausente.
type Record struct {
	Timestamp time.Time
	Strike    float64
	Kind      OptionKind
	Quoted    *float64 // mark price del venue; nil fuera del standard grid
	Computed  *float64 // precio Black-76 normalizado; nil si falló la resolución
}

// HasBoth indica si la fila tiene ambos precios y se puede reconciliar.
func (r Record) HasBoth() bool {
	return r.Quoted != nil && r.Computed != nil
}

// Diff devuelve computed − quoted. Solo tiene sentido si HasBoth.
func (r Record) Diff() float64 {
	if !r.HasBoth() {
		return 0
	}
	return *r.Computed - *r.Quoted
}

// StrikeResult es el resultado de pricar los dos lados de un strike.
type StrikeResult struct {
	Strike float64
	Call   Leg
	Put    Leg
}

// Leg es el par (cotizado, calculado) de un lado.
type Leg struct {
	Quoted   *float64
	Computed *float64
}

// Leg devuelve el lado del tipo dado.
func (s StrikeResult) Leg(kind OptionKind) Leg {
	if kind == Put {
		return s.Put
	}
	return s.Call
}

// Cycle es el conjunto de resultados de un ciclo. Todas las filas comparten
// Timestamp y se emiten como una unidad.
type Cycle struct {
	RunID     string
	Index     int
	Currency  Currency
	Expiry    string
	Timestamp time.Time
	Records   []Record
}

// NewCycle aplana los resultados por strike en filas ordenadas por strike
// ascendente, call antes que put.
func NewCycle(runID string, index int, currency Currency, expiry string, ts time.Time, results []StrikeResult) Cycle {
	sorted := make([]StrikeResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Strike < sorted[j].Strike })

	records := make([]Record, 0, 2*len(sorted))
	for _, r := range sorted {
		for _, kind := range Kinds {
			leg := r.Leg(kind)
			records = append(records, Record{
				Timestamp: ts,
				Strike:    r.Strike,
				Kind:      kind,
				Quoted:    leg.Quoted,
				Computed:  leg.Computed,
			})
		}
	}

	return Cycle{
		RunID:     runID,
		Index:     index,
		Currency:  currency,
		Expiry:    expiry,
		Timestamp: ts,
		Records:   records,
	}
}

// Counts devuelve cuántas celdas tienen precio calculado y cuántas no.
func (c Cycle) Counts() (priced, absent int) {
	for _, r := range c.Records {
		if r.Computed != nil {
			priced++
		} else {
			absent++
		}
	}
	return
}

// PriceOf devuelve un puntero a una copia de v, para los campos opcionales.
func PriceOf(v float64) *float64 {
	return &v
}
