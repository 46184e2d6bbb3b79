package ports

import (
	"context"

	"github.com/alejandrodnm/optmark/internal/domain"
)

// ResultSink recibe cada ciclo completo, una vez por ciclo y desde una sola
// goroutine. Append-only.
type ResultSink interface {
	WriteCycle(ctx context.Context, cycle domain.Cycle) error
}

// Storage persiste el histórico de runs y ciclos.
type Storage interface {
	ResultSink

	// StartRun registra los parámetros de un run antes del primer ciclo.
	StartRun(ctx context.Context, run domain.Run) error

	// GetCycles devuelve los ciclos de un run en orden de índice.
	GetCycles(ctx context.Context, runID string) ([]domain.Cycle, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
