package ports

import (
	"context"

	"github.com/alejandrodnm/optmark/internal/domain"
)

// Notifier presenta el resultado de cada ciclo al usuario.
type Notifier interface {
	// Notify muestra la reconciliación del ciclo. En consola imprime una línea
	// compacta o una tabla.
	Notify(ctx context.Context, cycle domain.Cycle) error
}
