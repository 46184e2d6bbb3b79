package domain

import "errors"

// Errores centinela del dominio. Los adapters y el reconciler los envuelven con
// fmt.Errorf("...: %w") y los clasifican con errors.Is.
var (
	// ErrNoData indica que el venue respondió sin el dato pedido ("absent").
	ErrNoData = errors.New("no data")
	// ErrUnavailable indica que se agotaron los reintentos contra el venue.
	ErrUnavailable = errors.New("venue unavailable")
	// ErrResolution indica que no se pudo derivar IV o forward para un strike.
	ErrResolution = errors.New("resolution failed")
	// ErrInvalidModelInput indica inputs fuera del dominio de Black-76.
	ErrInvalidModelInput = errors.New("invalid model input")
	// ErrExpired indica un vencimiento ya pasado (T <= 0).
	ErrExpired = errors.New("expiry in the past")

	// Errores de configuración: abortan antes del primer ciclo.
	ErrInsufficientSamples = errors.New("insufficient curve samples")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidExpiry       = errors.New("invalid expiry code")
)

// IsConfigError devuelve true si err es un error de configuración (fatal).
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInsufficientSamples) ||
		errors.Is(err, ErrUnsupportedCurrency) ||
		errors.Is(err, ErrInvalidExpiry)
}
