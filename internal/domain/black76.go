package domain

import (
	"fmt"
	"math"
)

// Black76 prica una opción europea sobre el forward F con el modelo de Black sin
// descuento (tipo de interés cero):
//
//	d1 = (ln(F/K) + σ²T/2) / (σ√T),  d2 = d1 − σ√T
//	call = F·Φ(d1) − K·Φ(d2)
//	put  = K·Φ(−d2) − F·Φ(−d1)
//
// T en años y σ como fracción decimal. Inputs no finitos o no positivos devuelven
// ErrInvalidModelInput y el caller registra la celda como ausente.
func Black76(kind OptionKind, forward, strike, years, vol float64) (float64, error) {
	if err := validateModelInputs(forward, strike, years, vol); err != nil {
		return 0, err
	}

	sqrtT := math.Sqrt(years)
	d1 := (math.Log(forward/strike) + 0.5*vol*vol*years) / (vol * sqrtT)
	d2 := d1 - vol*sqrtT

	var price float64
	switch kind {
	case Call:
		price = forward*normCDF(d1) - strike*normCDF(d2)
	case Put:
		price = strike*normCDF(-d2) - forward*normCDF(-d1)
	default:
		return 0, fmt.Errorf("domain.Black76: kind %q: %w", kind, ErrInvalidModelInput)
	}

	if !isFinite(price) {
		return 0, fmt.Errorf("domain.Black76: non-finite price (F=%g K=%g T=%g σ=%g): %w",
			forward, strike, years, vol, ErrInvalidModelInput)
	}
	// Φ con precisión finita puede dejar residuos negativos del orden de 1e-12
	return math.Max(price, 0), nil
}

func validateModelInputs(forward, strike, years, vol float64) error {
	for _, in := range [...]struct {
		name string
		v    float64
	}{
		{"forward", forward},
		{"strike", strike},
		{"time", years},
		{"vol", vol},
	} {
		if !isFinite(in.v) || in.v <= 0 {
			return fmt.Errorf("domain.Black76: %s=%g: %w", in.name, in.v, ErrInvalidModelInput)
		}
	}
	return nil
}

// normCDF es la función de distribución normal estándar Φ.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
