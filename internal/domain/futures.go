package domain

import (
	"fmt"
	"sort"
)

// FutureListing es un futuro fechado listado en el venue.
type FutureListing struct {
	Name   string
	Expiry Expiry
}

// FuturesCurve es la lista de futuros fechados de un subyacente ordenada por
// vencimiento. Se obtiene una vez por run: los listados cambian mucho más despacio
// que las cotizaciones.
type FuturesCurve struct {
	listings []FutureListing
}

// NewFuturesCurve parsea los nombres, descarta perpetuos y ordena por fecha.
// Los nombres que no parsean se devuelven en skipped para que el caller los loguee.
func NewFuturesCurve(names []string) (curve FuturesCurve, skipped []string) {
	listings := make([]FutureListing, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if IsPerpetual(name) || seen[name] {
			continue
		}
		e, err := ExpiryFromFutureName(name)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		seen[name] = true
		listings = append(listings, FutureListing{Name: name, Expiry: e})
	}
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].Expiry.Date.Before(listings[j].Expiry.Date)
	})
	return FuturesCurve{listings: listings}, skipped
}

// Len devuelve el número de futuros fechados.
func (c FuturesCurve) Len() int { return len(c.listings) }

// Has indica si el futuro con ese nombre está listado.
func (c FuturesCurve) Has(name string) bool {
	for _, l := range c.listings {
		if l.Name == name {
			return true
		}
	}
	return false
}

// Bracket elige los dos futuros con los que sintetizar el forward de target:
//   - target antes del primero: los dos primeros (extrapolación corta)
//   - target después del último: los dos últimos (extrapolación larga)
//   - en otro caso: prev.Date <= target.Date <= next.Date
func (c FuturesCurve) Bracket(target Expiry) (prev, next FutureListing, err error) {
	n := len(c.listings)
	if n < 2 {
		return prev, next, fmt.Errorf("domain.Bracket %s: %d dated futures listed, need 2: %w",
			target.Code, n, ErrResolution)
	}

	switch {
	case target.Date.Before(c.listings[0].Expiry.Date):
		prev, next = c.listings[0], c.listings[1]
	case target.Date.After(c.listings[n-1].Expiry.Date):
		prev, next = c.listings[n-2], c.listings[n-1]
	default:
		// primer futuro con fecha > target; su anterior tiene fecha <= target
		i := sort.Search(n, func(i int) bool {
			return c.listings[i].Expiry.Date.After(target.Date)
		})
		if i == n {
			i = n - 1
		}
		if i == 0 {
			i = 1
		}
		prev, next = c.listings[i-1], c.listings[i]
	}

	if DaysBetween(prev.Expiry, next.Expiry) == 0 {
		return prev, next, fmt.Errorf("domain.Bracket %s: %s and %s share expiry date: %w",
			target.Code, prev.Name, next.Name, ErrResolution)
	}
	return prev, next, nil
}

// BlendForward interpola (o extrapola) linealmente por días de calendario:
//
//	price = prev + days(target−prev)/days(next−prev) · (next − prev)
func BlendForward(target Expiry, prev, next FutureListing, prevPrice, nextPrice float64) (float64, error) {
	span := DaysBetween(prev.Expiry, next.Expiry)
	if span == 0 {
		return 0, fmt.Errorf("domain.BlendForward: zero-day bracket %s/%s: %w", prev.Name, next.Name, ErrResolution)
	}
	w := float64(DaysBetween(prev.Expiry, target)) / float64(span)
	return prevPrice + w*(nextPrice-prevPrice), nil
}
