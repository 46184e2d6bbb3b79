package reconciler

import "time"

// SetAfter reemplaza el temporizador de la espera entre ciclos.
func (r *Reconciler) SetAfter(after func(time.Duration) <-chan time.Time) {
	r.after = after
}
