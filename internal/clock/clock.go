// Package clock abstrae la hora actual para que la lógica con ventanas de tiempo
// (rate limit, partial login, expiración de sesión, TOTP) sea testeable.
package clock

import (
	"sync"
	"time"
)

// Clock entrega la hora actual.
type Clock interface {
	Now() time.Time
}

// System usa el reloj del sistema (UTC).
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Func adapta una función a Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Manual es un reloj controlado a mano. Seguro para uso concurrente.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual crea un reloj fijo en t.
func NewManual(t time.Time) *Manual {
	return &Manual{now: t.UTC()}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance mueve el reloj d hacia adelante.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Set fija el reloj en t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t.UTC()
	m.mu.Unlock()
}

// OrSystem devuelve c o, si es nil, el reloj del sistema.
func OrSystem(c Clock) Clock {
	if c == nil {
		return System{}
	}
	return c
}
