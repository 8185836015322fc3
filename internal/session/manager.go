package session

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dropDatabas3/efedauth/internal/clock"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
	tokens "github.com/dropDatabas3/efedauth/internal/security/token"
)

// Options configura cookie, vida y rotación de sesiones.
type Options struct {
	CookieName  string
	Domain      string
	SameSite    string
	Secure      bool
	Lifetime    time.Duration // TTL en el store y Max-Age de la cookie
	RotateEvery time.Duration // rotación periódica del ID
	IDBytes     int
}

// DefaultOptions replica la configuración histórica: cookie efed_session,
// vida 1h, rotación cada 5 minutos.
func DefaultOptions() Options {
	return Options{
		CookieName:  "efed_session",
		SameSite:    "strict",
		Lifetime:    time.Hour,
		RotateEvery: 5 * time.Minute,
		IDBytes:     32,
	}
}

// Manager crea, carga, rota y persiste sesiones.
type Manager struct {
	store *Store
	clock clock.Clock
	rand  io.Reader
	opts  Options
}

func NewManager(store *Store, c clock.Clock, r io.Reader, opts Options) *Manager {
	def := DefaultOptions()
	if opts.CookieName == "" {
		opts.CookieName = def.CookieName
	}
	if opts.Lifetime <= 0 {
		opts.Lifetime = def.Lifetime
	}
	if opts.RotateEvery <= 0 {
		opts.RotateEvery = def.RotateEvery
	}
	if opts.IDBytes < 16 {
		opts.IDBytes = def.IDBytes
	}
	if r == nil {
		r = rand.Reader
	}
	return &Manager{store: store, clock: clock.OrSystem(c), rand: r, opts: opts}
}

func (m *Manager) Options() Options { return m.opts }

func (m *Manager) newID() (string, error) {
	return tokens.OpaqueFrom(m.rand, m.opts.IDBytes)
}

// IDFromRequest devuelve el ID de la cookie de sesión o "".
func (m *Manager) IDFromRequest(r *http.Request) string {
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// Start carga la sesión id o crea una nueva si no existe. IDs desconocidos
// nunca se adoptan: siempre se emite uno nuevo. Si pasó más de RotateEvery
// desde la última rotación, el ID se regenera.
func (m *Manager) Start(ctx context.Context, id string) (*Session, error) {
	now := m.clock.Now()
	if id != "" {
		st, err := m.store.Load(ctx, id)
		switch {
		case err == nil:
			s := &Session{id: id, State: *st, newID: m.newID}
			if now.Unix()-s.State.LastRegeneration > int64(m.opts.RotateEvery/time.Second) {
				if err := s.Regenerate(now); err != nil {
					return nil, err
				}
			}
			return s, nil
		case errors.Is(err, ErrNotFound):
		default:
			// estado corrupto o backend caído: no se reutiliza el ID
			logger.From(ctx).Warn("session load failed, starting fresh", logger.Err(err))
		}
	}

	newID, err := m.newID()
	if err != nil {
		return nil, err
	}
	return &Session{
		id:    newID,
		isNew: true,
		State: State{CreatedAt: now.Unix(), LastRegeneration: now.Unix()},
		newID: m.newID,
	}, nil
}

// Commit persiste la sesión, invalida los IDs reemplazados y escribe la cookie
// (o la cookie de borrado si la sesión fue destruida). Debe llamarse antes de
// escribir el cuerpo de la respuesta.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, s *Session) error {
	for _, old := range s.superseded {
		if err := m.store.Delete(ctx, old); err != nil {
			return err
		}
	}
	s.superseded = nil

	if s.destroyed {
		if w != nil {
			http.SetCookie(w, BuildDeletionCookie(m.opts.CookieName, m.opts.Domain, m.opts.SameSite, m.opts.Secure))
		}
		return nil
	}

	if err := m.store.Save(ctx, s.id, &s.State, m.opts.Lifetime); err != nil {
		return err
	}
	s.isNew = false
	if w != nil {
		http.SetCookie(w, BuildSessionCookie(m.opts.CookieName, s.id, m.opts.Domain, m.opts.SameSite, m.opts.Secure, m.opts.Lifetime, m.clock.Now()))
	}
	return nil
}

// Destroy destruye la sesión y la persiste de inmediato (fuera de un request HTTP).
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	s.Destroy()
	return m.Commit(ctx, nil, s)
}
