package session

import (
	"errors"
	"time"
)

// ErrDestroyed se devuelve al intentar rotar una sesión ya destruida.
var ErrDestroyed = errors.New("session: destroyed")

// Session es la sesión de un request: ID actual, estado mutable y lo necesario
// para que el Manager persista los cambios al final.
type Session struct {
	id    string
	State State

	isNew      bool
	destroyed  bool
	superseded []string
	newID      func() (string, error)
}

// ID devuelve el identificador actual ("" si fue destruida).
func (s *Session) ID() string { return s.id }

// IsNew reporta si la sesión se creó en este request.
func (s *Session) IsNew() bool { return s.isNew }

// Destroyed reporta si se llamó a Destroy.
func (s *Session) Destroyed() bool { return s.destroyed }

// SessionID, CSRFSecret y SetCSRFSecret exponen la sesión al deriver CSRF.
func (s *Session) SessionID() string { return s.id }
func (s *Session) CSRFSecret() string { return s.State.CSRFSecret }
func (s *Session) SetCSRFSecret(v string) { s.State.CSRFSecret = v }

// Regenerate cambia el ID conservando el estado. El ID anterior se invalida
// en el Commit.
func (s *Session) Regenerate(now time.Time) error {
	if s.destroyed {
		return ErrDestroyed
	}
	id, err := s.newID()
	if err != nil {
		return err
	}
	if s.id != "" && !s.isNew {
		s.superseded = append(s.superseded, s.id)
	}
	s.id = id
	s.State.LastRegeneration = now.Unix()
	return nil
}

// Destroy limpia todo el estado e invalida el ID. El Commit borra la sesión
// del store y le indica al cliente que descarte la cookie.
func (s *Session) Destroy() {
	if s.destroyed {
		return
	}
	if s.id != "" && !s.isNew {
		s.superseded = append(s.superseded, s.id)
	}
	s.id = ""
	s.State = State{}
	s.destroyed = true
}
