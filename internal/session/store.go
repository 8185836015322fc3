package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/efedauth/internal/cache"
	"github.com/dropDatabas3/efedauth/internal/security/secretbox"
	tokens "github.com/dropDatabas3/efedauth/internal/security/token"
)

// ErrNotFound indica que no hay sesión para ese ID (o expiró).
var ErrNotFound = errors.New("session: not found")

// Store persiste State como JSON sobre un cache.Client. Las keys son el
// sha256 del ID, así un dump del backend no expone IDs utilizables. Con una
// secretbox.Box el JSON se guarda cifrado (el estado lleva el secreto 2FA
// pendiente).
type Store struct {
	kv  cache.Client
	box *secretbox.Box
}

type StoreOption func(*Store)

// WithBox cifra el estado con b. La key del backend va como dato asociado.
func WithBox(b *secretbox.Box) StoreOption {
	return func(s *Store) { s.box = b }
}

func NewStore(kv cache.Client, opts ...StoreOption) *Store {
	s := &Store{kv: kv}
	for _, o := range opts {
		o(s)
	}
	return s
}

func key(id string) string {
	return "sess:" + tokens.SHA256Hex(id)
}

func (s *Store) Load(ctx context.Context, id string) (*State, error) {
	k := key(id)
	b, err := s.kv.Get(ctx, k)
	if cache.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	if s.box != nil {
		if b, err = s.box.Open(b, []byte(k)); err != nil {
			return nil, fmt.Errorf("session: decode: %w", err)
		}
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &st, nil
}

func (s *Store) Save(ctx context.Context, id string, st *State, ttl time.Duration) error {
	k := key(id)
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if s.box != nil {
		if b, err = s.box.Seal(b, []byte(k)); err != nil {
			return fmt.Errorf("session: encode: %w", err)
		}
	}
	if err := s.kv.Set(ctx, k, b, ttl); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, key(id)); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}
