// Package secretbox cifra blobs con AES-256-GCM. La clave de cada uso se deriva
// de la clave maestra (APP_KEY) con HKDF-SHA256, así un mismo APP_KEY no se
// reutiliza entre CSRF y cifrado.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	KeySize   = 32 // AES-256
	nonceSize = 12 // nonce GCM estándar (96 bits)
)

// ErrOpen cubre blob truncado, clave incorrecta o datos adulterados.
var ErrOpen = errors.New("secretbox: cannot open")

// Box sella y abre blobs. Formato: nonce ++ ciphertext ++ tag.
type Box struct {
	aead cipher.AEAD
	rand io.Reader
}

// New crea una Box con una clave cruda de KeySize bytes. r nil usa crypto/rand.
func New(key []byte, r io.Reader) (*Box, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("secretbox: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secretbox: aes: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretbox: gcm: %w", err)
	}
	if r == nil {
		r = rand.Reader
	}
	return &Box{aead: aead, rand: r}, nil
}

// Derive crea una Box con una subclave de master para el uso info
// (p.ej. "efedauth/session").
func Derive(master []byte, info string, r io.Reader) (*Box, error) {
	if len(master) == 0 {
		return nil, errors.New("secretbox: empty master key")
	}
	k := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(info)), k); err != nil {
		return nil, fmt.Errorf("secretbox: derive: %w", err)
	}
	return New(k, r)
}

// Seal cifra plain. ad queda autenticado pero no cifrado: Open debe recibir el mismo.
func (b *Box) Seal(plain, ad []byte) ([]byte, error) {
	out := make([]byte, nonceSize, nonceSize+len(plain)+b.aead.Overhead())
	if _, err := io.ReadFull(b.rand, out); err != nil {
		return nil, fmt.Errorf("secretbox: nonce: %w", err)
	}
	return b.aead.Seal(out, out[:nonceSize], plain, ad), nil
}

func (b *Box) Open(sealed, ad []byte) ([]byte, error) {
	if len(sealed) < nonceSize+b.aead.Overhead() {
		return nil, ErrOpen
	}
	pt, err := b.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], ad)
	if err != nil {
		return nil, ErrOpen
	}
	return pt, nil
}
