package password

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// parámetros livianos para que los tests corran rápido
var fast = Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHasher_Argon2idRoundTrip(t *testing.T) {
	h := &Hasher{Algorithm: Argon2id, Argon: fast}
	enc, err := h.Hash("correct horse")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(enc, "$argon2id$v=19$m=1024,t=1,p=1$"), enc)

	require.True(t, h.Verify("correct horse", enc))
	require.False(t, h.Verify("Correct horse", enc))
	require.False(t, h.NeedsRehash(enc))

	other, err := h.Hash("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, enc, other, "salt must differ")
}

func TestHasher_BcryptFallback(t *testing.T) {
	h := &Hasher{Algorithm: Bcrypt, BcryptCost: bcrypt.MinCost}
	enc, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(enc, "$2a$"))
	require.True(t, h.Verify("s3cret-pass", enc))
	require.False(t, h.Verify("nope", enc))
	require.False(t, h.NeedsRehash(enc))

	// un hasher argon2id sigue verificando bcrypt pero pide rehash
	a := &Hasher{Algorithm: Argon2id, Argon: fast}
	require.True(t, a.Verify("s3cret-pass", enc))
	require.True(t, a.NeedsRehash(enc))
}

func TestHasher_NeedsRehashOnParamChange(t *testing.T) {
	old := &Hasher{Algorithm: Argon2id, Argon: fast}
	enc, err := old.Hash("password123")
	require.NoError(t, err)

	stronger := fast
	stronger.Time = 2
	cur := &Hasher{Algorithm: Argon2id, Argon: stronger}
	require.True(t, cur.NeedsRehash(enc))
	require.True(t, cur.Verify("password123", enc), "old params still verify")

	b := &Hasher{Algorithm: Bcrypt, BcryptCost: bcrypt.MinCost}
	require.True(t, b.NeedsRehash(enc))

	b2 := &Hasher{Algorithm: Bcrypt, BcryptCost: bcrypt.MinCost + 1}
	benc, err := b.Hash("password123")
	require.NoError(t, err)
	require.True(t, b2.NeedsRehash(benc))
}

func TestHasher_RejectsGarbage(t *testing.T) {
	h := &Hasher{Algorithm: Argon2id, Argon: fast}
	for _, enc := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdHNhbHQ$ZGs",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHQ$ZGs",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$ZGs",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$ZGs",
	} {
		require.False(t, h.Verify("x", enc), enc)
		require.True(t, h.NeedsRehash(enc), enc)
	}

	_, err := h.Hash("")
	require.ErrorIs(t, err, ErrEmpty)
}

func TestNewHasher_Defaults(t *testing.T) {
	h := NewHasher()
	require.Equal(t, Argon2id, h.Algorithm)
	require.Equal(t, Params{Memory: 65536, Time: 4, Parallelism: 3, KeyLen: 32}, h.Argon)
	require.Equal(t, 12, h.BcryptCost)
}

func TestPolicy(t *testing.T) {
	ok, reasons := DefaultPolicy.Validate("short")
	require.False(t, ok)
	require.Equal(t, []string{"too_short"}, reasons)

	ok, _ = DefaultPolicy.Validate("eightchr")
	require.True(t, ok)

	strict := Policy{MinLength: 4, RequireUpper: true, RequireDigit: true, RequireSymbol: true}
	ok, reasons = strict.Validate("abcd")
	require.False(t, ok)
	require.Equal(t, []string{"missing_upper", "missing_digit", "missing_symbol"}, reasons)

	ok, reasons = DefaultPolicy.Validate(strings.Repeat("a", 129))
	require.False(t, ok)
	require.Equal(t, []string{"too_long"}, reasons)
}

func TestBlacklist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "common.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nPassword1\n\n  qwerty123 \n"), 0o600))

	bl, err := LoadBlacklist(path)
	require.NoError(t, err)
	require.Equal(t, 2, bl.Len())
	require.True(t, bl.Contains("password1"))
	require.True(t, bl.Contains(" QWERTY123"))
	require.False(t, bl.Contains("comment"))

	empty, err := LoadBlacklist("")
	require.NoError(t, err)
	require.False(t, empty.Contains("anything"))

	var nilBL *Blacklist
	require.False(t, nilBL.Contains("x"))
	require.True(t, NewBlacklist("Letmein1").Contains("letmein1"))
}
