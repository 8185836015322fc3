package tokens

import (
	"bytes"
	"testing"
)

func TestOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(32)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := GenerateOpaqueToken(32)
	if len(a) != 43 {
		t.Fatalf("expected 43 chars for 32 bytes, got %d", len(a))
	}
	if a == b {
		t.Fatalf("tokens should differ")
	}
	if _, err := OpaqueFrom(bytes.NewReader([]byte{1, 2}), 8); err == nil {
		t.Fatalf("expected short read error")
	}
}

func TestRandomHex(t *testing.T) {
	s, err := RandomHex(bytes.NewReader([]byte{0xde, 0xad, 0xbe, 0xef}), 4)
	if err != nil || s != "deadbeef" {
		t.Fatalf("got %q, %v", s, err)
	}
	s, err = RandomHex(nil, 32)
	if err != nil || len(s) != 64 {
		t.Fatalf("got len %d, %v", len(s), err)
	}
}

func TestSHA256Helpers(t *testing.T) {
	const abc = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := SHA256Hex("abc"); got != abc {
		t.Fatalf("SHA256Hex: %s", got)
	}
	if got := SHA256Base64URL("abc"); got != "ungWv48Bz-pBQUDeXa4iI7ADYaOWF3qctBD_YfIAFa0" {
		t.Fatalf("SHA256Base64URL: %s", got)
	}
}
