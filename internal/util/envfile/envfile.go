// Package envfile actualiza claves de un archivo .env sin perder las demás.
// La escritura es atómica: tmp -> fsync -> rename.
package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Set escribe key=value en path, creando el archivo si no existe.
// Devuelve el valor anterior ("" si no había).
func Set(path, key, value string) (prev string, err error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		vars = map[string]string{}
	}
	prev = vars[key]
	vars[key] = value

	content, err := godotenv.Marshal(vars)
	if err != nil {
		return "", fmt.Errorf("marshal env: %w", err)
	}
	if err := writeAtomic(path, []byte(content+"\n"), 0o600); err != nil {
		return "", err
	}
	return prev, nil
}

// writeAtomic escribe en un temporal del mismo directorio y renombra.
// Si rename falla (Windows con destino bloqueado) intenta remove+rename.
func writeAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".env-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	_ = os.Chmod(tmpPath, perm)

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(path)
		if err2 := os.Rename(tmpPath, path); err2 != nil {
			return fmt.Errorf("rename: %v (after remove: %v)", err, err2)
		}
	}
	return nil
}
