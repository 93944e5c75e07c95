// internal/testutil/helpers.go
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// WriteFile escribe data en dir/name y retorna la ruta.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteTemp escribe data en un directorio temporal propio del test.
func WriteTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	return WriteFile(t, t.TempDir(), name, data)
}

// Lines une lines con saltos de línea, con salto final.
func Lines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// GBK codifica s en GBK.
func GBK(t *testing.T, s string) []byte {
	t.Helper()
	out, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode GBK: %v", err)
	}
	return out
}

// Isolate ejecuta el test en un directorio temporal vacío y retira las
// variables URLSIFT_* del entorno. Retorna el directorio.
func Isolate(t *testing.T) string {
	t.Helper()
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, "URLSIFT_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}
