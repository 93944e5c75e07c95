// internal/adapters/extstore/extstore.go
package extstore

import (
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"urlsift/internal/core/ports"
	"urlsift/internal/platform/errors"
	"urlsift/internal/platform/textio"
	"urlsift/internal/platform/urlfilter"
)

// fileVersion versión del formato en disco.
const fileVersion = 1

// document es el contenido del archivo YAML.
type document struct {
	Version    int       `yaml:"version"`
	UpdatedAt  time.Time `yaml:"updated_at,omitempty"`
	Extensions []string  `yaml:"extensions"`
}

// YAMLStore persiste el conjunto de extensiones en un archivo YAML.
// Con path vacío no persiste nada: Load nunca encuentra datos y Save no hace nada.
type YAMLStore struct {
	path string
	now  func() time.Time
}

// New crea un store sobre path.
func New(path string) *YAMLStore {
	return &YAMLStore{path: strings.TrimSpace(path), now: time.Now}
}

// Path retorna la ruta del archivo ("" si la persistencia está desactivada).
func (s *YAMLStore) Path() string {
	return s.path
}

// Load lee el archivo. found es false si el archivo no existe.
func (s *YAMLStore) Load() ([]string, bool, error) {
	if s.path == "" {
		return nil, false, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "read extension store %s", s.path)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false, errors.Wrapf(errors.ErrInvalidConfig, "extension store %s: %v", s.path, err)
	}
	if doc.Version > fileVersion {
		return nil, false, errors.Wrapf(errors.ErrInvalidConfig,
			"extension store %s: unsupported version %d", s.path, doc.Version)
	}

	// Un archivo vacío o editado a mano puede traer entradas sin normalizar.
	exts := make([]string, 0, len(doc.Extensions))
	seen := make(map[string]struct{}, len(doc.Extensions))
	for _, raw := range doc.Extensions {
		ext, ok := urlfilter.NormalizeExtension(raw)
		if !ok {
			continue
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	return exts, true, nil
}

// Save reemplaza el archivo de forma atómica.
func (s *YAMLStore) Save(exts []string) error {
	if s.path == "" {
		return nil
	}

	doc := document{
		Version:    fileVersion,
		UpdatedAt:  s.now().UTC().Truncate(time.Second),
		Extensions: exts,
	}
	if doc.Extensions == nil {
		doc.Extensions = []string{}
	}

	err := textio.WriteAtomic(s.path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return errors.Wrapf(err, "save extension store %s", s.path)
	}
	return nil
}

var _ ports.ExtensionStore = (*YAMLStore)(nil)
