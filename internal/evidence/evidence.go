// Package evidence is the file-storage collaborator: it accepts uploaded
// blobs and hands back stable reference strings. The engine stores the
// reference on an annotation and never interprets the blob.
package evidence

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmfab/rutero/internal/fault"
)

// Store writes evidence blobs under a single directory. References are
// relative filenames prefixed with an upload timestamp so repeated uploads of
// the same name never collide.
type Store struct {
	dir string
}

// New creates the storage directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fault.Invalid("directorio de evidencias requerido")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fault.Storage(err, "creando directorio de evidencias")
	}
	return &Store{dir: dir}, nil
}

// sanitize strips path separators and parent references from a client-chosen
// filename.
func sanitize(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "evidencia"
	}
	return name
}

// Save persists a blob and returns its reference.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	ref := fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102_150405"), sanitize(name))
	path := filepath.Join(s.dir, ref)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fault.Storage(err, "guardando evidencia %s", ref)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fault.Storage(err, "escribiendo evidencia %s", ref)
	}
	return ref, nil
}

// Open returns the blob for a previously issued reference.
func (s *Store) Open(ref string) (io.ReadCloser, error) {
	if sanitize(ref) != ref {
		return nil, fault.Invalid("referencia de evidencia inválida %q", ref)
	}
	f, err := os.Open(filepath.Join(s.dir, ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fault.NotFound("evidencia %s no encontrada", ref)
		}
		return nil, fault.Storage(err, "abriendo evidencia %s", ref)
	}
	return f, nil
}
