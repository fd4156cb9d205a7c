package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/raposo-pdv/pdv-api/internal/application/catalog"
)

var _ catalog.PhotoStorage = (*LocalStorage)(nil)

// LocalStorage guarda las fotos bajo un directorio; el public_id es la ruta relativa.
type LocalStorage struct {
	fs      afero.Fs
	baseURL string
}

// NewLocal construye el adaptador sobre el directorio dir del disco.
func NewLocal(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	return NewLocalFs(afero.NewBasePathFs(afero.NewOsFs(), dir), baseURL), nil
}

// NewLocalFs construye el adaptador sobre cualquier afero.Fs (MemMapFs en tests).
func NewLocalFs(fsys afero.Fs, baseURL string) *LocalStorage {
	return &LocalStorage{fs: fsys, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStorage) url(publicID string) string {
	return s.baseURL + "/" + publicID
}

func cleanID(publicID string) (string, error) {
	p := path.Clean("/" + publicID)[1:]
	if p == "" || p != strings.TrimPrefix(publicID, "/") {
		return "", fmt.Errorf("public_id inválido %q", publicID)
	}
	return p, nil
}

// Upload escribe el archivo; no sobrescribe uno existente.
func (s *LocalStorage) Upload(ctx context.Context, publicID string, content io.Reader, _ string) (*catalog.StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := cleanID(publicID)
	if err != nil {
		return nil, err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("local upload %s: %w", p, err)
	}
	if exists, _ := afero.Exists(s.fs, p); exists {
		return nil, fmt.Errorf("local upload %s: %w", p, fs.ErrExist)
	}
	f, err := s.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("local upload %s: %w", p, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(p)
		return nil, fmt.Errorf("local upload %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("local upload %s: %w", p, err)
	}
	return &catalog.StoredObject{PublicID: p, URL: s.url(p)}, nil
}

// Rename mueve el archivo creando la carpeta destino.
func (s *LocalStorage) Rename(ctx context.Context, fromPublicID, toPublicID string) (*catalog.StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	from, err := cleanID(fromPublicID)
	if err != nil {
		return nil, err
	}
	to, err := cleanID(toPublicID)
	if err != nil {
		return nil, err
	}
	if _, err := s.fs.Stat(from); err != nil {
		return nil, fmt.Errorf("local rename %s: %w", from, err)
	}
	if err := s.fs.MkdirAll(path.Dir(to), 0o755); err != nil {
		return nil, fmt.Errorf("local rename %s: %w", to, err)
	}
	if err := s.fs.Rename(from, to); err != nil {
		return nil, fmt.Errorf("local rename %s -> %s: %w", from, to, err)
	}
	return &catalog.StoredObject{PublicID: to, URL: s.url(to)}, nil
}

// Delete borra los archivos; los que no existen se ignoran.
func (s *LocalStorage) Delete(_ context.Context, publicIDs []string) error {
	var errs []error
	for _, id := range publicIDs {
		p, err := cleanID(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("local delete %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}
