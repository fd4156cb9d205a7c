package storage

import (
	"context"
	"io"
	"time"

	"github.com/raposo-pdv/pdv-api/internal/application/catalog"
)

// Recorder recibe la duración y el resultado de cada operación (metrics.Metrics).
type Recorder interface {
	ObserveStorage(op string, d time.Duration, err error)
}

// Instrumented decora un PhotoStorage midiendo cada llamada.
type Instrumented struct {
	inner catalog.PhotoStorage
	rec   Recorder
}

// Instrument envuelve inner; rec nil devuelve inner sin cambios.
func Instrument(inner catalog.PhotoStorage, rec Recorder) catalog.PhotoStorage {
	if rec == nil {
		return inner
	}
	return &Instrumented{inner: inner, rec: rec}
}

func (s *Instrumented) Upload(ctx context.Context, publicID string, content io.Reader, contentType string) (*catalog.StoredObject, error) {
	start := time.Now()
	obj, err := s.inner.Upload(ctx, publicID, content, contentType)
	s.rec.ObserveStorage("upload", time.Since(start), err)
	return obj, err
}

func (s *Instrumented) Rename(ctx context.Context, fromPublicID, toPublicID string) (*catalog.StoredObject, error) {
	start := time.Now()
	obj, err := s.inner.Rename(ctx, fromPublicID, toPublicID)
	s.rec.ObserveStorage("rename", time.Since(start), err)
	return obj, err
}

func (s *Instrumented) Delete(ctx context.Context, publicIDs []string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, publicIDs)
	s.rec.ObserveStorage("delete", time.Since(start), err)
	return err
}
