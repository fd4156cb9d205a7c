package catalog

import (
	"context"

	"github.com/rs/zerolog"
)

type move struct {
	from, to string
}

// photoJournal registra los efectos en el storage hechos dentro de una transacción
// para deshacerlos si la transacción no llega a commit.
type photoJournal struct {
	storage  PhotoStorage
	log      zerolog.Logger
	uploaded []string
	moves    []move
}

func newPhotoJournal(storage PhotoStorage, log zerolog.Logger) *photoJournal {
	return &photoJournal{storage: storage, log: log}
}

func (j *photoJournal) upload(publicID string) { j.uploaded = append(j.uploaded, publicID) }

func (j *photoJournal) moved(from, to string) { j.moves = append(j.moves, move{from: from, to: to}) }

// undo revierte en orden inverso. Los fallos se registran y no se propagan: el error
// original de la transacción es el que ve el cliente.
func (j *photoJournal) undo(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := len(j.moves) - 1; i >= 0; i-- {
		m := j.moves[i]
		if _, err := j.storage.Rename(ctx, m.to, m.from); err != nil {
			j.log.Error().Err(err).Str("from", m.to).Str("to", m.from).Msg("no se pudo revertir el movimiento de la foto")
		}
	}
	if len(j.uploaded) > 0 {
		if err := j.storage.Delete(ctx, j.uploaded); err != nil {
			j.log.Error().Err(err).Strs("public_ids", j.uploaded).Msg("no se pudieron borrar las fotos subidas")
		}
	}
	j.moves, j.uploaded = nil, nil
}
