package history

import (
	"context"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
)

// Store records snapshots and looks them up by id.
type Store interface {
	Push(ctx context.Context, snap models.Snapshot) error
	Replace(ctx context.Context, snap models.Snapshot) error
	Get(ctx context.Context, id string) (models.Snapshot, error)
}

// AppendOnly wraps s so Replace pushes instead of overwriting. Use it when
// several sessions, or several runs, share one store: each session's
// Replace would otherwise clobber an entry another one recorded.
func AppendOnly(s Store) Store {
	return appendOnly{s}
}

type appendOnly struct {
	Store
}

func (a appendOnly) Replace(ctx context.Context, snap models.Snapshot) error {
	return a.Push(ctx, snap)
}
