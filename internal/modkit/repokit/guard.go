package repokit

import (
	"context"
	"time"

	perr "hamfinder/internal/platform/errors"
)

const guardTimeout = 5 * time.Second

type guarder interface {
	Guard(context.Context) error
}

// Guard pings every backend st holds, bounded by a 5s deadline unless ctx has one.
// A failure is reported as unavailable
func Guard(ctx context.Context, st guarder) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, guardTimeout)
		defer cancel()
	}
	if err := st.Guard(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "dependency guard failed")
	}
	return nil
}

// MustGuard is Guard for startup paths that cannot continue without their backends
func MustGuard(ctx context.Context, st guarder) {
	if err := Guard(ctx, st); err != nil {
		panic(err)
	}
}
