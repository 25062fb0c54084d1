package errgroup

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/LerianStudio/ledger-sdk-golang/log"
)

// ErrPanicRecovered is returned when a goroutine in the group panics.
var ErrPanicRecovered = errors.New("errgroup: panic recovered")

// Group manages a set of goroutines that share a cancellation context.
// The first error returned by any goroutine cancels the group's context
// and is returned by Wait. Subsequent errors are discarded.
type Group struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
	logger  log.Logger
}

// WithContext returns a new Group and a derived context.Context.
// The derived context is canceled when the first goroutine in the Group
// returns a non-nil error or when Wait returns, whichever occurs first.
func WithContext(ctx context.Context) (*Group, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{ctx: ctx, cancel: cancel}, ctx
}

// SetLogger sets an optional logger for panic recovery observability.
func (grp *Group) SetLogger(logger log.Logger) {
	if grp == nil {
		return
	}

	grp.logger = logger
}

// Go starts a new goroutine in the Group. The first non-nil error returned
// by a goroutine is recorded and triggers cancellation of the group context.
func (grp *Group) Go(fn func() error) {
	grp.wg.Add(1)

	go func() {
		defer grp.wg.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				if grp.logger != nil {
					grp.logger.Errorf("errgroup: recovered panic in group.Go: %v", recovered)
				}

				grp.record(fmt.Errorf("%w: %v", ErrPanicRecovered, recovered))
			}
		}()

		if err := fn(); err != nil {
			grp.record(err)
		}
	}()
}

// Wait blocks until all goroutines in the Group have completed.
// It cancels the group context after all goroutines finish and returns
// the first non-nil error (if any) recorded by Go.
func (grp *Group) Wait() error {
	grp.wg.Wait()

	if grp.cancel != nil {
		grp.cancel()
	}

	return grp.err
}

func (grp *Group) record(err error) {
	grp.errOnce.Do(func() {
		grp.err = err
		if grp.cancel != nil {
			grp.cancel()
		}
	})
}
