package errgroup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LerianStudio/ledger-sdk-golang/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_AllSucceed(t *testing.T) {
	grp, _ := WithContext(context.Background())

	var completed atomic.Int32

	for i := 0; i < 5; i++ {
		grp.Go(func() error {
			completed.Add(1)
			return nil
		})
	}

	require.NoError(t, grp.Wait())
	assert.Equal(t, int32(5), completed.Load())
}

func TestGroup_FirstErrorWinsAndCancels(t *testing.T) {
	grp, ctx := WithContext(context.Background())

	errFirst := errors.New("first failure")

	grp.Go(func() error {
		return errFirst
	})

	grp.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("context was not cancelled")
		}
	})

	assert.ErrorIs(t, grp.Wait(), errFirst)
}

func TestGroup_PanicRecovered(t *testing.T) {
	grp, _ := WithContext(context.Background())
	grp.SetLogger(&log.NoneLogger{})

	grp.Go(func() error {
		panic("worker exploded")
	})

	err := grp.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPanicRecovered)
	assert.Contains(t, err.Error(), "worker exploded")
}

func TestGroup_WaitCancelsContext(t *testing.T) {
	grp, ctx := WithContext(context.Background())

	grp.Go(func() error { return nil })

	require.NoError(t, grp.Wait())

	select {
	case <-ctx.Done():
	default:
		t.Fatal("group context should be cancelled after Wait")
	}
}
