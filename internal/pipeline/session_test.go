package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestReturnsCurrentResult(t *testing.T) {
	var s Session

	result, ok, err := Latest(context.Background(), &s, func(context.Context) (string, error) {
		return "0xabc", nil
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xabc", result)
	assert.Equal(t, uint64(1), s.Generation())
}

func TestLatestPropagatesError(t *testing.T) {
	var s Session
	boom := errors.New("boom")

	_, ok, err := Latest(context.Background(), &s, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.True(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestLatestDiscardsSupersededResult(t *testing.T) {
	var s Session
	started := make(chan struct{})
	type outcome struct {
		result string
		ok     bool
		ctxErr error
	}
	first := make(chan outcome, 1)

	go func() {
		var ctxErr error
		result, ok, _ := Latest(context.Background(), &s, func(ctx context.Context) (string, error) {
			close(started)
			<-ctx.Done()
			ctxErr = ctx.Err()
			return "stale", nil
		})
		first <- outcome{result: result, ok: ok, ctxErr: ctxErr}
	}()

	<-started
	result, ok, err := Latest(context.Background(), &s, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fresh", result)

	stale := <-first
	assert.False(t, stale.ok)
	assert.Empty(t, stale.result)
	assert.ErrorIs(t, stale.ctxErr, context.Canceled)
	assert.Equal(t, uint64(2), s.Generation())
}

func TestGoDeliversOnlyNewest(t *testing.T) {
	var s Session
	release := make(chan struct{})
	delivered := make(chan string, 2)

	staleDone := Go(context.Background(), &s, func(context.Context) (string, error) {
		<-release
		return "first", nil
	}, func(result string, _ error) { delivered <- result })

	freshDone := Go(context.Background(), &s, func(context.Context) (string, error) {
		return "second", nil
	}, func(result string, _ error) { delivered <- result })

	<-freshDone
	close(release)
	<-staleDone
	close(delivered)

	var got []string
	for result := range delivered {
		got = append(got, result)
	}
	assert.Equal(t, []string{"second"}, got)
}

func TestGoHoldsOffNewerGenerationWhileDelivering(t *testing.T) {
	var s Session
	delivering := make(chan struct{})
	proceed := make(chan struct{})
	var delivered []string

	firstDone := Go(context.Background(), &s, func(context.Context) (string, error) {
		return "first", nil
	}, func(result string, _ error) {
		close(delivering)
		<-proceed
		delivered = append(delivered, result)
	})

	<-delivering
	begun := make(chan struct{})
	var secondDone <-chan struct{}
	go func() {
		defer close(begun)
		secondDone = Go(context.Background(), &s, func(context.Context) (string, error) {
			return "second", nil
		}, func(result string, _ error) { delivered = append(delivered, result) })
	}()

	select {
	case <-begun:
		t.Fatal("a newer generation began while a result was being delivered")
	case <-time.After(50 * time.Millisecond):
	}

	close(proceed)
	<-firstDone
	<-begun
	<-secondDone
	assert.Equal(t, []string{"first", "second"}, delivered)
	assert.Equal(t, uint64(2), s.Generation())
}
