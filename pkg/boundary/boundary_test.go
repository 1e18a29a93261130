package boundary_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/buildsync/pkg/boundary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopOwner runs every request on a single goroutine.
type loopOwner struct {
	reqs chan func()
	wg   sync.WaitGroup
}

func newLoopOwner() *loopOwner {
	o := &loopOwner{reqs: make(chan func())}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for fn := range o.reqs {
			fn()
		}
	}()
	return o
}

func (o *loopOwner) Do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	select {
	case o.reqs <- func() { done <- fn() }:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-done
}

func (o *loopOwner) close() {
	close(o.reqs)
	o.wg.Wait()
}

type counter struct{ N int }

func TestRef_With_SharesLiveValue(t *testing.T) {
	owner := newLoopOwner()
	defer owner.close()

	live := &counter{}
	ref := boundary.Proxy(owner, live)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ref.With(ctx, func(c *counter) error {
				c.N++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, live.N, "mutations through the handle must reach the owner's value")
}

func TestRef_With_PropagatesError(t *testing.T) {
	owner := newLoopOwner()
	defer owner.close()

	boom := errors.New("boom")
	ref := boundary.Proxy(owner, &counter{})
	err := ref.With(context.Background(), func(*counter) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRef_MarshalJSON_EncodesHandleOnly(t *testing.T) {
	owner := newLoopOwner()
	defer owner.close()

	ref := boundary.Proxy(owner, &counter{N: 42})
	data, err := json.Marshal(ref)
	require.NoError(t, err)

	var marker boundary.Marker
	require.NoError(t, json.Unmarshal(data, &marker))
	assert.Equal(t, ref.ID().String(), marker.Ref)
	assert.Equal(t, "*boundary_test.counter", marker.Type)
	assert.NotContains(t, string(data), "42")
}

func TestRef_Snapshot(t *testing.T) {
	owner := newLoopOwner()
	defer owner.close()

	ref := boundary.Proxy(owner, &counter{N: 7})
	snap, err := ref.Snapshot(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"N":7}`, string(snap))
}

func TestRef_ZeroHasNoOwner(t *testing.T) {
	var ref boundary.Ref[*counter]
	assert.True(t, ref.IsZero())
	assert.Error(t, ref.With(context.Background(), func(*counter) error { return nil }))
}

func TestRegistry(t *testing.T) {
	owner := newLoopOwner()
	defer owner.close()

	reg := boundary.NewRegistry()
	ref := boundary.Proxy(owner, &counter{})
	reg.Register(ref)
	assert.Equal(t, 1, reg.Len())

	h, ok := reg.Resolve(ref.ID())
	require.True(t, ok)
	assert.Equal(t, ref.ID(), h.ID())

	reg.Release(ref.ID())
	reg.Release(ref.ID())
	_, ok = reg.Resolve(ref.ID())
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestMarshal_DistinguishesHandlesFromData(t *testing.T) {
	owner := newLoopOwner()
	defer owner.close()

	ref := boundary.Proxy(owner, []string{"a"})
	assert.True(t, boundary.IsHandle(ref))
	assert.False(t, boundary.IsHandle([]string{"a"}))

	data, err := boundary.Marshal(ref)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"$ref"`)

	data, err = boundary.Marshal(map[string]int{"x": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(data))
}
