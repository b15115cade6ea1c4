package worker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPool_runsEveryTaskBeforeStop(t *testing.T) {
	p := NewPool(4)

	var n atomic.Int64
	for i := 0; i < 500; i++ {
		assert.True(t, p.Submit(func() { n.Add(1) }))
	}
	p.Stop()

	assert.Equal(t, int64(500), n.Load())
}

func TestPool_submitAfterStop(t *testing.T) {
	p := NewPool(1)
	p.Stop()
	p.Stop()

	assert.False(t, p.Submit(func() { t.Error("task ran after stop") }))
}

func TestNewPool_nonPositiveSize(t *testing.T) {
	p := NewPool(0)
	done := make(chan struct{})
	p.Submit(func() { close(done) })
	p.Stop()

	select {
	case <-done:
	default:
		t.Fatal("task did not run")
	}
}

func TestPool_submitDropsWhenQueueFull(t *testing.T) {
	p := newPool(1, 1)
	started := make(chan struct{})
	release := make(chan struct{})

	assert.True(t, p.Submit(func() {
		close(started)
		<-release
	}))
	<-started
	// worker is busy, so this one occupies the only queue slot
	var ran atomic.Int64
	assert.True(t, p.Submit(func() { ran.Add(1) }))

	returned := make(chan bool, 1)
	go func() { returned <- p.Submit(func() { ran.Add(100) }) }()
	select {
	case ok := <-returned:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	close(release)
	p.Stop()
	assert.Equal(t, int64(1), ran.Load())
}
