// Package locks hands out one mutex per user id.
package locks

import (
	"sync"
	"sync/atomic"
)

// Registry lazily creates a mutex for every distinct user id and keeps it
// for the life of the process. The zero value is ready to use.
type Registry struct {
	m sync.Map // int64 -> *sync.Mutex
	n atomic.Int64
}

func NewRegistry() *Registry { return &Registry{} }

// For returns the mutex of userID. Concurrent first calls for the same id
// all receive the same mutex.
func (r *Registry) For(userID int64) *sync.Mutex {
	if v, ok := r.m.Load(userID); ok {
		return v.(*sync.Mutex)
	}
	v, loaded := r.m.LoadOrStore(userID, new(sync.Mutex))
	if !loaded {
		r.n.Add(1)
	}
	return v.(*sync.Mutex)
}

// Len reports how many ids have a mutex.
func (r *Registry) Len() int { return int(r.n.Load()) }
