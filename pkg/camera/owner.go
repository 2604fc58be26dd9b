package camera

import (
	"context"
	"sync"

	"github.com/dixieflatline76/Cheese/util/log"
)

// Owner hands out exclusive use of one Source. The capture screen and the admin preview
// both want the camera; whoever acquires it last gets it and the previous holder is told
// to stop polling.
type Owner struct {
	mu       sync.Mutex
	src      Source
	holder   string
	onRevoke func()
}

// NewOwner wraps src.
func NewOwner(src Source) *Owner {
	return &Owner{src: src}
}

// Acquire gives the source to holder, revoking it from any other holder first, and starts it.
// onRevoke runs (without the lock held) when another holder takes the source over.
func (o *Owner) Acquire(ctx context.Context, holder string, onRevoke func()) (Source, error) {
	o.mu.Lock()
	prev, prevRevoke := o.holder, o.onRevoke
	o.holder, o.onRevoke = holder, onRevoke
	src := o.src
	o.mu.Unlock()

	if prev != "" && prev != holder {
		log.Debugf("camera handed from %s to %s", prev, holder)
		if prevRevoke != nil {
			prevRevoke()
		}
	}

	return src, src.Start(ctx)
}

// Release stops the source if holder still owns it.
func (o *Owner) Release(holder string) {
	o.mu.Lock()
	if o.holder != holder {
		o.mu.Unlock()
		return
	}
	o.holder, o.onRevoke = "", nil
	src := o.src
	o.mu.Unlock()

	src.Stop()
}

// Holder returns the current holder, empty if the source is free.
func (o *Owner) Holder() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.holder
}

// Source returns the managed source without acquiring it.
func (o *Owner) Source() Source {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.src
}

// Replace swaps in a new source after a configuration change. The old source is stopped and
// the current holder, if any, is revoked so it re-acquires the new one.
func (o *Owner) Replace(src Source) {
	o.mu.Lock()
	old, revoke := o.src, o.onRevoke
	o.src = src
	o.holder, o.onRevoke = "", nil
	o.mu.Unlock()

	old.Stop()
	if revoke != nil {
		revoke()
	}
}
