package camera

import (
	"bytes"
	"image"
	"image/jpeg"
	"sync"

	"github.com/dixieflatline76/Cheese/util"
)

// slot holds the newest encoded frame. Writers overwrite, so a slow reader always sees the
// latest frame and never a queue of stale ones. Decoding happens on read, once per frame.
type slot struct {
	mu      sync.Mutex
	cond    *sync.Cond
	data    []byte
	seq     uint64
	decoded image.Image
	decSeq  uint64
	closed  bool

	frames  util.SafeCounter
	dropped util.SafeCounter
}

func newSlot() *slot {
	s := &slot{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// put stores a new encoded frame.
func (s *slot) put(data []byte) {
	s.mu.Lock()
	if s.data != nil && s.decSeq != s.seq {
		s.dropped.Increment()
	}
	s.data = data
	s.seq++
	s.frames.Increment()
	s.cond.Broadcast()
	s.mu.Unlock()
}

// latest decodes the newest frame. It returns false if there is none or it does not decode.
func (s *slot) latest() (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decodeLocked()
}

func (s *slot) decodeLocked() (image.Image, bool) {
	if s.data == nil {
		return nil, false
	}
	if s.decSeq == s.seq && s.decoded != nil {
		return s.decoded, true
	}
	img, err := jpeg.Decode(bytes.NewReader(s.data))
	s.decSeq = s.seq
	if err != nil {
		s.decoded = nil
		return nil, false
	}
	s.decoded = img
	return img, true
}

// wait blocks until a frame is available, the slot is closed or done is closed.
func (s *slot) wait(done <-chan struct{}) (image.Image, bool) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-done:
			s.mu.Lock()
			s.cond.Broadcast()
			s.mu.Unlock()
		case <-stop:
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.data == nil && !s.closed {
		select {
		case <-done:
			return nil, false
		default:
		}
		s.cond.Wait()
	}
	return s.decodeLocked()
}

// reset clears the slot for a restart.
func (s *slot) reset() {
	s.mu.Lock()
	s.data = nil
	s.decoded = nil
	s.seq, s.decSeq = 0, 0
	s.closed = false
	s.mu.Unlock()
}

// close wakes any waiter.
func (s *slot) close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *slot) stats() Stats {
	return Stats{Frames: s.frames.Value(), Dropped: s.dropped.Value()}
}
