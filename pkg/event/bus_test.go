package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe(4)
	b, cancelB := bus.Subscribe(4)
	defer cancelA()
	defer cancelB()

	bus.Publish(CountdownTick{SessionID: "s1", Remaining: 3})

	for _, ch := range []<-chan Event{a, b} {
		e := <-ch
		tick, ok := e.(CountdownTick)
		require.True(t, ok)
		assert.Equal(t, 3, tick.Remaining)
		assert.Equal(t, KindCountdownTick, e.Kind())
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Publish(CaptureStarted{SessionID: "1"})
	bus.Publish(CaptureStarted{SessionID: "2"})
	bus.Publish(CaptureStarted{SessionID: "3"})

	assert.Equal(t, uint64(2), bus.Dropped())
	e := <-ch
	assert.Equal(t, "1", e.(CaptureStarted).SessionID)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(0)
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok, "channel closed after cancel")
	bus.Publish(ConfigReloaded{})
}

func TestBusClose(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	bus.Close()
	bus.Close()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := bus.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok)
	bus.Publish(ConfigReloaded{})
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1000)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bus.Publish(FramesChanged{})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, ch, 500)
}
