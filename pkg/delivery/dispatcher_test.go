package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/Cheese/pkg/event"
)

type stubChannel struct {
	name  string
	err   error
	delay time.Duration
	calls int
	mu    sync.Mutex
}

func (s *stubChannel) Name() string  { return s.name }
func (s *stubChannel) Enabled() bool { return true }

func (s *stubChannel) do(ctx context.Context) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.err
}

func (s *stubChannel) Send(ctx context.Context, _, _ string) error { return s.do(ctx) }
func (s *stubChannel) Upload(ctx context.Context, _ string) error  { return s.do(ctx) }
func (s *stubChannel) Print(ctx context.Context, _ string) error   { return s.do(ctx) }

type recorded struct {
	channel, target string
	ok              bool
}

type memRecorder struct {
	mu   sync.Mutex
	rows []recorded
}

func (m *memRecorder) RecordDelivery(_ context.Context, _, channel, target string, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, recorded{channel, target, err == nil})
	return nil
}

func TestDispatchIndependentChannels(t *testing.T) {
	bus := event.NewBus()
	events, cancel := bus.Subscribe(8)
	defer cancel()

	email := &stubChannel{name: ChannelEmail, delay: 20 * time.Millisecond}
	cloud := &stubChannel{name: ChannelCloud, err: errors.New("HTTP 500: boom")}
	printer := &stubChannel{name: ChannelPrinter}
	rec := &memRecorder{}
	d := &Dispatcher{Email: email, Cloud: cloud, Printer: printer, Bus: bus, Recorder: rec}

	results := d.Dispatch(context.Background(), "/photos/p.jpg", Request{Email: "guest@example.com", Upload: true, Print: true})

	require.Len(t, results, 3)
	assert.Equal(t, ChannelEmail, results[0].Channel)
	assert.Equal(t, "guest@example.com", results[0].Target)
	assert.True(t, results[0].OK(), "a failing upload does not affect email")
	assert.Equal(t, ChannelCloud, results[1].Channel)
	assert.False(t, results[1].OK())
	assert.True(t, results[2].OK())

	assert.Len(t, rec.rows, 3)
	okByChannel := map[string]bool{}
	for i := 0; i < 3; i++ {
		e := (<-events).(event.DeliveryFinished)
		okByChannel[e.Channel] = e.OK
	}
	assert.Equal(t, map[string]bool{ChannelEmail: true, ChannelCloud: false, ChannelPrinter: true}, okByChannel)
}

func TestDispatchOnlyRequested(t *testing.T) {
	email := &stubChannel{name: ChannelEmail}
	printer := &stubChannel{name: ChannelPrinter}
	d := &Dispatcher{Email: email, Printer: printer}

	results := d.Dispatch(context.Background(), "p.jpg", Request{Print: true, Upload: true})
	require.Len(t, results, 1, "upload has no channel wired, email has no recipient")
	assert.Equal(t, ChannelPrinter, results[0].Channel)
	assert.Equal(t, 0, email.calls)
	assert.Equal(t, 1, printer.calls)
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Channel: ChannelPrinter, Err: ErrUnsupported}
	assert.Equal(t, "printer: not supported on this platform", err.Error())
	assert.ErrorIs(t, err, ErrUnsupported)

	err = failf(ChannelEmail, ErrDisabled, "email is disabled")
	assert.Equal(t, "email: email is disabled", err.Error())
}

func TestRequestChannels(t *testing.T) {
	assert.Empty(t, Request{}.Channels())
	assert.Equal(t, []string{ChannelEmail, ChannelCloud, ChannelPrinter},
		Request{Email: "a@b.c", Print: true, Upload: true}.Channels())
	assert.Equal(t, []string{ChannelPrinter}, Request{Print: true}.Channels())
}
