package delivery

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dixieflatline76/Cheese/pkg/event"
	"github.com/dixieflatline76/Cheese/util/log"
)

// Mailer sends a file to a recipient.
type Mailer interface {
	Channel
	Send(ctx context.Context, path, recipient string) error
}

// Uploader stores a file remotely.
type Uploader interface {
	Channel
	Upload(ctx context.Context, path string) error
}

// PrintSender prints a file.
type PrintSender interface {
	Channel
	Print(ctx context.Context, path string) error
}

// Recorder keeps a history of delivery attempts.
type Recorder interface {
	RecordDelivery(ctx context.Context, path, channel, target string, err error) error
}

// Request selects the channels for one photo. An empty Email skips the email channel.
type Request struct {
	Email  string
	Print  bool
	Upload bool
}

// Channels names the requested channels in dispatch order.
func (r Request) Channels() []string {
	var out []string
	if r.Email != "" {
		out = append(out, ChannelEmail)
	}
	if r.Upload {
		out = append(out, ChannelCloud)
	}
	if r.Print {
		out = append(out, ChannelPrinter)
	}
	return out
}

// Result is the outcome of one channel.
type Result struct {
	Channel  string
	Target   string
	Err      error
	Duration time.Duration
}

// OK reports whether the channel succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Dispatcher sends a photo over the requested channels concurrently.
type Dispatcher struct {
	Email    Mailer
	Cloud    Uploader
	Printer  PrintSender
	Bus      *event.Bus
	Recorder Recorder
}

type job struct {
	channel string
	target  string
	run     func(ctx context.Context) error
}

// Dispatch runs every requested channel and waits for all of them. Results are in the order
// email, cloud, printer; channels not requested or not wired are left out.
func (d *Dispatcher) Dispatch(ctx context.Context, path string, req Request) []Result {
	var jobs []job
	if req.Email != "" && d.Email != nil {
		jobs = append(jobs, job{ChannelEmail, req.Email, func(ctx context.Context) error {
			return d.Email.Send(ctx, path, req.Email)
		}})
	}
	if req.Upload && d.Cloud != nil {
		jobs = append(jobs, job{ChannelCloud, "", func(ctx context.Context) error {
			return d.Cloud.Upload(ctx, path)
		}})
	}
	if req.Print && d.Printer != nil {
		jobs = append(jobs, job{ChannelPrinter, "", func(ctx context.Context) error {
			return d.Printer.Print(ctx, path)
		}})
	}

	results := make([]Result, len(jobs))
	// Errors stay in the results so a failing channel never cancels its siblings.
	var g errgroup.Group
	for i, j := range jobs {
		g.Go(func() error {
			start := time.Now()
			err := j.run(ctx)
			results[i] = Result{Channel: j.channel, Target: j.target, Err: err, Duration: time.Since(start)}
			d.report(ctx, path, results[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Dispatcher) report(ctx context.Context, path string, r Result) {
	msg := ""
	if r.Err != nil {
		msg = r.Err.Error()
		log.Printf("Delivery of %s over %s failed: %s", path, r.Channel, msg)
	} else {
		log.Printf("Delivered %s over %s in %s", path, r.Channel, r.Duration.Round(time.Millisecond))
	}

	if d.Recorder != nil {
		if err := d.Recorder.RecordDelivery(context.WithoutCancel(ctx), path, r.Channel, r.Target, r.Err); err != nil {
			log.Printf("Recording delivery: %v", err)
		}
	}
	if d.Bus != nil {
		d.Bus.Publish(event.DeliveryFinished{
			Path:     path,
			Channel:  r.Channel,
			Target:   r.Target,
			OK:       r.Err == nil,
			Message:  msg,
			Duration: r.Duration,
		})
	}
}
