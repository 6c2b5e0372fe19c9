package natsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/example/roomsync/internal/ports/secondary"
)

var tracer = otel.Tracer("github.com/example/roomsync/internal/adapters/natsfeed")

// envelope is the wire form of a change.
type envelope struct {
	Table string            `json:"table"`
	Event string            `json:"event"`
	Row   map[string]string `json:"row"`
}

// Feed implements secondary.ChangeFeed and secondary.ChangePublisher over a NATS connection.
type Feed struct {
	nc     *nats.Conn
	prefix string
	logger *zap.Logger
}

// New creates a Feed on an established connection.
func New(nc *nats.Conn, prefix string, logger *zap.Logger) *Feed {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{nc: nc, prefix: prefix, logger: logger}
}

// ConnectOptions configures Connect.
type ConnectOptions struct {
	URL      string
	Name     string
	Attempts int           // Connection attempts before giving up; zero means 1
	Wait     time.Duration // Pause between attempts
	// OnReconnect runs after the connection comes back. Changes published while it
	// was down are lost, so callers typically request a fresh reconciliation here.
	OnReconnect func()
}

// Connect dials NATS, retrying until the attempts run out or ctx is done.
func Connect(ctx context.Context, opts ConnectOptions, logger *zap.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.Wait <= 0 {
		opts.Wait = 2 * time.Second
	}

	natsOpts := []nats.Option{
		nats.Name(opts.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
			if opts.OnReconnect != nil {
				opts.OnReconnect()
			}
		}),
	}

	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		nc, err := nats.Connect(opts.URL, natsOpts...)
		if err == nil {
			return nc, nil
		}
		lastErr = err
		logger.Info("waiting for NATS", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == opts.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.Wait):
		}
	}
	return nil, fmt.Errorf("failed to connect to NATS at %s: %w", opts.URL, lastErr)
}

// Subscribe opens one NATS subscription per binding. Every delivered change is checked
// against its binding again before it reaches handler.
func (f *Feed) Subscribe(ctx context.Context, name string, bindings []secondary.Binding, handler secondary.ChangeHandler) (secondary.Subscription, error) {
	sub := &subscription{name: name}
	for _, b := range bindings {
		subject, err := BindingSubject(f.prefix, b)
		if err != nil {
			_ = sub.Close()
			return nil, fmt.Errorf("subscription %s: %w", name, err)
		}
		ns, err := f.nc.Subscribe(subject, f.dispatch(name, b, handler))
		if err != nil {
			_ = sub.Close()
			return nil, fmt.Errorf("subscription %s: failed to subscribe to %s: %w", name, subject, err)
		}
		sub.subs = append(sub.subs, ns)
	}
	f.logger.Debug("subscribed", zap.String("name", name), zap.Int("bindings", len(bindings)))
	return sub, nil
}

// dispatch returns the message callback for one binding.
func (f *Feed) dispatch(name string, b secondary.Binding, handler secondary.ChangeHandler) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ctx := extractContext(context.Background(), msg.Header)
		_, span := tracer.Start(ctx, msg.Subject+" receive",
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				attribute.String("messaging.system", "nats"),
				attribute.String("messaging.destination.name", msg.Subject),
				attribute.String("roomsync.subscription", name),
			),
		)
		defer span.End()

		change, err := decode(msg.Data)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid change")
			f.logger.Warn("invalid change message", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		if !b.Matches(change) {
			return
		}
		handler(change)
	}
}

// Publish announces a change on the subject of every filterable column it carries.
func (f *Feed) Publish(ctx context.Context, change secondary.Change) error {
	data, err := encode(change)
	if err != nil {
		return err
	}

	var errs []error
	for _, column := range FilterColumns(change.Table) {
		value, ok := change.Row[column]
		if !ok || value == "" {
			continue
		}
		subject := Subject(f.prefix, change.Table, change.Event, column, value)
		if err := f.publish(ctx, subject, data); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", subject, err))
		}
	}
	return errors.Join(errs...)
}

func (f *Feed) publish(ctx context.Context, subject string, data []byte) error {
	ctx, span := tracer.Start(ctx, subject+" publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "nats"),
			attribute.String("messaging.destination.name", subject),
			attribute.Int("messaging.message.payload_size_bytes", len(data)),
		),
	)
	defer span.End()

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  injectContext(ctx),
	}
	if err := f.nc.PublishMsg(msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return err
	}
	return nil
}

// Flush waits until the server has processed everything published so far.
func (f *Feed) Flush(ctx context.Context) error {
	return f.nc.FlushWithContext(ctx)
}

func encode(c secondary.Change) ([]byte, error) {
	data, err := json.Marshal(envelope{Table: c.Table, Event: c.Event, Row: c.Row})
	if err != nil {
		return nil, fmt.Errorf("failed to encode change: %w", err)
	}
	return data, nil
}

func decode(data []byte) (secondary.Change, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return secondary.Change{}, fmt.Errorf("failed to decode change: %w", err)
	}
	if env.Table == "" || env.Event == "" {
		return secondary.Change{}, errors.New("change is missing table or event")
	}
	return secondary.Change{Table: env.Table, Event: env.Event, Row: env.Row}, nil
}

// subscription groups the NATS subscriptions of one named channel.
type subscription struct {
	name string
	subs []*nats.Subscription
	once sync.Once
	err  error
}

// Close unsubscribes every binding. Closing twice is a no-op.
func (s *subscription) Close() error {
	s.once.Do(func() {
		var errs []error
		for _, ns := range s.subs {
			if err := ns.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
				errs = append(errs, fmt.Errorf("unsubscribe %s: %w", ns.Subject, err))
			}
		}
		s.err = errors.Join(errs...)
	})
	return s.err
}

var (
	_ secondary.ChangeFeed      = (*Feed)(nil)
	_ secondary.ChangePublisher = (*Feed)(nil)
)
