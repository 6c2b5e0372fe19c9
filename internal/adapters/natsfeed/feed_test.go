package natsfeed

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/roomsync/internal/ports/secondary"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		table  string
		event  string
		column string
		value  string
		want   string
	}{
		{name: "any event", prefix: "rs", table: "rooms", event: "*", column: "id", value: "R1", want: "rs.rooms.*.id.R1"},
		{name: "insert lowercased", prefix: "rs", table: "memberships", event: "INSERT", column: "user_id", value: "alice", want: "rs.memberships.insert.user_id.alice"},
		{name: "default prefix", table: "matches", event: "UPDATE", column: "room_id", value: "R1", want: "roomsync.changes.matches.update.room_id.R1"},
		{name: "dots escaped", prefix: "rs", table: "rooms", event: "*", column: "owner_id", value: "a.b c", want: "rs.rooms.*.owner_id.a%2Eb%20c"},
		{name: "wildcards escaped", prefix: "rs", table: "rooms", event: "*", column: "id", value: "*>", want: "rs.rooms.*.id.%2A%3E"},
		{name: "empty value", prefix: "rs", table: "rooms", event: "*", column: "id", value: "", want: "rs.rooms.*.id._"},
		{name: "uuid untouched", prefix: "rs", table: "rooms", event: "*", column: "id", value: "0b9e-4c1f_x", want: "rs.rooms.*.id.0b9e-4c1f_x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subject(tt.prefix, tt.table, tt.event, tt.column, tt.value))
		})
	}
}

func TestBindingSubject(t *testing.T) {
	got, err := BindingSubject("rs", secondary.Binding{Table: secondary.TableMemberships, Event: secondary.EventAny, Column: "user_id", Value: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "rs.memberships.*.user_id.alice", got)

	_, err = BindingSubject("rs", secondary.Binding{Table: secondary.TableRooms, Event: secondary.EventAny, Column: "status", Value: "open"})
	require.Error(t, err, "status is not a published column")

	_, err = BindingSubject("rs", secondary.Binding{Table: secondary.TableRooms})
	require.Error(t, err)
}

func TestPublishedSubjectsMatchBindings(t *testing.T) {
	// Every binding the session tracker opens must be reachable by some published subject.
	bindings := []secondary.Binding{
		{Table: secondary.TableMemberships, Event: secondary.EventAny, Column: "user_id", Value: "alice"},
		{Table: secondary.TableRooms, Event: secondary.EventAny, Column: "id", Value: "R1"},
		{Table: secondary.TableMatches, Event: secondary.EventAny, Column: "room_id", Value: "R1"},
	}
	for _, b := range bindings {
		assert.Contains(t, FilterColumns(b.Table), b.Column, "binding %+v", b)
	}
}

func TestEncodeDecode(t *testing.T) {
	change := secondary.Change{
		Table: secondary.TableRooms,
		Event: secondary.EventUpdate,
		Row:   map[string]string{"id": "R1", "status": "closed"},
	}
	data, err := encode(change)
	require.NoError(t, err)

	got, err := decode(data)
	require.NoError(t, err)
	assert.Equal(t, change, got)

	_, err = decode([]byte(`{"row":{}}`))
	require.Error(t, err)
	_, err = decode([]byte(`not json`))
	require.Error(t, err)
}

func TestDispatchFiltersOnPayload(t *testing.T) {
	f := New(nil, "rs", nil)
	binding := secondary.Binding{Table: secondary.TableRooms, Event: secondary.EventAny, Column: "id", Value: "R1"}

	var got []secondary.Change
	handler := f.dispatch("room:R1", binding, func(c secondary.Change) { got = append(got, c) })

	matching, err := encode(secondary.Change{Table: secondary.TableRooms, Event: secondary.EventUpdate, Row: map[string]string{"id": "R1"}})
	require.NoError(t, err)
	other, err := encode(secondary.Change{Table: secondary.TableRooms, Event: secondary.EventUpdate, Row: map[string]string{"id": "R2"}})
	require.NoError(t, err)

	handler(&nats.Msg{Subject: "rs.rooms.update.id.R1", Data: matching})
	handler(&nats.Msg{Subject: "rs.rooms.update.id._", Data: other})
	handler(&nats.Msg{Subject: "rs.rooms.update.id.R1", Data: []byte("garbage")})

	require.Len(t, got, 1)
	assert.Equal(t, "R1", got[0].Row["id"])
}

func TestTraceContextPropagation(t *testing.T) {
	previous := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(previous) })

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	header := injectContext(ctx)
	require.NotEmpty(t, header.Get("traceparent"))

	restored := trace.SpanContextFromContext(extractContext(context.Background(), header))
	assert.Equal(t, traceID, restored.TraceID())
	assert.Equal(t, spanID, restored.SpanID())

	assert.Equal(t, context.Background(), extractContext(context.Background(), nil))
}

// TestFeedAgainstServer runs only when a NATS server is available.
func TestFeedAgainstServer(t *testing.T) {
	url := os.Getenv("ROOMSYNC_TEST_NATS_URL")
	if url == "" {
		t.Skip("ROOMSYNC_TEST_NATS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	nc, err := Connect(ctx, ConnectOptions{URL: url, Name: "roomsync-test"}, nil)
	require.NoError(t, err)
	defer nc.Close()

	feed := New(nc, "roomsync.test."+time.Now().Format("150405.000000"), nil)

	var mu sync.Mutex
	var got []secondary.Change
	received := make(chan struct{}, 4)
	sub, err := feed.Subscribe(ctx, "memberships:alice", []secondary.Binding{
		{Table: secondary.TableMemberships, Event: secondary.EventAny, Column: "user_id", Value: "alice"},
	}, func(c secondary.Change) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
		received <- struct{}{}
	})
	require.NoError(t, err)
	require.NoError(t, feed.Flush(ctx))

	require.NoError(t, feed.Publish(ctx, secondary.Change{
		Table: secondary.TableMemberships,
		Event: secondary.EventInsert,
		Row:   map[string]string{"user_id": "alice", "room_id": "R1"},
	}))
	require.NoError(t, feed.Publish(ctx, secondary.Change{
		Table: secondary.TableMemberships,
		Event: secondary.EventInsert,
		Row:   map[string]string{"user_id": "bob", "room_id": "R1"},
	}))

	select {
	case <-received:
	case <-ctx.Done():
		t.Fatal("change not delivered")
	}

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "R1", got[0].Row["room_id"])
}
