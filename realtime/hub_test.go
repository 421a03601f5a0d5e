package realtime

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu       sync.Mutex
	payloads []string
	fail     bool
}

func (s *recordingSink) Deliver(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("transport is closing")
	}
	s.payloads = append(s.payloads, string(payload))
	return nil
}

func (s *recordingSink) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.payloads...)
}

func Test_Publish_Reaches_All_Topic_Subscribers(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())

	subscriberA := &recordingSink{}
	subscriberB := &recordingSink{}
	other := &recordingSink{}
	hub.Subscribe("chat.X", subscriberA)
	hub.Subscribe("chat.X", subscriberB)
	hub.Subscribe("chat.Y", other)

	hub.Publish("chat.X", []byte("msg"))

	req.Equal([]string{"msg"}, subscriberA.received())
	req.Equal([]string{"msg"}, subscriberB.received())
	req.Empty(other.received())
}

func Test_Late_Subscriber_Misses_Earlier_Publish(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())

	early := &recordingSink{}
	hub.Subscribe("chat.X", early)
	hub.Publish("chat.X", []byte("before"))

	late := &recordingSink{}
	hub.Subscribe("chat.X", late)
	hub.Publish("chat.X", []byte("after"))

	req.Equal([]string{"before", "after"}, early.received())
	req.Equal([]string{"after"}, late.received())
}

func Test_Subscribe_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())

	subscriber := &recordingSink{}
	hub.Subscribe("chat.X", subscriber)
	hub.Subscribe("chat.X", subscriber)

	hub.Publish("chat.X", []byte("once"))
	req.Equal([]string{"once"}, subscriber.received())
}

func Test_Unsubscribe_Stops_Delivery(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())

	subscriber := &recordingSink{}
	hub.Subscribe("chat.X", subscriber)
	hub.Unsubscribe("chat.X", subscriber)

	hub.Publish("chat.X", []byte("msg"))
	req.Empty(subscriber.received())
}

func Test_UnsubscribeAll_Clears_Every_Topic(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())

	subscriber := &recordingSink{}
	stays := &recordingSink{}
	hub.Subscribe("chat.X", subscriber)
	hub.Subscribe("chat.Y", subscriber)
	hub.Subscribe("chat.X", stays)

	hub.UnsubscribeAll(subscriber)

	hub.Publish("chat.X", []byte("msg"))
	hub.Publish("chat.Y", []byte("msg"))
	req.Empty(subscriber.received())
	req.Equal([]string{"msg"}, stays.received())
}

func Test_Failing_Subscriber_Does_Not_Block_Others(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())

	failing := &recordingSink{fail: true}
	healthy := &recordingSink{}
	hub.Subscribe("chat.X", failing)
	hub.Subscribe("chat.X", healthy)

	// Publish must neither error nor skip the healthy subscriber.
	hub.Publish("chat.X", []byte("msg"))
	req.Equal([]string{"msg"}, healthy.received())
}

func Test_Per_Topic_Delivery_Order(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())

	subscriber := &recordingSink{}
	hub.Subscribe("chat.X", subscriber)

	for i := 0; i < 10; i++ {
		hub.Publish("chat.X", []byte(fmt.Sprintf("m%d", i)))
	}

	received := subscriber.received()
	req.Len(received, 10)
	for i, payload := range received {
		req.Equal(fmt.Sprintf("m%d", i), payload)
	}
}

func Test_Publish_Without_Subscribers_Is_Noop(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Publish("chat.empty", []byte("msg"))
}

func Test_Concurrent_Subscribe_And_Publish(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())

	var wg sync.WaitGroup
	sinks := make([]*recordingSink, 20)
	for i := range sinks {
		sinks[i] = &recordingSink{}
		wg.Add(2)
		go func(s *recordingSink) {
			defer wg.Done()
			hub.Subscribe("chat.X", s)
		}(sinks[i])
		go func() {
			defer wg.Done()
			hub.Publish("chat.X", []byte("msg"))
		}()
	}
	wg.Wait()

	// Deterministic part only: once everyone is subscribed, one more
	// publish reaches all of them exactly once.
	before := make([]int, len(sinks))
	for i, s := range sinks {
		before[i] = len(s.received())
	}
	hub.Publish("chat.X", []byte("final"))
	for i, s := range sinks {
		req.Len(s.received(), before[i]+1)
	}
}
