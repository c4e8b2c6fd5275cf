package events_test

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/core/events"
	"github.com/frahmantamala/shopping-list/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(logger.Discard())
	})

	It("delivers an async event to every subscriber", func() {
		var calls int32
		for i := 0; i < 3; i++ {
			bus.Subscribe(events.EventTypeListChanged, func(ctx context.Context, e events.Event) error {
				atomic.AddInt32(&calls, 1)
				return nil
			})
		}

		Expect(bus.Publish(context.Background(), events.NewListChangedEvent("l1", "update", "u1", nil))).To(Succeed())
		bus.Drain()

		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(3)))
	})

	It("keeps delivering after the publisher's context is cancelled", func() {
		var seenErr atomic.Value
		release := make(chan struct{})
		bus.Subscribe(events.EventTypeItemChanged, func(ctx context.Context, e events.Event) error {
			<-release
			seenErr.Store(ctx.Err() == nil)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		Expect(bus.Publish(ctx, events.NewItemChangedEvent("l1", "i1", "check", "u1", nil))).To(Succeed())
		cancel()
		close(release)
		bus.Drain()

		Expect(seenErr.Load()).To(Equal(true))
	})

	It("survives a panicking handler", func() {
		var calls int32
		bus.Subscribe("boom", func(ctx context.Context, e events.Event) error { panic("handler bug") })
		bus.Subscribe("boom", func(ctx context.Context, e events.Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})

		Expect(bus.Publish(context.Background(), events.BaseEvent{ID: "1", Type: "boom"})).To(Succeed())
		bus.Drain()

		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(1)))
	})

	It("returns the first handler error from PublishSync", func() {
		bus.Subscribe("sync", func(ctx context.Context, e events.Event) error { return errors.New("nope") })

		err := bus.PublishSync(context.Background(), events.BaseEvent{ID: "1", Type: "sync"})
		Expect(err).To(MatchError(ContainSubstring("nope")))
	})

	It("ignores events nobody subscribed to", func() {
		Expect(bus.Publish(context.Background(), events.BaseEvent{ID: "1", Type: "unknown"})).To(Succeed())
		Expect(bus.PublishSync(context.Background(), events.BaseEvent{ID: "1", Type: "unknown"})).To(Succeed())
	})

	It("hands handlers the caller id with a deadline of their own", func() {
		var seen atomic.Value
		var hasDeadline atomic.Bool
		bus.Subscribe("actor", func(ctx context.Context, e events.Event) error {
			seen.Store(internal.UserIDFromContext(ctx))
			_, ok := ctx.Deadline()
			hasDeadline.Store(ok)
			return nil
		})

		ctx := internal.ContextWithUserID(context.Background(), "u-7")
		Expect(bus.Publish(ctx, events.BaseEvent{ID: "1", Type: "actor"})).To(Succeed())
		bus.Drain()

		Expect(seen.Load()).To(Equal("u-7"))
		Expect(hasDeadline.Load()).To(BeTrue())
	})
})
