package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	ws "github.com/coder/websocket"
	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/auth"
	"github.com/frahmantamala/shopping-list/internal/core/events"
	"github.com/frahmantamala/shopping-list/internal/list"
	"github.com/frahmantamala/shopping-list/internal/transport"
	"github.com/frahmantamala/shopping-list/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeAccess grants view access to the listed (listID, userID) pairs.
type fakeAccess map[string][]string

func (f fakeAccess) LoadAuthorized(ctx context.Context, id, requesterID string, op list.Operation) (*list.List, error) {
	members, ok := f[id]
	if !ok {
		return nil, errors.ErrListNotFound
	}
	for _, m := range members {
		if m == requesterID {
			return &list.List{ID: id}, nil
		}
	}
	return nil, errors.ErrNoAccess
}

func mockClient(hub *Hub, userID string) *Client {
	return &Client{
		hub:    hub,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
	}
}

func receive(c *Client) Message {
	var msg Message
	select {
	case data := <-c.send:
		Expect(json.Unmarshal(data, &msg)).To(Succeed())
	case <-time.After(100 * time.Millisecond):
		Fail("timeout waiting for message")
	}
	return msg
}

func expectSilent(c *Client) {
	Consistently(c.send, 50*time.Millisecond).ShouldNot(Receive())
}

var _ = Describe("Hub", func() {
	var (
		ctx context.Context
		hub *Hub
	)

	BeforeEach(func() {
		ctx = context.Background()
		hub = NewHub(fakeAccess{"list-1": {"owner", "viewer"}}, logger.Discard())
	})

	It("registers and unregisters clients", func() {
		c1 := mockClient(hub, "owner")
		c2 := mockClient(hub, "viewer")
		hub.Register(c1)
		hub.Register(c2)
		Expect(hub.ClientCount()).To(Equal(2))

		hub.Unregister(c1)
		hub.Unregister(c1)
		Expect(hub.ClientCount()).To(Equal(1))

		hub.Unregister(c2)
		Expect(hub.ClientCount()).To(BeZero())
	})

	It("lets members join a list room and receive list updates", func() {
		owner := mockClient(hub, "owner")
		viewer := mockClient(hub, "viewer")
		hub.Register(owner)
		hub.Register(viewer)

		Expect(hub.Join(ctx, owner, "list-1")).To(Succeed())
		Expect(hub.Join(ctx, viewer, "list-1")).To(Succeed())
		Expect(hub.RoomSize("list-1")).To(Equal(2))

		Expect(hub.HandleItemChanged(ctx, events.NewItemChangedEvent("list-1", "item-1", "check", "owner", nil))).To(Succeed())

		for _, c := range []*Client{owner, viewer} {
			msg := receive(c)
			Expect(msg.Type).To(Equal(TypeItemUpdated))
			Expect(msg.ListID).To(Equal("list-1"))
			Expect(msg.ItemID).To(Equal("item-1"))
			Expect(msg.Action).To(Equal("check"))
		}
	})

	It("refuses users without view access", func() {
		stranger := mockClient(hub, "stranger")
		hub.Register(stranger)

		err := hub.Join(ctx, stranger, "list-1")
		Expect(err).To(MatchError(errors.ErrNoAccess))
		Expect(hub.RoomSize("list-1")).To(BeZero())

		Expect(hub.Join(ctx, stranger, "missing")).To(MatchError(errors.ErrListNotFound))
	})

	It("stops delivering after leave", func() {
		viewer := mockClient(hub, "viewer")
		hub.Register(viewer)
		Expect(hub.Join(ctx, viewer, "list-1")).To(Succeed())

		hub.Leave(viewer, "list-1")
		Expect(hub.RoomSize("list-1")).To(BeZero())

		hub.BroadcastToList("list-1", Message{Type: TypeListUpdated, ListID: "list-1"})
		expectSilent(viewer)
	})

	It("closes the room when the list is deleted", func() {
		viewer := mockClient(hub, "viewer")
		hub.Register(viewer)
		Expect(hub.Join(ctx, viewer, "list-1")).To(Succeed())

		Expect(hub.HandleListChanged(ctx, events.NewListChangedEvent("list-1", list.ActionDelete, "owner", nil))).To(Succeed())

		msg := receive(viewer)
		Expect(msg.Type).To(Equal(TypeListUpdated))
		Expect(msg.Action).To(Equal(list.ActionDelete))
		Expect(hub.RoomSize("list-1")).To(BeZero())
	})

	It("evicts a user from the room once their share is removed", func() {
		access := fakeAccess{"list-1": {"owner", "viewer"}}
		hub = NewHub(access, logger.Discard())
		owner := mockClient(hub, "owner")
		viewer := mockClient(hub, "viewer")
		hub.Register(owner)
		hub.Register(viewer)
		Expect(hub.Join(ctx, owner, "list-1")).To(Succeed())
		Expect(hub.Join(ctx, viewer, "list-1")).To(Succeed())

		access["list-1"] = []string{"owner"}
		Expect(hub.HandleListChanged(ctx, events.NewListChangedEvent("list-1", list.ActionUnshare, "owner", nil))).To(Succeed())

		Expect(receive(viewer)).To(Equal(Message{Type: TypeLeft, ListID: "list-1"}))
		Expect(hub.RoomSize("list-1")).To(Equal(1))
		Expect(receive(owner).Action).To(Equal(list.ActionUnshare))

		Expect(hub.HandleItemChanged(ctx, events.NewItemChangedEvent("list-1", "item-1", "add", "owner", nil))).To(Succeed())
		Expect(receive(owner).Type).To(Equal(TypeItemUpdated))
		expectSilent(viewer)
	})

	It("reads membership from the list carried by the event", func() {
		viewer := mockClient(hub, "viewer")
		hub.Register(viewer)
		Expect(hub.Join(ctx, viewer, "list-1")).To(Succeed())

		after := &list.List{ID: "list-1", OwnerID: "owner"}
		Expect(hub.HandleListChanged(ctx, events.NewListChangedEvent("list-1", list.ActionUnshare, "owner", after))).To(Succeed())

		Expect(receive(viewer).Type).To(Equal(TypeLeft))
		Expect(hub.RoomSize("list-1")).To(BeZero())
		expectSilent(viewer)
	})

	It("sends notifications only to the recipient's connections", func() {
		phone := mockClient(hub, "viewer")
		laptop := mockClient(hub, "viewer")
		other := mockClient(hub, "owner")
		hub.Register(phone)
		hub.Register(laptop)
		hub.Register(other)

		Expect(hub.HandleNotificationCreated(ctx, events.NewNotificationCreatedEvent("viewer", map[string]string{"message": "hi"}))).To(Succeed())

		Expect(receive(phone).Type).To(Equal(TypeNotification))
		Expect(receive(laptop).Type).To(Equal(TypeNotification))
		expectSilent(other)
	})

	It("drops messages for a full client without blocking", func() {
		c := mockClient(hub, "owner")
		hub.Register(c)
		for i := 0; i < sendBufferSize+5; i++ {
			hub.SendToUser("owner", Message{Type: TypeNotification})
		}
		Expect(c.send).To(HaveLen(sendBufferSize))
	})

	It("rejects events of the wrong type", func() {
		Expect(hub.HandleListChanged(ctx, events.NewItemChangedEvent("l", "i", "add", "u", nil))).NotTo(Succeed())
		Expect(hub.HandleItemChanged(ctx, events.NewListChangedEvent("l", "update", "u", nil))).NotTo(Succeed())
		Expect(hub.HandleNotificationCreated(ctx, events.NewListChangedEvent("l", "update", "u", nil))).NotTo(Succeed())
	})

	It("survives concurrent joins and broadcasts", func() {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				c := mockClient(hub, "viewer")
				hub.Register(c)
				Expect(hub.Join(ctx, c, "list-1")).To(Succeed())
				hub.BroadcastToList("list-1", Message{Type: TypeListUpdated})
				hub.Unregister(c)
			}()
		}
		wg.Wait()
		Expect(hub.ClientCount()).To(BeZero())
		Expect(hub.RoomSize("list-1")).To(BeZero())
	})

	Describe("client messages", func() {
		It("answers join and leave requests", func() {
			c := mockClient(hub, "viewer")
			hub.Register(c)

			c.handle(ctx, []byte(`{"type":"join-list","listId":"list-1"}`))
			Expect(receive(c)).To(Equal(Message{Type: TypeJoined, ListID: "list-1"}))

			c.handle(ctx, []byte(`{"type":"leave-list","listId":"list-1"}`))
			Expect(receive(c)).To(Equal(Message{Type: TypeLeft, ListID: "list-1"}))
			Expect(hub.RoomSize("list-1")).To(BeZero())
		})

		It("reports bad requests", func() {
			c := mockClient(hub, "stranger")
			hub.Register(c)

			c.handle(ctx, []byte(`not json`))
			Expect(receive(c).Type).To(Equal(TypeError))

			c.handle(ctx, []byte(`{"type":"join-list"}`))
			Expect(receive(c).Error).To(Equal("listId is required"))

			c.handle(ctx, []byte(`{"type":"join-list","listId":"list-1"}`))
			msg := receive(c)
			Expect(msg.Type).To(Equal(TypeError))
			Expect(msg.ListID).To(Equal("list-1"))

			c.handle(ctx, []byte(`{"type":"dance"}`))
			Expect(receive(c).Error).To(Equal("unknown message type"))
		})
	})
})

var _ = Describe("Handler", func() {
	var (
		hub    *Hub
		server *httptest.Server
	)

	BeforeEach(func() {
		hub = NewHub(fakeAccess{"list-1": {"viewer"}}, logger.Discard())
		handler := NewHandler(transport.NewBaseHandler(logger.Discard()), hub, nil)

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := r.URL.Query().Get("as"); userID != "" {
				r = r.WithContext(auth.ContextWithPrincipal(r.Context(), &auth.Principal{ID: userID}))
			}
			handler.Connect(w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	wsURL := func(query string) string {
		return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws" + query
	}

	It("rejects unauthenticated upgrades", func() {
		resp, err := http.Get(server.URL + "/ws")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	It("streams list updates after a join", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		conn, _, err := ws.Dial(ctx, wsURL("?as=viewer"), nil)
		Expect(err).NotTo(HaveOccurred())
		defer conn.CloseNow()

		Expect(conn.Write(ctx, ws.MessageText, []byte(`{"type":"join-list","listId":"list-1"}`))).To(Succeed())

		var msg Message
		_, data, err := conn.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(data, &msg)).To(Succeed())
		Expect(msg.Type).To(Equal(TypeJoined))

		Expect(hub.HandleListChanged(ctx, events.NewListChangedEvent("list-1", list.ActionUpdate, "owner", nil))).To(Succeed())

		_, data, err = conn.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(data, &msg)).To(Succeed())
		Expect(msg.Type).To(Equal(TypeListUpdated))
		Expect(msg.Action).To(Equal(list.ActionUpdate))

		conn.Close(ws.StatusNormalClosure, "")
		Eventually(hub.ClientCount).Should(BeZero())
	})
})
