package notify

import (
	"context"
	"net/http"
	"sync"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/gorilla/websocket"
)

// Hub maintains the set of connected websocket listeners and fans emitted
// events out to all of them.
type Hub struct {
	log lib.Logger

	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan Event

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

var _ Broadcaster = &Hub{}

func NewHub(logger lib.Logger) *Hub {
	if logger == nil {
		logger = &lib.NoLog{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		log:        logger,
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, 256),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns when Stop is called.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.mu.Lock()
			for cl := range h.clients {
				cl.close()
			}
			h.clients = make(map[*client]struct{})
			h.mu.Unlock()
			return

		case cl := <-h.register:
			h.mu.Lock()
			h.clients[cl] = struct{}{}
			h.mu.Unlock()
			h.log.Printf("websocket: client connected (%d total)", h.ClientCount())

		case cl := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[cl]; ok {
				delete(h.clients, cl)
				cl.close()
			}
			h.mu.Unlock()
			h.log.Printf("websocket: client disconnected (%d total)", h.ClientCount())

		case event := <-h.broadcast:
			h.mu.RLock()
			for cl := range h.clients {
				cl.send(event)
			}
			h.mu.RUnlock()
		}
	}
}

// Stop shuts the hub down and disconnects every client.
func (h *Hub) Stop() {
	h.cancel()
	<-h.done
}

// Emit queues the event for broadcast. It never blocks: when the buffer
// is full the event is dropped.
func (h *Hub) Emit(event Event) {
	select {
	case h.broadcast <- event:
	default:
		h.log.Printf("websocket: broadcast buffer full, dropping %q event", event.Name)
	}
}

// ClientCount returns the number of connected listeners.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		host := r.Host
		return origin == "http://"+host || origin == "https://"+host
	},
}

// ServeWS upgrades the request to a websocket connection and registers it
// with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Printf("websocket: upgrade failed: %s", err)
		return
	}
	cl := newClient(h, conn)

	select {
	case h.register <- cl:
	case <-h.ctx.Done():
		_ = conn.Close()
		return
	}

	go cl.writePump()
	go cl.readPump()
}
