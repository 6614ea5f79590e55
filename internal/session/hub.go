package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gallery/internal/domain"
	"gallery/internal/scene"
)

// Gallery is the part of the application a session drives.
type Gallery interface {
	UserJoined(domain.User)
	UserLeft(domain.User)
	IsButton(actorID string) bool
	Submit(prompt string, user domain.User) error
}

// Options tunes connection handling. Zero values fall back to defaults.
type Options struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PingInterval time.Duration
	ReadLimit    int64
	CheckOrigin  func(r *http.Request) bool
	Logger       *zerolog.Logger
}

const (
	defaultSendBuffer   = 256
	defaultWriteTimeout = 10 * time.Second
	defaultPingInterval = 30 * time.Second
	defaultReadLimit    = 64 << 10
)

// Hub streams the scene to websocket clients and forwards their input to the
// gallery. It also delivers per-user notices.
type Hub struct {
	graph    *scene.Graph
	opts     Options
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	gallery Gallery
	clients map[string]*client
}

// NewHub returns a hub over graph. Attach must be called before serving.
func NewHub(g *scene.Graph, opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = defaultReadLimit
	}
	h := &Hub{
		graph:   g,
		opts:    opts,
		logger:  zerolog.Nop(),
		clients: make(map[string]*client),
	}
	if opts.Logger != nil {
		h.logger = *opts.Logger
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     opts.CheckOrigin,
	}
	return h
}

// Attach sets the gallery that receives user events.
func (h *Hub) Attach(g Gallery) {
	h.mu.Lock()
	h.gallery = g
	h.mu.Unlock()
}

// Clients returns the number of open sessions.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Notify sends a notice frame to every session of user. Users without a
// session are skipped.
func (h *Hub) Notify(user domain.User, text string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.user.ID == user.ID {
			c.enqueue(Frame{Type: FrameNotice, Text: text})
		}
	}
}

// Serve upgrades the request and runs the session until the client goes
// away. It returns once the connection is closed. user.ID is replaced with a
// fresh server-side ID; only the name and locale come from the caller.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, user domain.User) error {
	h.mu.RLock()
	gal := h.gallery
	h.mu.RUnlock()
	if gal == nil {
		return domain.ErrSceneNotReady
	}
	// Notices are routed by ID, so it is never taken from the client.
	user.ID = uuid.NewString()
	user.Locale = domain.NormalizeLocale(user.Locale)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := newClient(uuid.NewString(), user, conn, h.opts.SendBuffer)
	log := h.logger.With().Str("session", c.id).Str("user", user.DisplayName()).Logger()

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	participant := &Participant{ID: user.ID, Name: user.Name, Locale: user.Locale}
	unsubscribe := h.graph.Watch(
		func(s scene.Snapshot) {
			c.enqueue(Frame{Type: FrameSnapshot, User: participant, Snapshot: &s})
		},
		func(p scene.Patch) {
			if !c.enqueue(patchFrame(p)) {
				log.Warn().Msg("session: dropping slow client")
			}
		},
	)

	go h.writeLoop(c, log)
	gal.UserJoined(user)
	log.Info().Msg("session: opened")

	h.readLoop(c, gal, log)

	unsubscribe()
	c.close()
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	gal.UserLeft(user)
	log.Info().Msg("session: closed")
	return nil
}

// Close ends every open session.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.close()
	}
}

func (h *Hub) readLoop(c *client, gal Gallery, log zerolog.Logger) {
	pongWait := 2 * h.opts.PingInterval
	c.conn.SetReadLimit(h.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var f Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("session: read failed")
			}
			return
		}
		h.handle(c, gal, f, log)
	}
}

func (h *Hub) handle(c *client, gal Gallery, f Frame, log zerolog.Logger) {
	switch f.Type {
	case FrameClick:
		if gal.IsButton(f.ActorID) {
			c.enqueue(Frame{Type: FrameDialog, Title: domain.Notice(c.user.Locale, domain.NoticeDialogTitle)})
		}
	case FrameDialog:
		if !f.Submitted {
			return
		}
		err := gal.Submit(f.Text, c.user)
		if err != nil && !domain.IsUserError(err) {
			log.Error().Err(err).Msg("session: submit failed")
		}
	default:
		log.Debug().Str("type", f.Type).Msg("session: ignoring frame")
	}
}

func (h *Hub) writeLoop(c *client, log zerolog.Logger) {
	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case f := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if err := c.conn.WriteJSON(f); err != nil {
				log.Debug().Err(err).Msg("session: write failed")
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.opts.WriteTimeout)); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}
