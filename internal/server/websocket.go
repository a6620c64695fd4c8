package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
	"github.com/sectoralphagame/sector-alpha-sub002/pkg/generic"
)

const (
	sendBuffer   = 8
	maxReadBytes = 512
)

var encodeBuffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Room holds the subscribers of one sector and the last frame published for it.
type Room struct {
	clients map[*client]struct{}
	latest  []byte
	mu      sync.Mutex
}

func newRoom() *Room {
	return &Room{clients: make(map[*client]struct{})}
}

func (r *Room) join(c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[c] = struct{}{}
	if r.latest != nil {
		c.send <- r.latest
	}
}

func (r *Room) leave(c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[c]; !ok {
		return
	}
	delete(r.clients, c)
	close(c.send)
}

// broadcast never blocks: a client that has not drained its buffer misses the
// frame and gets the next one.
func (r *Room) broadcast(data []byte) (dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.latest = data
	for c := range r.clients {
		select {
		case c.send <- data:
		default:
			dropped++
		}
	}
	return dropped
}

func (r *Room) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (f *Feed) getOrCreateRoom(sector ecs.EntityID) *Room {
	f.mu.Lock()
	defer f.mu.Unlock()

	if room, exists := f.rooms[sector]; exists {
		return room
	}

	room := newRoom()
	f.rooms[sector] = room
	return room
}

// Publish encodes frames and hands them to the subscribers of each sector.
// It is safe to call from the simulation goroutine while clients come and go.
func (f *Feed) Publish(frames []Frame) error {
	for _, frame := range frames {
		buf := encodeBuffers.Get()
		if err := json.NewEncoder(buf).Encode(frame); err != nil {
			encodeBuffers.Put(buf)
			return fmt.Errorf("encode frame for sector %d: %w", frame.Sector, err)
		}
		// clients keep the bytes after the buffer goes back to the pool
		data := bytes.Clone(buf.Bytes())
		encodeBuffers.Put(buf)

		if dropped := f.getOrCreateRoom(frame.Sector).broadcast(data); dropped > 0 {
			f.logger.Debug("slow feed clients skipped a frame",
				log.Int64("sector", int64(frame.Sector)),
				log.Int("dropped", dropped),
			)
		}
	}
	return nil
}

func (f *Feed) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sector, err := strconv.ParseUint(r.URL.Query().Get("sector"), 10, 64)
	if err != nil || sector == 0 {
		http.Error(w, ErrInvalidSector.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	room := f.getOrCreateRoom(ecs.EntityID(sector))
	room.join(c)
	f.track(conn, true)
	f.logger.Debug("feed client joined",
		log.Int64("sector", int64(sector)),
		log.String("remote", conn.RemoteAddr().String()),
	)

	go f.writePump(c)
	f.readPump(c)

	room.leave(c)
	f.track(conn, false)
	f.logger.Debug("feed client left", log.Int64("sector", int64(sector)))
}

// readPump discards client messages; reading is what surfaces close frames
// and broken connections.
func (f *Feed) readPump(c *client) {
	c.conn.SetReadLimit(maxReadBytes)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writePump(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout)); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			f.logger.Debug("feed write failed", log.Error(err))
			return
		}
	}
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
}
