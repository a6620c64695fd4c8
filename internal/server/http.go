package server

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/config"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
)

// Feed serves the latest per-sector frames to websocket subscribers. It never
// touches the world; the simulation pushes frames into it with Publish.
type Feed struct {
	config config.FeedConfig
	logger log.Log

	rooms map[ecs.EntityID]*Room
	mu    sync.Mutex

	conns   map[*websocket.Conn]struct{}
	connsMu sync.Mutex

	server   *http.Server
	listener net.Listener
	running  atomic.Bool
}

func NewFeed(cfg config.FeedConfig, logger log.Log) *Feed {
	return &Feed{
		config: cfg,
		logger: logger.With(log.String("component", "feed")),
		rooms:  make(map[ecs.EntityID]*Room),
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Handler routes /ws?sector=<id> to the websocket feed and /sectors to a JSON
// summary of known sectors.
func (f *Feed) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", TokenAuth(f.config.Token, http.HandlerFunc(f.handleWebSocket)))
	mux.Handle("/sectors", TokenAuth(f.config.Token, http.HandlerFunc(f.handleSectors)))
	return mux
}

// Start binds the listen address and serves in the background.
func (f *Feed) Start(_ context.Context) error {
	if !f.running.CompareAndSwap(false, true) {
		return ErrFeedRunning
	}

	listener, err := net.Listen("tcp", f.config.BindAddress)
	if err != nil {
		f.running.Store(false)
		return err
	}
	f.listener = listener
	f.server = &http.Server{Handler: f.Handler()}

	go func() {
		if err := f.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("feed server stopped", log.Error(err))
		}
	}()

	f.logger.Info("feed listening", log.String("address", listener.Addr().String()))
	return nil
}

// Addr is the bound address, useful when listening on port 0.
func (f *Feed) Addr() net.Addr {
	if f.listener == nil {
		return nil
	}
	return f.listener.Addr()
}

// Stop shuts the HTTP server down and closes hijacked websocket connections,
// which Shutdown leaves alone.
func (f *Feed) Stop(ctx context.Context) error {
	if !f.running.CompareAndSwap(true, false) {
		return ErrFeedNotRunning
	}

	err := f.server.Shutdown(ctx)

	f.connsMu.Lock()
	for conn := range f.conns {
		_ = conn.Close()
	}
	f.connsMu.Unlock()

	f.logger.Info("feed stopped")
	return err
}

func (f *Feed) track(conn *websocket.Conn, add bool) {
	f.connsMu.Lock()
	defer f.connsMu.Unlock()
	if add {
		f.conns[conn] = struct{}{}
	} else {
		delete(f.conns, conn)
	}
}

// SectorInfo summarizes one sector room of the feed.
type SectorInfo struct {
	Sector  ecs.EntityID `json:"sector"`
	Clients int          `json:"clients"`
	Ready   bool         `json:"ready"`
}

func (f *Feed) handleSectors(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	infos := make([]SectorInfo, 0, len(f.rooms))
	for id, room := range f.rooms {
		room.mu.Lock()
		infos = append(infos, SectorInfo{Sector: id, Clients: len(room.clients), Ready: room.latest != nil})
		room.mu.Unlock()
	}
	f.mu.Unlock()

	slices.SortFunc(infos, func(a, b SectorInfo) int { return cmp.Compare(a.Sector, b.Sector) })

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		f.logger.Warn("encode sector list", log.Error(err))
	}
}
