// Package client subscribes to the sector feed of a running sectord.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/server"
)

// Config holds configuration for the client
type Config struct {
	// Feed address as host:port
	ServerAddr     string
	Sector         ecs.EntityID
	Token          string
	ConnectTimeout time.Duration

	// Frames buffered before the reader waits for the consumer
	FrameBufferSize int
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() Config {
	return Config{
		ServerAddr:      "127.0.0.1:7070",
		ConnectTimeout:  10 * time.Second,
		FrameBufferSize: 16,
	}
}

func (c Config) validate() error {
	if c.ServerAddr == "" {
		return fmt.Errorf("%w: empty server address", ErrInvalidConfig)
	}
	if c.Sector == 0 {
		return fmt.Errorf("%w: no sector", ErrInvalidConfig)
	}
	return nil
}

func (c Config) url(scheme, path string) string {
	q := url.Values{}
	if c.Sector != 0 {
		q.Set("sector", strconv.FormatUint(uint64(c.Sector), 10))
	}
	if c.Token != "" {
		q.Set("token", c.Token)
	}
	u := url.URL{Scheme: scheme, Host: c.ServerAddr, Path: path, RawQuery: q.Encode()}
	return u.String()
}

// Client receives the frames of one sector.
type Client struct {
	conn   *websocket.Conn
	frames chan server.Frame
	done   chan struct{}

	connected atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once

	err   error
	errMu sync.Mutex

	config Config
	logger log.Log
}

func NewClient(config Config, logger log.Log) *Client {
	if config.FrameBufferSize <= 0 {
		config.FrameBufferSize = DefaultClientConfig().FrameBufferSize
	}
	return &Client{
		frames: make(chan server.Frame, config.FrameBufferSize),
		done:   make(chan struct{}),
		config: config,
		logger: logger.With(log.String("component", "client")),
	}
}

// Connect dials the feed and starts reading frames.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if c.connected.Load() {
		return ErrAlreadyConnected
	}
	if err := c.config.validate(); err != nil {
		return err
	}

	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.config.url("ws", "/ws"), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		return fmt.Errorf("connect to %s: %w", c.config.ServerAddr, err)
	}

	c.conn = conn
	c.connected.Store(true)
	c.logger.Info("connected to feed",
		log.String("addr", c.config.ServerAddr),
		log.Int64("sector", int64(c.config.Sector)),
	)

	go c.read()
	return nil
}

// Frames is closed when the connection ends; Err then tells why.
func (c *Client) Frames() <-chan server.Frame {
	return c.frames
}

func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Client) read() {
	defer close(c.frames)

	for {
		var f server.Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if !c.closed.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.errMu.Lock()
				c.err = err
				c.errMu.Unlock()
			}
			c.connected.Store(false)
			return
		}
		select {
		case c.frames <- f:
		case <-c.done:
			return
		}
	}
}

// Close ends the subscription.
func (c *Client) Close() error {
	if !c.connected.Load() && c.conn == nil {
		return ErrNotConnected
	}
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		err = c.conn.Close()
		c.logger.Info("disconnected from feed")
	})
	return err
}

// Sectors lists the sectors the feed has published so far.
func Sectors(ctx context.Context, config Config) ([]server.SectorInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.url("http", "/sectors"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("list sectors: %s", resp.Status)
	}

	var infos []server.SectorInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return nil, fmt.Errorf("decode sector list: %w", err)
	}
	return infos, nil
}
