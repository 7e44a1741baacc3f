// Package client owns the connection to the game server (normally a Lich
// proxy on localhost). It frames the byte stream into lines, hands them
// over in batches, and writes commands back.
//
// A batch is closed as soon as no more input is buffered, so a burst of
// server output reaches the screen as a single update.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Sink receives framed input. Both methods are called from the read
// goroutine.
type Sink interface {
	// Lines delivers one batch of newline-stripped lines.
	Lines(batch []string)
	// Closed reports the end of the stream. err is nil on a clean EOF.
	Closed(err error)
}

// Metrics tracks transport throughput.
type Metrics struct {
	LinesReceived    int64 `json:"lines_received"`
	BatchesDelivered int64 `json:"batches_delivered"`
	BytesReceived    int64 `json:"bytes_received"`
	CommandsSent     int64 `json:"commands_sent"`
	ErrorCount       int64 `json:"error_count"`
	Uptime           int64 `json:"uptime_seconds"`
}

// Config holds the connection settings.
type Config struct {
	// Addr is the host:port of the game server.
	Addr string `json:"addr"`

	// MetricsAddr is the HTTP address for the metrics endpoint.
	// Empty string disables it.
	MetricsAddr string `json:"metrics_addr"`

	// MaxBatch caps the number of lines in one batch.
	MaxBatch int `json:"max_batch"`

	// DialTimeout bounds the initial connect.
	DialTimeout time.Duration `json:"dial_timeout"`
}

// DefaultConfig returns the settings for a local Lich proxy.
func DefaultConfig() Config {
	return Config{
		Addr:        "127.0.0.1:8000",
		MaxBatch:    256,
		DialTimeout: 5 * time.Second,
	}
}

// Conn is a live server connection.
type Conn struct {
	config  Config
	conn    net.Conn
	metrics Metrics
	started time.Time

	writeMu sync.Mutex
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	closed  atomic.Bool
}

// Dial connects to config.Addr.
func Dial(ctx context.Context, config Config) (*Conn, error) {
	d := net.Dialer{Timeout: config.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", config.Addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", config.Addr, err)
	}
	log.Printf("[INFO] Connected to %s", config.Addr)
	return New(conn, config), nil
}

// New wraps an established connection.
func New(conn net.Conn, config Config) *Conn {
	if config.MaxBatch <= 0 {
		config.MaxBatch = DefaultConfig().MaxBatch
	}
	return &Conn{config: config, conn: conn, started: time.Now()}
}

// Start runs the read loop, and the metrics server when configured,
// until the connection ends or ctx is cancelled.
func (c *Conn) Start(ctx context.Context, sink Sink) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.readLoop(sink)

	if c.config.MetricsAddr != "" {
		c.wg.Add(1)
		go c.serveMetrics(ctx)
	}

	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()
}

// Close shuts the connection, which unblocks the read loop, and waits
// for the background goroutines.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := c.conn.Close()
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("closing connection: %w", err)
	}
	return nil
}

// Outbound converts a line typed by the user into the form sent to the
// server: a leading '.' becomes ';' so Lich sees its script prefix.
func Outbound(cmd string) string {
	if strings.HasPrefix(cmd, ".") {
		return ";" + cmd[1:]
	}
	return cmd
}

// Send writes one command followed by a newline.
func (c *Conn) Send(cmd string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := io.WriteString(c.conn, Outbound(cmd)+"\n"); err != nil {
		atomic.AddInt64(&c.metrics.ErrorCount, 1)
		return fmt.Errorf("sending command: %w", err)
	}
	atomic.AddInt64(&c.metrics.CommandsSent, 1)
	return nil
}

// Metrics returns a snapshot of the transport counters.
func (c *Conn) Metrics() Metrics {
	return Metrics{
		LinesReceived:    atomic.LoadInt64(&c.metrics.LinesReceived),
		BatchesDelivered: atomic.LoadInt64(&c.metrics.BatchesDelivered),
		BytesReceived:    atomic.LoadInt64(&c.metrics.BytesReceived),
		CommandsSent:     atomic.LoadInt64(&c.metrics.CommandsSent),
		ErrorCount:       atomic.LoadInt64(&c.metrics.ErrorCount),
		Uptime:           int64(time.Since(c.started).Seconds()),
	}
}

// readLoop frames lines and delivers a batch whenever the reader has
// drained everything the socket handed it.
func (c *Conn) readLoop(sink Sink) {
	defer c.wg.Done()

	r := bufio.NewReaderSize(c.conn, 64*1024)
	batch := make([]string, 0, c.config.MaxBatch)

	deliver := func() {
		if len(batch) == 0 {
			return
		}
		atomic.AddInt64(&c.metrics.BatchesDelivered, 1)
		sink.Lines(batch)
		batch = make([]string, 0, c.config.MaxBatch)
	}

	for {
		line, err := r.ReadString('\n')
		if line != "" {
			atomic.AddInt64(&c.metrics.BytesReceived, int64(len(line)))
			atomic.AddInt64(&c.metrics.LinesReceived, 1)
			batch = append(batch, strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			deliver()
			switch {
			case err == io.EOF:
				log.Println("[INFO] Server closed the connection")
				sink.Closed(nil)
			case errors.Is(err, net.ErrClosed) || c.closed.Load():
				// Closed locally during shutdown.
			default:
				atomic.AddInt64(&c.metrics.ErrorCount, 1)
				log.Printf("[ERROR] Connection read error: %v", err)
				sink.Closed(fmt.Errorf("reading from server: %w", err))
			}
			return
		}
		if r.Buffered() == 0 || len(batch) >= c.config.MaxBatch {
			deliver()
		}
	}
}

// MetricsHandler serves the transport metrics.
func (c *Conn) MetricsHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Prometheus text format
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		m := c.Metrics()
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		counters := []struct {
			name, help string
			value      int64
		}{
			{"profanity_lines_received_total", "Total lines received from the server", m.LinesReceived},
			{"profanity_batches_delivered_total", "Total line batches delivered to the screen", m.BatchesDelivered},
			{"profanity_bytes_received_total", "Total bytes received from the server", m.BytesReceived},
			{"profanity_commands_sent_total", "Total commands sent", m.CommandsSent},
			{"profanity_errors_total", "Total transport errors", m.ErrorCount},
		}
		for _, ctr := range counters {
			fmt.Fprintf(w, "# HELP %s %s\n", ctr.name, ctr.help)
			fmt.Fprintf(w, "# TYPE %s counter\n", ctr.name)
			fmt.Fprintf(w, "%s %d\n", ctr.name, ctr.value)
		}
		fmt.Fprintf(w, "# HELP profanity_uptime_seconds Uptime in seconds\n")
		fmt.Fprintf(w, "# TYPE profanity_uptime_seconds gauge\n")
		fmt.Fprintf(w, "profanity_uptime_seconds %d\n", m.Uptime)
	})

	mux.HandleFunc("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(c.Metrics())
	})
	return mux
}

func (c *Conn) serveMetrics(ctx context.Context) {
	defer c.wg.Done()

	server := &http.Server{
		Addr:              c.config.MetricsAddr,
		Handler:           c.MetricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	log.Printf("[INFO] Metrics server listening on http://%s/metrics", c.config.MetricsAddr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("[ERROR] Metrics server: %v", err)
	}
}
