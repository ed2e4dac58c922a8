package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const lokiFlushSize = 20

// LokiWriter buffers log lines and ships them to Loki's push API. It is
// meant to be tee'd next to stdout via io.MultiWriter.
type LokiWriter struct {
	url    string
	job    string
	client *http.Client
	mu     sync.Mutex
	buf    [][2]string
	ticker *time.Ticker
	done   chan struct{}
}

// NewLokiWriter returns nil when baseURL is empty.
func NewLokiWriter(baseURL, job string) *LokiWriter {
	if strings.TrimSpace(baseURL) == "" || job == "" {
		return nil
	}
	w := &LokiWriter{
		url:    strings.TrimSuffix(baseURL, "/") + "/loki/api/v1/push",
		job:    job,
		client: &http.Client{Timeout: 5 * time.Second},
		ticker: time.NewTicker(time.Second),
		done:   make(chan struct{}),
	}
	go w.flushLoop()
	return w
}

func (w *LokiWriter) Write(p []byte) (int, error) {
	now := strconv.FormatInt(time.Now().UnixNano(), 10)

	w.mu.Lock()
	for _, line := range bytes.Split(p, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		w.buf = append(w.buf, [2]string{now, string(line)})
	}
	needFlush := len(w.buf) >= lokiFlushSize
	w.mu.Unlock()

	if needFlush {
		go w.flush()
	}
	return len(p), nil
}

func (w *LokiWriter) flushLoop() {
	for {
		select {
		case <-w.done:
			return
		case <-w.ticker.C:
			w.flush()
		}
	}
}

func (w *LokiWriter) take() [][2]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	entries := w.buf
	w.buf = nil
	return entries
}

func (w *LokiWriter) flush() {
	entries := w.take()
	if len(entries) == 0 {
		return
	}
	values := make([][]string, len(entries))
	for i, e := range entries {
		values[i] = []string{e[0], e[1]}
	}
	raw, _ := json.Marshal(map[string]any{
		"streams": []map[string]any{{
			"stream": map[string]string{"job": w.job},
			"values": values,
		}},
	})
	req, err := http.NewRequest(http.MethodPost, w.url, bytes.NewReader(raw))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	// never log from here: the logger writes back into this writer
	resp, err := w.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

// Close flushes what is buffered and stops the background flusher.
func (w *LokiWriter) Close() error {
	w.ticker.Stop()
	close(w.done)
	w.flush()
	return nil
}
