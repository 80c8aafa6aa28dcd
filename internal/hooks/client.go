// internal/hooks/client.go
// Fire-and-forget webhook events for persona completions
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"chaibuddies/internal/dispatcher"
)

// Event types
const (
	EventReply = "persona_reply"
	EventError = "persona_error"
)

// Event is the JSON body posted to the webhook
type Event struct {
	Type      string            `json:"type"`
	Source    string            `json:"source"`
	Timestamp int64             `json:"timestamp"`
	Data      map[string]string `json:"data,omitempty"`
}

// Client posts events to a single endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
	logger     *log.Logger
	wg         sync.WaitGroup
}

type Option func(*Client)

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 2 * time.Second,
		},
		now:    time.Now,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record implements dispatcher.Recorder. Only metadata leaves the process.
func (c *Client) Record(_ context.Context, call dispatcher.Call) {
	data := map[string]string{
		"persona":    call.PersonaID,
		"group":      strconv.FormatBool(call.Group),
		"tone":       string(call.Tone),
		"latency_ms": strconv.FormatInt(call.Latency.Milliseconds(), 10),
	}
	typ := EventReply
	if call.Err != nil {
		typ = EventError
		data["error"] = truncate(call.Err.Error(), 200)
	} else {
		data["reply_chars"] = strconv.Itoa(call.ReplyChars)
	}
	c.Emit(typ, data)
}

// Emit sends an event asynchronously
func (c *Client) Emit(eventType string, data map[string]string) {
	event := Event{
		Type:      eventType,
		Source:    "chaibuddies",
		Timestamp: c.now().Unix(),
		Data:      data,
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.send(event)
	}()
}

// Wait blocks until every emitted event has been sent or dropped
func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) send(event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		c.logger.Printf("[hooks] failed to marshal event: %v", err)
		return
	}

	resp, err := c.httpClient.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		// Receiver not running
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.Printf("[hooks] event rejected with status %d", resp.StatusCode)
	}
}

// truncate caps s at maxLen bytes without splitting a rune
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
