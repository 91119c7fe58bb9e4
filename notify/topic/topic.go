// Package topic forwards engine changes to a gocloud.dev/pubsub topic so
// that other processes can follow culture and context switches.
package topic

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/mempubsub"

	"github.com/pitabwire/lingua/culture"
	"github.com/pitabwire/lingua/notify"
)

// MetadataLanguage carries the culture of the change in message metadata.
const MetadataLanguage = "lang"

const shutdownTimeout = 30 * time.Second

// Message is the wire form of a notify.Change.
type Message struct {
	Property string `json:"property"`
	Culture  string `json:"culture"`
	BasePath string `json:"base_path,omitempty"`
}

// Encode converts a change to its wire form.
func Encode(change notify.Change) ([]byte, error) {
	return json.Marshal(Message{
		Property: string(change.Property),
		Culture:  change.Culture.String(),
		BasePath: change.BasePath,
	})
}

// Decode parses a message body produced by Encode.
func Decode(body []byte) (notify.Change, error) {
	var msg Message
	err := json.Unmarshal(body, &msg)
	if err != nil {
		return notify.Change{}, err
	}

	tag := culture.Invariant
	if msg.Culture != "" {
		tag, err = culture.Parse(msg.Culture)
		if err != nil {
			return notify.Change{}, err
		}
	}

	return notify.Change{
		Property: notify.Property(msg.Property),
		Culture:  tag,
		BasePath: msg.BasePath,
	}, nil
}

// Forwarder publishes every change it is handed.
type Forwarder struct {
	url string

	mu    sync.Mutex
	topic *pubsub.Topic
}

// Open connects to the topic at url, e.g. "mem://changes" or "nats://changes".
func Open(ctx context.Context, url string) (*Forwarder, error) {
	t, err := pubsub.OpenTopic(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Forwarder{url: url, topic: t}, nil
}

// Handle is a notify.Handler.
func (f *Forwarder) Handle(ctx context.Context, change notify.Change) error {
	f.mu.Lock()
	t := f.topic
	f.mu.Unlock()
	if t == nil {
		return errors.New("change forwarder is closed")
	}

	body, err := Encode(change)
	if err != nil {
		return err
	}

	metadata := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, metadata)
	if !change.Culture.IsInvariant() {
		metadata[MetadataLanguage] = change.Culture.String()
	}

	return t.Send(ctx, &pubsub.Message{
		Body:     body,
		Metadata: metadata,
	})
}

// Close shuts the topic down. Process local mem:// topics are shared by URL
// and are only detached, so other users of the same URL keep working.
func (f *Forwarder) Close(ctx context.Context) error {
	f.mu.Lock()
	t := f.topic
	f.topic = nil
	f.mu.Unlock()

	if t == nil || strings.HasPrefix(strings.ToLower(f.url), "mem://") {
		return nil
	}

	sctx := ctx
	if ctx.Err() != nil {
		sctx = context.Background()
	}
	sctx, cancel := context.WithTimeout(sctx, shutdownTimeout)
	defer cancel()

	return t.Shutdown(sctx)
}
