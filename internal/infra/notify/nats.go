package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	domorder "example.com/storefront/internal/domain/order"
)

const DefaultSubject = "orders.placed"

// Publisher is the part of jetstream.JetStream the notifier uses.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSNotifier publishes an OrderPlaced event to JetStream. The message id
// is the order id so redeliveries are deduplicated by the stream.
type NATSNotifier struct {
	js      Publisher
	subject string
}

func NewNATSNotifier(js Publisher, subject string) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{js: js, subject: subject}
}

func (n *NATSNotifier) OrderPlaced(ctx context.Context, o *domorder.Order) error {
	data, err := json.Marshal(newOrderPlaced(o))
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if _, err := n.js.Publish(ctx, n.subject, data, jetstream.WithMsgID(o.ID)); err != nil {
		return fmt.Errorf("publish %s: %w", n.subject, err)
	}
	return nil
}

// ConnectJetStream dials NATS and opens a JetStream context.
func ConnectJetStream(url string, timeout time.Duration) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url, nats.Timeout(timeout))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return nc, js, nil
}
