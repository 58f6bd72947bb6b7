package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// NATSPublisher bridges the in-process hub to a NATS subject for external
// consumers.
type NATSPublisher struct {
	log     *logan.Entry
	conn    *nats.Conn
	subject string
}

func NewNATSPublisher(log *logan.Entry, url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("darkpool-svc"),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to NATS")
	}

	return &NATSPublisher{log: log, conn: conn, subject: subject}, nil
}

// Run drains the subscription until the context is cancelled. Publish errors
// are logged and dropped: the broker is a best-effort consumer.
func (p *NATSPublisher) Run(ctx context.Context, sub <-chan BatchProcessed) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-sub:
			if !ok {
				return
			}
			p.publish(evt)
		}
	}
}

func (p *NATSPublisher) publish(evt BatchProcessed) {
	payload, err := json.Marshal(evt)
	if err != nil {
		p.log.WithError(err).Error("failed to marshal batch processed event")
		return
	}
	if err = p.conn.Publish(p.subject, payload); err != nil {
		p.log.WithError(err).WithField("batch_id", evt.BatchID).
			Error("failed to publish batch processed event")
	}
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
		p.conn.Close()
	}
}
