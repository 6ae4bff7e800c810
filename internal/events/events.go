// Package events publishes console actions (asset actions, patch deployments,
// alert acknowledgements) for whatever listens on the bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vibermm/internal/telemetry"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Topics published by the console.
const (
	TopicAssetAction    = "asset.action"
	TopicPatchDeploy    = "patch.deploy"
	TopicAlertAck       = "alert.acknowledged"
	TopicDevicesDeleted = "devices.deleted"
)

// SubjectPrefix is prepended to a topic to form the NATS subject.
const SubjectPrefix = "vibermm."

type Event struct {
	ID      string          `json:"id"`
	Topic   string          `json:"topic"`
	Time    time.Time       `json:"time"`
	Payload json.RawMessage `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (Event, error)
	Close()
}

func newEvent(topic string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	return Event{ID: uuid.NewString(), Topic: topic, Time: time.Now().UTC(), Payload: raw}, nil
}

// NATSPublisher sends events as JSON on vibermm.<topic> subjects.
type NATSPublisher struct {
	conn *nats.Conn
	log  *zap.Logger
}

// Connect dials url. The connection reconnects on its own; Publish fails
// while it is down.
func Connect(url string, log *zap.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("vibermm"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return NewNATSPublisher(nc, log), nil
}

func NewNATSPublisher(nc *nats.Conn, log *zap.Logger) *NATSPublisher {
	return &NATSPublisher{conn: nc, log: log}
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, payload any) (Event, error) {
	ev, err := newEvent(topic, payload)
	if err != nil {
		return Event{}, err
	}
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return Event{}, fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(SubjectPrefix+topic, data); err != nil {
		telemetry.PublishError(topic)
		return Event{}, fmt.Errorf("publish %s: %w", topic, err)
	}

	p.log.Debug("event published", zap.String("topic", topic), zap.String("event_id", ev.ID))
	return ev, nil
}

// Close flushes buffered messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.log.Warn("nats drain failed", zap.Error(err))
		p.conn.Close()
	}
}

// LogPublisher writes events to the log. It is used when no NATS URL is set.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, topic string, payload any) (Event, error) {
	ev, err := newEvent(topic, payload)
	if err != nil {
		return Event{}, err
	}
	p.log.Info("event",
		zap.String("topic", topic),
		zap.String("event_id", ev.ID),
		zap.ByteString("payload", ev.Payload),
	)
	return ev, nil
}

func (p *LogPublisher) Close() {}
