package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	srvtest "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func runNATSServer(t *testing.T) *server.Server {
	t.Helper()
	opts := srvtest.DefaultTestOptions
	opts.Port = -1

	s := srvtest.RunServer(&opts)
	t.Cleanup(func() {
		s.Shutdown()
		s.WaitForShutdown()
	})
	return s
}

func TestNATSPublisher(t *testing.T) {
	ns := runNATSServer(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe(SubjectPrefix+">", msgs)
	require.NoError(t, err)
	defer func() { _ = s.Unsubscribe() }()
	require.NoError(t, sub.Flush())

	pub, err := Connect(ns.ClientURL(), zap.NewNop())
	require.NoError(t, err)
	defer pub.Close()

	sent, err := pub.Publish(context.Background(), TopicAssetAction, map[string]string{"assetId": "1", "action": "reboot"})
	require.NoError(t, err)
	require.NoError(t, pub.conn.Flush())

	select {
	case msg := <-msgs:
		assert.Equal(t, "vibermm.asset.action", msg.Subject)

		var got Event
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, TopicAssetAction, got.Topic)
		assert.JSONEq(t, `{"assetId":"1","action":"reboot"}`, string(got.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
	}
}

func TestNATSPublisherCancelledContext(t *testing.T) {
	ns := runNATSServer(t)

	pub, err := Connect(ns.ClientURL(), zap.NewNop())
	require.NoError(t, err)
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pub.Publish(ctx, TopicPatchDeploy, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNATSPublisherClosedConnection(t *testing.T) {
	ns := runNATSServer(t)

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	nc.Close()

	_, err = NewNATSPublisher(nc, zap.NewNop()).Publish(context.Background(), TopicPatchDeploy, []string{"device-1"})
	assert.ErrorIs(t, err, nats.ErrConnectionClosed)
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	pub := NewLogPublisher(zap.New(core))

	ev, err := pub.Publish(context.Background(), TopicAlertAck, map[string]string{"id": "ae-001"})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)

	entries := logs.FilterMessage("event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, TopicAlertAck, entries[0].ContextMap()["topic"])
}

func TestPublishUnmarshalablePayload(t *testing.T) {
	_, err := NewLogPublisher(zap.NewNop()).Publish(context.Background(), TopicAssetAction, make(chan int))
	assert.Error(t, err)
}
