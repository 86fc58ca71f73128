//go:build integration

package natsclient

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_PublishSubscribeWithHeaders(t *testing.T) {
	tc := NewTestClient(t, WithTestTimeout(5*time.Second))
	require.True(t, tc.IsReady())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan *nats.Msg, 1)
	require.NoError(t, tc.Client.Subscribe(ctx, "docs.in", "workers", func(_ context.Context, msg *nats.Msg) {
		received <- msg
	}))
	require.NoError(t, tc.Client.Flush(ctx))

	out := nats.NewMsg("docs.in")
	out.Header.Set(nats.MsgIdHdr, "msg-1")
	out.Data = []byte("<doc/>")
	require.NoError(t, tc.Client.PublishMsg(ctx, out))

	select {
	case msg := <-received:
		assert.Equal(t, "<doc/>", string(msg.Data))
		assert.Equal(t, "msg-1", msg.Header.Get(nats.MsgIdHdr))
	case <-ctx.Done():
		t.Fatal("message not received")
	}

	rtt, err := tc.Client.RTT()
	require.NoError(t, err)
	assert.Greater(t, rtt, time.Duration(0))
}
