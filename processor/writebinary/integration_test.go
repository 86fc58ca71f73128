//go:build integration

package writebinary_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/binfile/component"
	"github.com/c360/binfile/natsclient"
	"github.com/c360/binfile/processor/writebinary"
)

// 1x1 transparent PNG
const imageBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func startWriter(t *testing.T, ctx context.Context, tc *natsclient.TestClient, dir string, unique bool) component.Discoverable {
	t.Helper()

	cfg := writebinary.Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{Name: "in", Type: "nats", Subject: "test.documents", Queue: "writers", Required: true},
			},
			Outputs: []component.PortDefinition{
				{Name: "out", Type: "nats", Subject: "test.written"},
			},
		},
		BinaryElementPath:   "//image",
		TargetDirectory:     &writebinary.TargetConfig{Value: dir},
		TargetFileName:      &writebinary.TargetConfig{Expression: "//fileName"},
		ForceUniqueFileName: &unique,
	}
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	disc, err := writebinary.NewProcessor(raw, component.Dependencies{
		NATSClient: tc.Client,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	lc, ok := component.AsLifecycleComponent(disc)
	require.True(t, ok)
	require.NoError(t, lc.Initialize())
	require.NoError(t, lc.Start(ctx))
	t.Cleanup(func() { assert.NoError(t, lc.Stop(5*time.Second)) })

	return disc
}

func publishEntry(t *testing.T, ctx context.Context, tc *natsclient.TestClient, msgID string) <-chan *nats.Msg {
	t.Helper()

	received := make(chan *nats.Msg, 1)
	require.NoError(t, tc.Client.Subscribe(ctx, "test.written", "", func(_ context.Context, msg *nats.Msg) {
		received <- msg
	}))
	require.NoError(t, tc.Client.Flush(ctx))

	in := nats.NewMsg("test.documents")
	in.Header.Set(nats.MsgIdHdr, msgID)
	in.Data = []byte(`<Entry><image>` + imageBase64 + `</image><fileName>pic.png</fileName></Entry>`)
	require.NoError(t, tc.Client.PublishMsg(ctx, in))

	return received
}

func TestIntegration_ProcessorWritesAndPublishes(t *testing.T) {
	tc := natsclient.NewTestClient(t, natsclient.WithTestTimeout(5*time.Second))
	require.True(t, tc.IsReady())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	dir := t.TempDir()
	disc := startWriter(t, ctx, tc, dir, false)
	received := publishEntry(t, ctx, tc, "msg-7")

	select {
	case msg := <-received:
		want := filepath.Join(dir, "pic.png")
		assert.Equal(t, want, msg.Header.Get(writebinary.HeaderPath))
		assert.Equal(t, "msg-7", msg.Header.Get(nats.MsgIdHdr))

		doc, err := xmlquery.Parse(bytes.NewReader(msg.Data))
		require.NoError(t, err)
		assert.Equal(t, want, xmlquery.FindOne(doc, "//image").InnerText())

		expected, err := base64.StdEncoding.DecodeString(imageBase64)
		require.NoError(t, err)
		written, err := os.ReadFile(want)
		require.NoError(t, err)
		assert.Equal(t, expected, written)
	case <-ctx.Done():
		t.Fatal("rewritten document not published")
	}

	assert.True(t, disc.Health().Healthy)
}

func TestIntegration_PathLikeMessageIDStaysInDirectory(t *testing.T) {
	tc := natsclient.NewTestClient(t, natsclient.WithTestTimeout(5*time.Second))
	require.True(t, tc.IsReady())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	parent := t.TempDir()
	dir := filepath.Join(parent, "a", "b")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	startWriter(t, ctx, tc, dir, true)
	received := publishEntry(t, ctx, tc, "../../evil")

	select {
	case msg := <-received:
		path := msg.Header.Get(writebinary.HeaderPath)
		assert.Equal(t, dir, filepath.Dir(path))
		assert.True(t, strings.HasPrefix(filepath.Base(path), "urn:uuid:"))
		assert.True(t, strings.HasSuffix(path, "_pic.png"))
		assert.FileExists(t, path)
		assert.NoFileExists(t, filepath.Join(parent, "evil_pic.png"))
	case <-ctx.Done():
		t.Fatal("rewritten document not published")
	}
}
