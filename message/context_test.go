package message

import (
	"strings"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContext_CopiesProperties(t *testing.T) {
	props := map[string]string{"targetDirectory": "/tmp/out"}
	ctx := NewContext("msg-1", props)
	props["targetDirectory"] = "/changed"

	v, ok := ctx.Property("targetDirectory")
	require.True(t, ok)
	assert.Equal(t, "/tmp/out", v)
	assert.Equal(t, "msg-1", ctx.MessageID())

	_, ok = ctx.Property("missing")
	assert.False(t, ok)
}

func TestContext_WithProperty(t *testing.T) {
	base := NewContext("id", nil)
	derived := base.WithProperty("a", "1")

	_, ok := base.Property("a")
	assert.False(t, ok, "base context must stay unchanged")

	v, ok := derived.Property("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, []string{"a"}, derived.PropertyNames())
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.True(t, strings.HasPrefix(a, "urn:uuid:"))
	assert.NotEqual(t, a, b)
}

func TestFromHeaders(t *testing.T) {
	h := nats.Header{}
	h.Set(HeaderMessageID, "urn:uuid:fa5ea72d-1bba-4edf-9799-4131ed17f8e1")
	h.Set("targetFileName", "pic.png")
	h.Add("multi", "first")
	h.Add("multi", "second")

	ctx := FromHeaders(h)
	assert.Equal(t, "urn:uuid:fa5ea72d-1bba-4edf-9799-4131ed17f8e1", ctx.MessageID())

	v, ok := ctx.Property("targetFileName")
	require.True(t, ok)
	assert.Equal(t, "pic.png", v)

	v, _ = ctx.Property("multi")
	assert.Equal(t, "first", v)

	_, ok = ctx.Property(HeaderMessageID)
	assert.False(t, ok)
}

func TestFromHeaders_GeneratesID(t *testing.T) {
	ctx := FromHeaders(nil)
	assert.True(t, strings.HasPrefix(ctx.MessageID(), "urn:uuid:"))
	assert.Empty(t, ctx.PropertyNames())
}

func TestFromHeaders_ReplacesPathLikeID(t *testing.T) {
	for _, id := range []string{"../../tmp/evil", "sub/dir", `..\evil`, ".", ".."} {
		t.Run(id, func(t *testing.T) {
			h := nats.Header{}
			h.Set(HeaderMessageID, id)

			ctx := FromHeaders(h)
			assert.NotEqual(t, id, ctx.MessageID())
			assert.True(t, strings.HasPrefix(ctx.MessageID(), "urn:uuid:"))
			assert.True(t, SafeID(ctx.MessageID()))
		})
	}
}

func TestSafeID(t *testing.T) {
	assert.True(t, SafeID("msg-7"))
	assert.True(t, SafeID("urn:uuid:fa5ea72d-1bba-4edf-9799-4131ed17f8e1"))
	assert.True(t, SafeID("a..b"))
	assert.False(t, SafeID(""))
	assert.False(t, SafeID(".."))
	assert.False(t, SafeID("a/b"))
	assert.False(t, SafeID(`a\b`))
}

func TestContext_Headers(t *testing.T) {
	ctx := NewContext("id-7", map[string]string{"k": "v"})
	h := ctx.Headers()
	assert.Equal(t, "id-7", h.Get(HeaderMessageID))
	assert.Equal(t, "v", h.Get("k"))

	again := FromHeaders(h)
	assert.Equal(t, ctx.MessageID(), again.MessageID())
	assert.Equal(t, ctx.PropertyNames(), again.PropertyNames())
}
