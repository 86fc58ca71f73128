package message

import (
	"strings"

	"github.com/nats-io/nats.go"
)

// HeaderMessageID is the NATS header carrying the message identifier.
const HeaderMessageID = nats.MsgIdHdr

// FromHeaders builds a Context from NATS message headers. Only the first value of a
// multi-valued header becomes the property value. A header id that could not be
// used as a file name prefix is replaced by a generated one.
func FromHeaders(h nats.Header) Context {
	id := h.Get(HeaderMessageID)
	if !SafeID(id) {
		id = NewID()
	}

	props := make(map[string]string, len(h))
	for name, values := range h {
		if name == HeaderMessageID || len(values) == 0 {
			continue
		}
		props[name] = values[0]
	}

	return Context{id: id, properties: props}
}

// SafeID reports whether id is non-empty and contains no path elements.
func SafeID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

// Headers renders the context back into NATS headers.
func (c Context) Headers() nats.Header {
	h := nats.Header{}
	for name, value := range c.properties {
		h.Set(name, value)
	}
	h.Set(HeaderMessageID, c.id)
	return h
}
