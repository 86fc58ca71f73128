package message

import (
	"maps"
	"sort"

	"github.com/google/uuid"
)

// Context is the execution context of a single message. It is read-only once built.
type Context struct {
	id         string
	properties map[string]string
}

// NewContext builds a context. The property map is copied.
func NewContext(id string, properties map[string]string) Context {
	return Context{
		id:         id,
		properties: maps.Clone(properties),
	}
}

// NewID returns a fresh message identifier in urn:uuid form.
func NewID() string {
	return "urn:uuid:" + uuid.NewString()
}

// MessageID returns the message's unique identifier.
func (c Context) MessageID() string {
	return c.id
}

// Property looks up a property by name.
func (c Context) Property(name string) (string, bool) {
	v, ok := c.properties[name]
	return v, ok
}

// PropertyNames returns the property names in sorted order.
func (c Context) PropertyNames() []string {
	names := make([]string, 0, len(c.properties))
	for name := range c.properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithProperty returns a copy of the context with one property set.
func (c Context) WithProperty(name, value string) Context {
	props := maps.Clone(c.properties)
	if props == nil {
		props = make(map[string]string, 1)
	}
	props[name] = value
	return Context{id: c.id, properties: props}
}
