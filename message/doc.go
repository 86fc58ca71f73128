// Package message defines the per-message execution context handed to processors
// together with the document being processed.
//
// A Context carries the message's unique identifier and a read-only property bag.
// Dynamic path queries reference properties with $ctx:name or get-property('name').
//
// When messages arrive over NATS, FromHeaders builds the Context from the message
// headers: the Nats-Msg-Id header becomes the identifier (a urn:uuid identifier is
// generated when it is absent) and every other header becomes a property.
//
//	mctx := message.FromHeaders(msg.Header)
//	dir, ok := mctx.Property("targetDirectory")
package message
