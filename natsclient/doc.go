// Package natsclient manages the NATS connection used to receive documents and
// publish results.
//
// The Client wraps a single *nats.Conn with a circuit breaker: after a configurable
// number of consecutive connection failures the circuit opens and Connect fails
// fast with ErrCircuitOpen until the backoff expires. Backoff doubles per round
// up to WithMaxBackoff.
//
//	client, err := natsclient.NewClient(url,
//		natsclient.WithName("binfile"),
//		natsclient.WithLogger(logger),
//		natsclient.WithMetrics(registry),
//	)
//	if err != nil {
//		return err
//	}
//	if err := client.Connect(ctx); err != nil {
//		return err
//	}
//	defer client.Close(context.Background())
//
// Handlers receive the full *nats.Msg so headers travel with the payload:
//
//	err = client.Subscribe(ctx, "docs.>", "writers", func(ctx context.Context, msg *nats.Msg) {
//		id := msg.Header.Get(nats.MsgIdHdr)
//		...
//	})
//
// TestClient starts a throwaway NATS server with testcontainers for integration
// tests.
package natsclient
