// Package retry retries transient failures with exponential backoff.
//
// Errors are judged with errors.Classify: transient errors are retried, invalid and
// fatal errors are returned at once. The process entry point uses it to connect to
// NATS:
//
//	err := retry.Do(ctx, retry.Startup(), func(ctx context.Context) error {
//	    return client.Connect(ctx)
//	})
package retry
