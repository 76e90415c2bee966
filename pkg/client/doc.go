// Package client provides a typed HTTP client for the shareboardd API,
// covering all four share operations: create, fetch, update, and the
// change long-poll.
//
// Payload types are shared with the service (internal/share), so a
// response decodes into exactly what the server encoded. Non-2xx
// responses surface as *APIError carrying the status code and the
// service's human-readable message.
//
// Usage:
//
//	c := client.New("http://localhost:8080")
//	created, err := c.CreateBoard(ctx, board)
//	...
//	changes, err := c.WaitForChanges(ctx, created.ID, created.ViewToken, 1)
//	if err == nil && changes.Changed {
//	    // changes.Board holds the fresh payload at changes.Revision
//	}
//
// WaitForChanges blocks up to the server's wait bound (20s by default);
// pass a cancellable context to stop polling earlier.
package client
