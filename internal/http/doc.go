// Package http provides the HTTP client shared by all download workers.
//
// This package handles:
//   - Connection pooling sized for the worker count
//   - Per-request timeouts
//   - Mapping non-2xx responses to typed errors
//
// A single [Client] is created per run and passed to every worker; it holds
// no per-request state and is safe for concurrent use.
//
// # Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	resp, err := client.Get(ctx, "https://picsum.photos/1920/1080")
//	if err != nil {
//	    // errors.Is(err, http.ErrNotFound), errors.As(err, &*http.StatusError{}), ...
//	}
//	defer resp.Body.Close()
package http
