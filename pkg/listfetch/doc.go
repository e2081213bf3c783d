// Package listfetch fetches a JSON array over HTTP and decodes it into typed records.
//
// Each call issues exactly one GET request on its own goroutine and settles
// exactly once with either the decoded records, in array order, or an *Error
// whose Kind says which step failed:
//
//	fut := listfetch.FetchList[Animal](ctx, fetcher, "https://example.com/animals")
//	animals, err := fut.Await(ctx)
//
// There are no retries, no caching and no internal logging. Cancel the context
// passed to the fetch to abort an in-flight request.
package listfetch
