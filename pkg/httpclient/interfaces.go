package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
//
// Implementations may return a non-nil Response together with a non-nil error
// when the transport failed after part of the exchange completed. Callers must
// check the error first.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
