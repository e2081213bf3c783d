package listfetch

import (
	"context"
	"maps"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samvad-hq/listfetch/pkg/httpclient"
)

const snippetMaxLen = 512

// Fetcher holds the transport and request defaults shared by calls. It is
// immutable after New and safe for concurrent use.
type Fetcher struct {
	client  httpclient.Client
	timeout time.Duration
	headers map[string]string
	decode  DecodeOptions
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the transport. It takes precedence over WithTimeout.
func WithClient(client httpclient.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithTimeout sets the request timeout of the default resty transport.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) { f.timeout = timeout }
}

// WithHeaders adds request headers sent on every call.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) { f.headers = mergeHeaders(f.headers, headers) }
}

// WithDisallowUnknownFields makes decoding fail on keys the record does not declare.
func WithDisallowUnknownFields() Option {
	return func(f *Fetcher) { f.decode.DisallowUnknownFields = true }
}

// New builds a Fetcher. Without WithClient it uses a resty-backed transport.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: httpclient.DefaultTimeout,
		headers: map[string]string{"Accept": "application/json"},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = httpclient.NewRestyClient(f.timeout)
	}
	return f
}

// WithHeaders returns a copy of f that also sends headers. f is left unchanged.
func (f *Fetcher) WithHeaders(headers map[string]string) *Fetcher {
	cp := *f.orDefault()
	cp.headers = mergeHeaders(cp.headers, headers)
	return &cp
}

func (f *Fetcher) orDefault() *Fetcher {
	if f == nil {
		return New()
	}
	return f
}

// FetchList starts one GET request to url and returns immediately. The future
// settles exactly once, from the goroutine that performed the request.
// A nil f uses New() defaults.
func FetchList[T any](ctx context.Context, f *Fetcher, url string) *Future[[]T] {
	f = f.orDefault()
	fut := newFuture[[]T]()
	go func() {
		fut.settle(fetch[T](ctx, f, url))
	}()
	return fut
}

// FetchListFunc is the callback form of FetchList. onComplete is invoked
// exactly once, on the goroutine that performed the request.
func FetchListFunc[T any](ctx context.Context, f *Fetcher, url string, onComplete func(Result[[]T])) {
	f = f.orDefault()
	go func() {
		onComplete(fetch[T](ctx, f, url))
	}()
}

// Fetch is the blocking form of FetchList.
func Fetch[T any](ctx context.Context, f *Fetcher, url string) ([]T, error) {
	return fetch[T](ctx, f.orDefault(), url).Unwrap()
}

// fetch runs request → validate → decode and returns at the first terminal outcome.
func fetch[T any](ctx context.Context, f *Fetcher, url string) Result[[]T] {
	fail := func(e *Error) Result[[]T] {
		e.URL = url
		return Result[[]T]{Err: e}
	}

	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := f.client.Get(ctx, url, f.headers)
	if err != nil {
		return fail(&Error{Kind: KindTransport, Err: err})
	}
	if resp == nil || resp.StatusCode() == 0 {
		return fail(&Error{Kind: KindInvalidResponse})
	}

	status := resp.StatusCode()
	body := resp.Body()
	if status < http.StatusOK || status > 299 {
		return fail(&Error{Kind: KindServerError, StatusCode: status, Snippet: responseSnippet(body)})
	}
	if len(body) == 0 {
		return fail(&Error{Kind: KindInvalidData, StatusCode: status})
	}

	records, err := DecodeList[T](body, f.decode)
	if err != nil {
		return fail(&Error{Kind: KindDecoding, Err: err})
	}
	return Result[[]T]{Value: records}
}

func mergeHeaders(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	maps.Copy(out, base)
	for k, v := range extra {
		k, v = http.CanonicalHeaderKey(strings.TrimSpace(k)), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func responseSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= snippetMaxLen {
		return s
	}
	cut := snippetMaxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
