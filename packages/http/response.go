package http

import (
	"context"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/devraw/restfile/packages/core/parser"
)

type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Header looks up a header value case-insensitively.
func (r *Response) Header(name string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func (r *Response) IsJSON() bool {
	ct := r.Header("Content-Type")
	return strings.Contains(ct, "json")
}

// JSON parses the body. Callers check Exists() on the result; a non-JSON
// body yields a zero Result.
func (r *Response) JSON() gjson.Result {
	if !gjson.ValidBytes(r.Body) {
		return gjson.Result{}
	}
	return gjson.ParseBytes(r.Body)
}

func (r *Response) DurationMs() float64 {
	return float64(r.Duration.Microseconds()) / 1000.0
}

// Sender executes a fully-resolved descriptor. Implemented by the
// surrounding controller; retries, auth flows and redirect policy are its
// concern, not this library's.
type Sender interface {
	Send(ctx context.Context, d *parser.Descriptor) (*Response, error)
}
