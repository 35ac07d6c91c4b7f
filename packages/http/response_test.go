package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponse_Header(t *testing.T) {
	r := &Response{Headers: map[string]string{"Content-Type": "application/json; charset=utf-8"}}
	assert.Equal(t, "application/json; charset=utf-8", r.Header("content-type"))
	assert.Empty(t, r.Header("X-Missing"))
	assert.True(t, r.IsJSON())
}

func TestResponse_JSON(t *testing.T) {
	r := &Response{Body: []byte(`{"a":{"b":[1,2,3]}}`)}
	res := r.JSON()
	assert.True(t, res.Exists())
	assert.Equal(t, int64(2), res.Get("a.b.1").Int())

	bad := &Response{Body: []byte("not json")}
	assert.False(t, bad.JSON().Exists())
}

func TestResponse_DurationMs(t *testing.T) {
	r := &Response{Duration: 1500 * time.Microsecond}
	assert.InDelta(t, 1.5, r.DurationMs(), 0.001)
}
