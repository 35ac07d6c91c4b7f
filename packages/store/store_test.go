package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devraw/restfile/packages/core/parser"
	"github.com/devraw/restfile/packages/http"
)

func entry(body string) *Entry {
	return &Entry{
		Request:  &parser.Descriptor{Method: "GET", URL: "https://x/a"},
		Response: &http.Response{StatusCode: 200, Body: []byte(body)},
	}
}

func TestStore_PutGet(t *testing.T) {
	s := New()
	s.Put("api.http", "login", entry("one"))

	got, ok := s.Get("api.http", "login")
	require.True(t, ok)
	assert.Equal(t, "one", got.Response.BodyString())
	assert.False(t, got.StoredAt.IsZero())

	_, ok = s.Get("api.http", "logout")
	assert.False(t, ok)

	// Same request name under another document is a distinct key.
	_, ok = s.Get("other.http", "login")
	assert.False(t, ok)
}

func TestStore_LastWriteWins(t *testing.T) {
	s := New()
	s.Put("api.http", "login", entry("one"))
	s.Put("api.http", "login", entry("two"))

	got, ok := s.Get("api.http", "login")
	require.True(t, ok)
	assert.Equal(t, "two", got.Response.BodyString())
}

func TestStore_Reset(t *testing.T) {
	s := New()
	s.Put("api.http", "login", entry("one"))
	s.Reset()

	_, ok := s.Get("api.http", "login")
	assert.False(t, ok)
}

func TestSnapshot_Isolation(t *testing.T) {
	s := New()
	s.Put("api.http", "login", entry("before"))

	snap := s.Snapshot()
	s.Put("api.http", "login", entry("after"))
	s.Put("api.http", "other", entry("new"))

	got, ok := snap.Get("api.http", "login")
	require.True(t, ok)
	assert.Equal(t, "before", got.Response.BodyString())

	_, ok = snap.Get("api.http", "other")
	assert.False(t, ok)
	assert.Equal(t, 1, snap.Len())
}

func TestSnapshot_NilSafe(t *testing.T) {
	var snap *Snapshot
	_, ok := snap.Get("api.http", "login")
	assert.False(t, ok)
	assert.Equal(t, 0, snap.Len())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Put("api.http", "login", entry("body"))
				s.Get("api.http", "login")
				s.Snapshot()
			}
		}()
	}
	wg.Wait()

	_, ok := s.Get("api.http", "login")
	assert.True(t, ok)
}
