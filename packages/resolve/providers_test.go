package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devraw/restfile/packages/builtin"
	"github.com/devraw/restfile/packages/core/parser"
	"github.com/devraw/restfile/packages/core/selector"
	"github.com/devraw/restfile/packages/http"
	"github.com/devraw/restfile/packages/store"
)

func seededSnapshot(t *testing.T) *store.Snapshot {
	t.Helper()
	st := store.New()

	login := &parser.Descriptor{Method: "POST", URL: "https://x/auth", Body: `{"user":"alice"}`}
	login.Headers.Add("Content-Type", "application/json")

	st.Put("api.http", "login", &store.Entry{
		Request: login,
		Response: &http.Response{
			StatusCode: 200,
			Status:     "200 OK",
			Headers:    map[string]string{"X-Request-Id": "r-42"},
			Body:       []byte(`{"token":"tok-1","user":{"id":7,"roles":["admin","dev"]}}`),
		},
	})
	return st.Snapshot()
}

func TestRequestProvider_ResponsePaths(t *testing.T) {
	p := &RequestProvider{Snapshot: seededSnapshot(t)}
	ctx := &Context{Document: "api.http"}

	tests := []struct {
		name     string
		ref      string
		expected string
	}{
		{"token", "login.response.body.$.token", "tok-1"},
		{"nested id", "login.response.body.$.user.id", "7"},
		{"array index", "login.response.body.$.user.roles[0]", "admin"},
		{"status", "login.response.status", "200"},
		{"header", "login.response.headers.X-Request-Id", "r-42"},
		{"whole body", "login.response.body", `{"token":"tok-1","user":{"id":7,"roles":["admin","dev"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, p.CanResolve(tt.ref))
			v, found, err := p.Resolve(tt.ref, nil, ctx)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, tt.expected, stringify(v))
		})
	}
}

func TestRequestProvider_StructuredPathKeepsJSON(t *testing.T) {
	p := &RequestProvider{Snapshot: seededSnapshot(t)}
	v, found, err := p.Resolve("login.response.body.$.user", nil, &Context{Document: "api.http"})
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"id":7,"roles":["admin","dev"]}`, stringify(v))
}

func TestRequestProvider_RequestPaths(t *testing.T) {
	p := &RequestProvider{Snapshot: seededSnapshot(t)}
	ctx := &Context{Document: "api.http"}

	v, found, _ := p.Resolve("login.request.method", nil, ctx)
	require.True(t, found)
	assert.Equal(t, "POST", v)

	v, found, _ = p.Resolve("login.request.url", nil, ctx)
	require.True(t, found)
	assert.Equal(t, "https://x/auth", v)

	v, found, _ = p.Resolve("login.request.body.$.user", nil, ctx)
	require.True(t, found)
	assert.Equal(t, "alice", v)

	v, found, _ = p.Resolve("login.request.headers.content-type", nil, ctx)
	require.True(t, found)
	assert.Equal(t, "application/json", v)
}

func TestRequestProvider_NotRunIsNotFound(t *testing.T) {
	p := &RequestProvider{Snapshot: seededSnapshot(t)}

	_, found, err := p.Resolve("logout.response.body", nil, &Context{Document: "api.http"})
	require.NoError(t, err)
	assert.False(t, found)

	// Same request name, different document.
	_, found, _ = p.Resolve("login.response.body", nil, &Context{Document: "other.http"})
	assert.False(t, found)

	// Missing JSON path.
	_, found, _ = p.Resolve("login.response.body.$.nope", nil, &Context{Document: "api.http"})
	assert.False(t, found)
}

func TestRequestProvider_InResolver(t *testing.T) {
	r := NewResolver(
		NewSystemProvider(),
		&RequestProvider{Snapshot: seededSnapshot(t)},
	)

	got, diags := r.ResolveText("Bearer {{login.response.body.$.token}}", &Context{Document: "api.http"})
	require.Empty(t, diags)
	assert.Equal(t, "Bearer tok-1", got)
}

func TestFileProvider_DeclaredEarlierOnly(t *testing.T) {
	p := &FileProvider{Variables: []*selector.Variable{
		{Name: "token", Value: "early", Offset: 10},
		{Name: "token", Value: "later", Offset: 200},
	}}

	// Block at offset 100 only sees the first declaration.
	v, found, _ := p.Resolve("token", nil, &Context{Offset: 100})
	require.True(t, found)
	assert.Equal(t, "early", v)

	// A block below both declarations sees the last one.
	v, found, _ = p.Resolve("token", nil, &Context{Offset: 500})
	require.True(t, found)
	assert.Equal(t, "later", v)

	// A block above any declaration sees none.
	_, found, _ = p.Resolve("token", nil, &Context{Offset: 5})
	assert.False(t, found)
}

func TestFileProvider_DottedPathIntoJSONValue(t *testing.T) {
	p := &FileProvider{Variables: []*selector.Variable{
		{Name: "creds", Value: `{"user":"u1","pass":"p1"}`, Offset: 0},
		{Name: "plain", Value: "not json", Offset: 0},
	}}

	v, found, _ := p.Resolve("creds.user", nil, &Context{Offset: 100})
	require.True(t, found)
	assert.Equal(t, "u1", v)

	_, found, _ = p.Resolve("plain.user", nil, &Context{Offset: 100})
	assert.False(t, found)
}

func TestEnvironmentProvider_Structured(t *testing.T) {
	p := &EnvironmentProvider{Vars: map[string]any{
		"host": "api.example.com",
		"auth": map[string]any{"user": "u1", "scopes": []any{"read", "write"}},
	}}

	v, found, _ := p.Resolve("host", nil, nil)
	require.True(t, found)
	assert.Equal(t, "api.example.com", v)

	v, found, _ = p.Resolve("auth.user", nil, nil)
	require.True(t, found)
	assert.Equal(t, "u1", v)

	v, found, _ = p.Resolve("auth.scopes[1]", nil, nil)
	require.True(t, found)
	assert.Equal(t, "write", stringify(v))

	// Whole structured value substitutes as JSON text.
	v, found, _ = p.Resolve("auth", nil, nil)
	require.True(t, found)
	assert.JSONEq(t, `{"user":"u1","scopes":["read","write"]}`, stringify(v))

	_, found, _ = p.Resolve("missing", nil, nil)
	assert.False(t, found)
}

func TestProcessEnvProvider(t *testing.T) {
	p := &ProcessEnvProvider{Lookup: func(n string) (string, bool) {
		if n == "HOME_REGION" {
			return "eu-1", true
		}
		return "", false
	}}

	assert.True(t, p.CanResolve("HOME_REGION"))
	assert.False(t, p.CanResolve("NOPE"))

	v, found, _ := p.Resolve("HOME_REGION", nil, nil)
	require.True(t, found)
	assert.Equal(t, "eu-1", v)
}

func TestSystemProvider_MissingProcessEnvIsNotFound(t *testing.T) {
	p := NewSystemProvider(builtin.WithEnvLookup(func(string) (string, bool) { return "", false }))

	require.True(t, p.CanResolve("$processEnv"))
	_, found, err := p.Resolve("$processEnv", []string{"GONE"}, nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSystemProvider_InResolverKeepsLiteralForMissingEnv(t *testing.T) {
	r := NewResolver(NewSystemProvider(
		builtin.WithEnvLookup(func(string) (string, bool) { return "", false }),
	))

	got, diags := r.ResolveText("{{$processEnv GONE}}", &Context{})
	assert.Equal(t, "{{$processEnv GONE}}", got)
	require.Len(t, diags, 1)
	assert.Equal(t, KindUnresolved, diags[0].Kind)
}

func TestToGJSONPath(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"$.a.b", "a.b"},
		{"a.b", "a.b"},
		{"$.items[0].id", "items.0.id"},
		{"roles[1]", "roles.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, toGJSONPath(tt.in), "input %q", tt.in)
	}
}
