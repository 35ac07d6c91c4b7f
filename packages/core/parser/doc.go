// Package parser turns the body of a single request block into a
// structured, unresolved request descriptor. It understands the native
// HTTP-like syntax (method line, headers, body); the curl surface syntax
// lives in packages/curl.
package parser
