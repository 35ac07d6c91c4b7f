// Package http holds the types shared with the transport collaborator: the
// response shape stored for request-variable lookups and the Sender
// interface the surrounding controller implements. No network code lives
// here.
package http
