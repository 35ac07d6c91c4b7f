// Package config loads the read-only settings this library consumes:
// environment profiles, default headers, the dotenv path and the timezone
// used by datetime functions.
package config
