// Package env loads environment profiles and .env files, and watches the
// config file for changes so profiles reload like editor settings do.
package env
