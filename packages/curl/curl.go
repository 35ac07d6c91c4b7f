// Package curl parses curl command lines into request descriptors, so a
// block pasted straight from a browser's "copy as cURL" works like native
// syntax.
package curl

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/devraw/restfile/packages/core/parser"
)

// Warning reports a curl flag this parser does not understand or could
// not apply. Non-fatal; the flag is skipped.
type Warning struct {
	Flag    string
	Message string
}

func (w Warning) String() string {
	if w.Message != "" {
		return w.Message
	}
	return "unrecognized curl flag: " + w.Flag
}

// IsCurl reports whether a block body is a curl command.
func IsCurl(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed == "curl" || strings.HasPrefix(trimmed, "curl ") ||
		strings.HasPrefix(trimmed, "curl\t") || strings.HasPrefix(trimmed, "curl\n") ||
		strings.HasPrefix(trimmed, "curl\\")
}

// Parse converts a curl command into an unresolved descriptor. Unrecognized
// flags come back as warnings; a missing URL or unterminated quoting is a
// SyntaxError.
func Parse(text string) (*parser.Descriptor, []Warning, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, nil, err
	}
	if len(tokens) == 0 || tokens[0] != "curl" {
		return nil, nil, &parser.SyntaxError{Message: "not a curl command"}
	}
	tokens = tokens[1:]

	d := &parser.Descriptor{}
	var warnings []Warning
	var data []string
	explicitMethod := false
	getWithQuery := false

	i := 0
	next := func(flag string) (string, error) {
		if i+1 >= len(tokens) {
			return "", &parser.SyntaxError{Message: "missing value for " + flag}
		}
		i++
		return tokens[i], nil
	}

	for i = 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok {
		case "-X", "--request":
			v, err := next(tok)
			if err != nil {
				return nil, warnings, err
			}
			d.Method = strings.ToUpper(v)
			explicitMethod = true

		case "-H", "--header":
			v, err := next(tok)
			if err != nil {
				return nil, warnings, err
			}
			name, value, ok := strings.Cut(v, ":")
			if !ok || strings.TrimSpace(name) == "" {
				warnings = append(warnings, Warning{
					Flag:    tok,
					Message: fmt.Sprintf("ignoring malformed header %q", v),
				})
				continue
			}
			d.Headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))

		case "-d", "--data", "--data-raw", "--data-binary", "--data-urlencode":
			v, err := next(tok)
			if err != nil {
				return nil, warnings, err
			}
			data = append(data, v)

		case "-u", "--user":
			v, err := next(tok)
			if err != nil {
				return nil, warnings, err
			}
			d.Headers.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(v)))

		case "-b", "--cookie":
			v, err := next(tok)
			if err != nil {
				return nil, warnings, err
			}
			d.Headers.Set("Cookie", v)

		case "-F", "--form":
			v, err := next(tok)
			if err != nil {
				return nil, warnings, err
			}
			d.Form = append(d.Form, parseFormField(v))

		case "-A", "--user-agent":
			v, err := next(tok)
			if err != nil {
				return nil, warnings, err
			}
			d.Headers.Set("User-Agent", v)

		case "-e", "--referer":
			v, err := next(tok)
			if err != nil {
				return nil, warnings, err
			}
			d.Headers.Set("Referer", v)

		case "--url":
			v, err := next(tok)
			if err != nil {
				return nil, warnings, err
			}
			if err := setURL(d, v); err != nil {
				return nil, warnings, err
			}

		case "-G", "--get":
			getWithQuery = true

		case "-L", "--location":
			d.Options.FollowRedirects = true

		case "--compressed":
			d.Options.Compressed = true

		default:
			if strings.HasPrefix(tok, "-") {
				warnings = append(warnings, Warning{Flag: tok})
				// Skip the flag's value when the following token is clearly
				// not a URL or another flag.
				if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !looksLikeURL(tokens[i+1]) {
					i++
				}
				continue
			}
			if err := setURL(d, tok); err != nil {
				return nil, warnings, err
			}
		}
	}

	if d.URL == "" {
		return nil, warnings, &parser.SyntaxError{Message: "no URL in curl command"}
	}

	if len(data) > 0 {
		joined := strings.Join(data, "&")
		if getWithQuery {
			sep := "?"
			if strings.Contains(d.URL, "?") {
				sep = "&"
			}
			d.URL += sep + joined
		} else {
			d.Body = joined
			if !explicitMethod {
				d.Method = "POST"
			}
		}
	}
	if len(d.Form) > 0 && !explicitMethod && d.Method == "" {
		d.Method = "POST"
	}
	if d.Method == "" {
		d.Method = "GET"
	}

	return d, warnings, nil
}

func setURL(d *parser.Descriptor, tok string) error {
	if d.URL != "" && d.URL != tok {
		return &parser.SyntaxError{Message: fmt.Sprintf("ambiguous URL: %q and %q", d.URL, tok)}
	}
	d.URL = tok
	return nil
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "{{")
}

// parseFormField splits a -F value. "name=@path" is a file field,
// "name=value" a plain one.
func parseFormField(v string) parser.FormField {
	name, value, ok := strings.Cut(v, "=")
	if !ok {
		return parser.FormField{Name: v}
	}
	if strings.HasPrefix(value, "@") {
		// Strip curl's ";type=..." suffix from file fields.
		path := strings.TrimPrefix(value, "@")
		if idx := strings.Index(path, ";"); idx >= 0 {
			path = path[:idx]
		}
		return parser.FormField{Name: name, FilePath: path}
	}
	return parser.FormField{Name: name, Value: value}
}

// tokenize splits a command respecting single quotes, double quotes and
// backslash escapes. A backslash-newline pair is a line continuation.
func tokenize(cmd string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false
	inSingle := false
	inDouble := false
	escaped := false

	flush := func() {
		if inToken {
			tokens = append(tokens, current.String())
			current.Reset()
			inToken = false
		}
	}

	for _, r := range cmd {
		if escaped {
			escaped = false
			if r == '\n' {
				continue
			}
			current.WriteRune(r)
			inToken = true
			continue
		}

		switch {
		case r == '\\' && !inSingle:
			escaped = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			inToken = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			inToken = true
		case (r == ' ' || r == '\t' || r == '\n' || r == '\r') && !inSingle && !inDouble:
			flush()
		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	if inSingle || inDouble {
		return nil, &parser.SyntaxError{Message: "unterminated quote in curl command"}
	}
	if escaped {
		current.WriteRune('\\')
		inToken = true
	}
	flush()

	return tokens, nil
}
