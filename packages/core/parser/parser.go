package parser

import (
	"strings"
)

var methods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
	"HEAD": true, "OPTIONS": true, "TRACE": true, "CONNECT": true,
	"LOCK": true, "UNLOCK": true, "PROPFIND": true, "PROPPATCH": true,
	"COPY": true, "MOVE": true, "MKCOL": true,
}

func IsMethod(s string) bool {
	return methods[strings.ToUpper(s)]
}

const (
	scriptOpenPre  = "< {%"
	scriptOpenTest = "> {%"
	scriptClose    = "%}"
)

// Parse converts one block body (delimiter and metadata already stripped by
// the selector) into an unresolved Descriptor. Line numbers in errors are
// relative to the block body.
func Parse(text string) (*Descriptor, error) {
	lines := strings.Split(normalize(text), "\n")
	d := &Descriptor{}

	i := 0

	// Leading blanks, comments and a pre-request script fence may precede
	// the request line.
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || isComment(trimmed) {
			i++
			continue
		}
		if strings.HasPrefix(trimmed, scriptOpenPre) {
			script, next, err := readFence(lines, i, scriptOpenPre)
			if err != nil {
				return nil, err
			}
			d.PreRequestScript = script
			i = next
			continue
		}
		break
	}

	if i >= len(lines) {
		return nil, &SyntaxError{Line: len(lines), Message: "missing request line"}
	}

	method, url, err := parseRequestLine(strings.TrimSpace(lines[i]), i+1)
	if err != nil {
		return nil, err
	}
	d.Method = method
	d.URL = url
	i++

	// Headers run until the first blank line. A line starting with
	// whitespace continues the previous header value; comment lines are
	// skipped.
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			i++
			break
		}
		if isComment(trimmed) {
			i++
			continue
		}
		if strings.HasPrefix(line, scriptOpenTest) {
			break
		}
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && d.Headers.Len() > 0 {
			last := &d.Headers.entries[len(d.Headers.entries)-1]
			last.Value += " " + strings.TrimSpace(line)
			i++
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, &SyntaxError{Line: i + 1, Message: "malformed header line: " + strings.TrimSpace(line)}
		}
		d.Headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))
		i++
	}

	// Everything remaining is the body, kept verbatim, except a trailing
	// test script fence and the "< path" file-reference form.
	var body []string
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, scriptOpenTest) {
			script, next, err := readFence(lines, i, scriptOpenTest)
			if err != nil {
				return nil, err
			}
			d.TestScript = script
			i = next
			continue
		}
		if len(body) == 0 && d.FileRef == "" && strings.HasPrefix(trimmed, "<") && !strings.HasPrefix(trimmed, scriptOpenPre) {
			path := strings.TrimSpace(strings.TrimPrefix(trimmed, "<"))
			if path != "" {
				d.FileRef = path
				i++
				continue
			}
		}
		body = append(body, lines[i])
		i++
	}
	d.Body = strings.TrimRight(strings.Join(body, "\n"), " \t\n")
	d.Body = strings.TrimLeft(d.Body, "\n")

	return d, nil
}

// ApplyMetadata copies recognized block metadata onto the descriptor.
func ApplyMetadata(d *Descriptor, meta map[string]string) {
	if meta == nil {
		return
	}
	if name, ok := meta["name"]; ok && name != "" {
		d.Name = name
	}
	if _, ok := meta["no-redirect"]; ok {
		d.Options.NoRedirect = true
	}
	if _, ok := meta["no-cookie-jar"]; ok {
		d.Options.NoCookieJar = true
	}
}

func parseRequestLine(line string, lineNo int) (method, url string, err error) {
	fields := strings.Fields(line)
	switch {
	case len(fields) == 0:
		return "", "", &SyntaxError{Line: lineNo, Message: "missing request line"}
	case len(fields) == 1:
		if IsMethod(fields[0]) {
			return "", "", &SyntaxError{Line: lineNo, Message: "missing URL after " + fields[0]}
		}
		return "GET", fields[0], nil
	case len(fields) == 2:
		if !IsMethod(fields[0]) {
			return "", "", &SyntaxError{Line: lineNo, Message: "unknown method: " + fields[0]}
		}
		return strings.ToUpper(fields[0]), fields[1], nil
	case len(fields) == 3:
		if !IsMethod(fields[0]) {
			return "", "", &SyntaxError{Line: lineNo, Message: "unknown method: " + fields[0]}
		}
		if !strings.HasPrefix(strings.ToUpper(fields[2]), "HTTP/") {
			return "", "", &SyntaxError{Line: lineNo, Message: "expected HTTP version, got " + fields[2]}
		}
		return strings.ToUpper(fields[0]), fields[1], nil
	default:
		return "", "", &SyntaxError{Line: lineNo, Message: "malformed request line: " + line}
	}
}

// readFence collects a `{% ... %}` script region starting at lines[start].
// Returns the script text and the index of the line after the fence.
func readFence(lines []string, start int, open string) (string, int, error) {
	first := strings.TrimSpace(lines[start])
	rest := strings.TrimSpace(strings.TrimPrefix(first, open))

	if strings.HasSuffix(rest, scriptClose) {
		return strings.TrimSpace(strings.TrimSuffix(rest, scriptClose)), start + 1, nil
	}

	var script []string
	if rest != "" {
		script = append(script, rest)
	}
	for i := start + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == scriptClose {
			return strings.Join(script, "\n"), i + 1, nil
		}
		if strings.HasSuffix(trimmed, scriptClose) {
			script = append(script, strings.TrimSpace(strings.TrimSuffix(trimmed, scriptClose)))
			return strings.Join(script, "\n"), i + 1, nil
		}
		script = append(script, lines[i])
	}
	return "", 0, &SyntaxError{Line: start + 1, Message: "unterminated script region"}
}

func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//")
}

func normalize(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}
