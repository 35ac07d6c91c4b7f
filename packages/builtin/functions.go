package builtin

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArgumentError reports a bad argument to a system function. It is fatal
// for the placeholder span that called the function, nothing else.
type ArgumentError struct {
	Func   string
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: argument %q %s", e.Func, e.Arg, e.Reason)
}

// Func evaluates one system function call.
type Func func(r *Registry, args []string) (any, error)

// Registry holds the built-in functions together with the clock, random
// source, environment lookup and dotenv mapping they draw from.
type Registry struct {
	funcs  map[string]Func
	clock  func() time.Time
	random io.Reader
	env    func(string) (string, bool)
	dotenv map[string]string
	loc    *time.Location
}

type Option func(*Registry)

// WithClock fixes the time source for $timestamp and the datetime functions.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) { r.clock = clock }
}

// WithRandom replaces the random source used by $guid and $randomInt.
func WithRandom(src io.Reader) Option {
	return func(r *Registry) { r.random = src }
}

func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(r *Registry) { r.env = lookup }
}

// WithDotenv supplies the parsed .env mapping backing $dotenv.
func WithDotenv(vars map[string]string) Option {
	return func(r *Registry) { r.dotenv = vars }
}

// WithLocation sets the timezone used by $localDatetime.
func WithLocation(loc *time.Location) Option {
	return func(r *Registry) { r.loc = loc }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		funcs:  make(map[string]Func),
		clock:  time.Now,
		random: rand.Reader,
		env:    os.LookupEnv,
		loc:    time.Local,
	}
	r.registerDefaults()
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["guid"] = funcGUID
	r.funcs["randomInt"] = funcRandomInt
	r.funcs["timestamp"] = funcTimestamp
	r.funcs["datetime"] = funcDatetime
	r.funcs["localDatetime"] = funcLocalDatetime
	r.funcs["processEnv"] = funcProcessEnv
	r.funcs["dotenv"] = funcDotenv
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Has reports whether a function name (without the $ prefix) is known.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// Call evaluates a system function. found is false for unknown names; a
// non-nil error means the arguments were bad. A (nil, true, nil) return
// means the function ran but has no value, e.g. a missing $processEnv
// variable, and callers treat it as not-found.
func (r *Registry) Call(name string, args []string) (value any, found bool, err error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, false, nil
	}
	v, err := fn(r, args)
	if err != nil {
		return nil, true, err
	}
	return v, true, nil
}

func funcGUID(r *Registry, _ []string) (any, error) {
	id, err := uuid.NewRandomFromReader(r.random)
	if err != nil {
		return nil, fmt.Errorf("generating uuid: %w", err)
	}
	return id.String(), nil
}

func funcRandomInt(r *Registry, args []string) (any, error) {
	if len(args) < 2 {
		return nil, &ArgumentError{Func: "$randomInt", Arg: strings.Join(args, " "), Reason: "wants min and max"}
	}
	min, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return nil, &ArgumentError{Func: "$randomInt", Arg: args[0], Reason: "is not an integer"}
	}
	max, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return nil, &ArgumentError{Func: "$randomInt", Arg: args[1], Reason: "is not an integer"}
	}
	if min >= max {
		return nil, &ArgumentError{Func: "$randomInt", Arg: args[0] + " " + args[1], Reason: "min must be below max"}
	}
	n, err := rand.Int(r.random, big.NewInt(max-min))
	if err != nil {
		return nil, fmt.Errorf("reading random source: %w", err)
	}
	return min + n.Int64(), nil
}

func funcTimestamp(r *Registry, args []string) (any, error) {
	t, err := shifted(r.clock().UTC(), "$timestamp", args)
	if err != nil {
		return nil, err
	}
	return t.Unix(), nil
}

func funcDatetime(r *Registry, args []string) (any, error) {
	return datetimeIn(r, args, time.UTC, "$datetime")
}

func funcLocalDatetime(r *Registry, args []string) (any, error) {
	return datetimeIn(r, args, r.loc, "$localDatetime")
}

func datetimeIn(r *Registry, args []string, loc *time.Location, fname string) (any, error) {
	if len(args) < 1 {
		return nil, &ArgumentError{Func: fname, Arg: "", Reason: "wants a format"}
	}
	layout := ""
	switch strings.ToLower(args[0]) {
	case "rfc1123":
		layout = time.RFC1123
	case "iso8601":
		layout = time.RFC3339
	default:
		layout = args[0]
	}
	t, err := shifted(r.clock().In(loc), fname, args[1:])
	if err != nil {
		return nil, err
	}
	return t.Format(layout), nil
}

func funcProcessEnv(r *Registry, args []string) (any, error) {
	if len(args) < 1 {
		return nil, &ArgumentError{Func: "$processEnv", Arg: "", Reason: "wants a variable name"}
	}
	v, ok := r.env(args[0])
	if !ok {
		return nil, nil
	}
	return v, nil
}

func funcDotenv(r *Registry, args []string) (any, error) {
	if len(args) < 1 {
		return nil, &ArgumentError{Func: "$dotenv", Arg: "", Reason: "wants a variable name"}
	}
	v, ok := r.dotenv[args[0]]
	if !ok {
		return nil, nil
	}
	return v, nil
}

// shifted applies an optional "offset unit" pair (e.g. "-1 d") to t.
// Units: y, M, w, d, h, m, s.
func shifted(t time.Time, fname string, args []string) (time.Time, error) {
	if len(args) == 0 {
		return t, nil
	}
	if len(args) < 2 {
		return t, &ArgumentError{Func: fname, Arg: args[0], Reason: "offset wants a unit"}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return t, &ArgumentError{Func: fname, Arg: args[0], Reason: "is not an integer offset"}
	}
	switch args[1] {
	case "y":
		return t.AddDate(n, 0, 0), nil
	case "M":
		return t.AddDate(0, n, 0), nil
	case "w":
		return t.AddDate(0, 0, 7*n), nil
	case "d":
		return t.AddDate(0, 0, n), nil
	case "h":
		return t.Add(time.Duration(n) * time.Hour), nil
	case "m":
		return t.Add(time.Duration(n) * time.Minute), nil
	case "s":
		return t.Add(time.Duration(n) * time.Second), nil
	default:
		return t, &ArgumentError{Func: fname, Arg: args[1], Reason: "is not a known unit (y M w d h m s)"}
	}
}
