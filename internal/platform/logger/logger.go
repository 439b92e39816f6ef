// Package logger owns the process wide zerolog root and the request and payment scoped children built from it
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"paygate/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logging type handed around the codebase
type Logger = zerolog.Logger

// Options shape the root logger
type Options struct {
	Level        string
	Format       string // console or json
	Service      string
	Component    string
	Writer       io.Writer
	WithCaller   bool
	SampleEvery  int
	StaticFields map[string]string
}

// FromEnv reads LOG_* through the raw config view, which never logs itself
func FromEnv() Options {
	env := raw.New().Prefix("LOG_")
	return Options{
		Level:       strings.ToLower(env.Get("LEVEL", "info")),
		Format:      strings.ToLower(env.Get("FORMAT", "console")),
		Service:     env.Get("SERVICE", ""),
		Component:   env.Get("COMPONENT", ""),
		WithCaller:  env.GetBool("CALLER", false),
		SampleEvery: env.GetInt("SAMPLE_EVERY", 0),
	}
}

// ForService fills Service when LOG_SERVICE left it empty
func (o Options) ForService(name string) Options {
	if o.Service == "" {
		o.Service = name
	}
	return o
}

var (
	once sync.Once
	root atomic.Pointer[Logger]
)

// Init builds the root logger; only the first call has any effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := build(opt)
		root.Store(&l)
	})
}

// Get returns the root logger, building it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

func build(opt Options) Logger {
	var out io.Writer = os.Stdout
	if opt.Writer != nil {
		out = opt.Writer
	}
	if opt.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	fields := zerolog.New(out).Level(parseLevel(opt.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		fields = fields.Str("go_version", bi.GoVersion)
	}
	for k, v := range map[string]string{"service": opt.Service, "component": opt.Component} {
		if v != "" {
			fields = fields.Str(k, v)
		}
	}
	for k, v := range opt.StaticFields {
		fields = fields.Str(k, v)
	}
	if opt.WithCaller {
		fields = fields.Caller()
	}

	l := fields.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return l
}

// parseLevel falls back to debug for anything zerolog does not recognise
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

type ctxKey uint8

const (
	keyRequestID ctxKey = iota
	keyClientIP
	keyPaymentRef
)

var ctxFields = []struct {
	key  ctxKey
	name string
}{
	{keyRequestID, "request_id"},
	{keyClientIP, "client_ip"},
	{keyPaymentRef, "payment_ref"},
}

// WithRequest stores the request id and client ip for C
func WithRequest(ctx context.Context, reqID, clientIP string) context.Context {
	ctx = with(ctx, keyRequestID, reqID)
	return with(ctx, keyClientIP, clientIP)
}

// WithPayment stores the payment reference being verified
func WithPayment(ctx context.Context, reference string) context.Context {
	return with(ctx, keyPaymentRef, reference)
}

func with(ctx context.Context, k ctxKey, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, k, v)
}

// PaymentRef returns the reference set by WithPayment
func PaymentRef(ctx context.Context) string {
	s, _ := ctx.Value(keyPaymentRef).(string)
	return s
}

// C returns a child of the root carrying whatever request and payment fields ctx holds
func C(ctx context.Context) *Logger {
	b := Get().With()
	for _, f := range ctxFields {
		if s, _ := ctx.Value(f.key).(string); s != "" {
			b = b.Str(f.name, s)
		}
	}
	l := b.Logger()
	return &l
}

// Named returns a child tagged with component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
