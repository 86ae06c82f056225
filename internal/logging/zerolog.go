package logging

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to Logger. Key-value pairs are
// attached as fields, credential values are masked, and a trailing key
// without a value is logged under "!BADKEY" the way slog does it.
type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.emit(ctx, z.l.Debug(), msg, args)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.emit(ctx, z.l.Info(), msg, args)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.emit(ctx, z.l.Warn(), msg, args)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.emit(ctx, z.l.Error(), msg, args)
}

func (z *ZerologLogger) With(args ...any) Logger {
	c := z.l.With()
	forEachPair(redact(args), func(k string, v any) { c = c.Interface(k, v) })
	return &ZerologLogger{l: c.Logger()}
}

func (z *ZerologLogger) emit(ctx context.Context, e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	forEachPair(redact(args), func(k string, v any) {
		if err, ok := v.(error); ok {
			e = e.AnErr(k, err)
			return
		}
		e = e.Interface(k, v)
	})
	e.Ctx(ctx).Msg(msg)
}

func forEachPair(args []any, fn func(k string, v any)) {
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			fn("!BADKEY", args[i])
			return
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		fn(key, args[i+1])
	}
}
