package mask

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record and reports itself disabled so callers
// skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

// DefaultMaxBitmapPixels caps the number of pixels a single 2D bitmap may
// hold unless SetMaxBitmapPixels says otherwise.
const DefaultMaxBitmapPixels = 1 << 28

var maxBitmapPixels atomic.Int64

func init() {
	loggerPtr.Store(newNopLogger())
	maxBitmapPixels.Store(DefaultMaxBitmapPixels)
}

// SetLogger configures the logger used by the mask package.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: bounds moves and optimizations
//   - [slog.LevelWarn]: abandoned bitmap growth
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// SetMaxBitmapPixels sets the largest bitmap a 2D mask may allocate.
// Values <= 0 restore DefaultMaxBitmapPixels.
func SetMaxBitmapPixels(n int) {
	if n <= 0 {
		n = DefaultMaxBitmapPixels
	}
	maxBitmapPixels.Store(int64(n))
}

// MaxBitmapPixels returns the current bitmap size cap.
func MaxBitmapPixels() int {
	return int(maxBitmapPixels.Load())
}
