package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorMagenta = 35

	colorBold = 1
)

func colorize(s string, noColor bool, codes ...int) string {
	if noColor {
		return s
	}
	for _, c := range codes {
		s = fmt.Sprintf("\x1b[%dm%s\x1b[0m", c, s)
	}
	return s
}

var levelColors = map[string][]int{
	zerolog.LevelTraceValue: {colorMagenta},
	zerolog.LevelDebugValue: {colorYellow},
	zerolog.LevelInfoValue:  {colorGreen},
	zerolog.LevelWarnValue:  {colorRed},
	zerolog.LevelErrorValue: {colorRed, colorBold},
	zerolog.LevelFatalValue: {colorRed, colorBold},
	zerolog.LevelPanicValue: {colorRed, colorBold},
}

// formatLevel renders the level column as a fixed width "| LEVEL |".
func formatLevel(noColor bool) zerolog.Formatter {
	return func(i interface{}) string {
		var label string
		switch ll := i.(type) {
		case string:
			label = fmt.Sprintf("%-5s", strings.ToUpper(ll))
			if codes, ok := levelColors[ll]; ok {
				label = colorize(label, noColor, codes...)
			} else {
				label = colorize(label, noColor, colorBold)
			}
		case nil:
			label = colorize("???  ", noColor, colorBold)
		default:
			label = strings.ToUpper(fmt.Sprintf("%-5s", ll))[0:5]
		}
		return fmt.Sprintf("| %s |", label)
	}
}

// lockedWriter serializes writes so concurrent log lines never interleave.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func InitializeLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	noColor := os.Getenv("NO_COLOR") != ""
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:         &lockedWriter{w: colorable.NewColorable(os.Stdout)},
		TimeFormat:  time.RFC3339,
		NoColor:     noColor,
		FormatLevel: formatLevel(noColor),
	})
}

// LoggerMiddleware logs one access line per request and turns panics
// into 500 responses.
func LoggerMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Interface("recover_info", rec).
						Bytes("debug_stack", debug.Stack()).
						Str("request_id", middleware.GetReqID(r.Context())).
						Msg("HTTP endpoint panic")

					http.Error(ww, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}

				logger.Info().
					Str("type", "access").
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("remote_ip", r.RemoteAddr).
					Str("method", r.Method).
					Str("url", r.URL.Path).
					Str("proto", r.Proto).
					Int("status", ww.Status()).
					Float64("latency_ms", float64(time.Since(start).Nanoseconds())/1e6).
					Int("bytes_out", ww.BytesWritten()).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
