package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/fulldump/box"
	"go.uber.org/zap"

	"github.com/fulldump/slotpool/metrics"
	"github.com/fulldump/slotpool/registry"
)

var ErrUnauthorized = errors.New("unauthorized")
var ErrUnavailable = errors.New("temporary unavailable")

func RecoverFromPanic(next box.H) box.H {
	return func(ctx context.Context) {
		defer func() {
			if err := recover(); err != nil {
				debug.PrintStack()
				box.SetError(ctx, fmt.Errorf("panic: %v", err))
			}
		}()
		next(ctx)
	}
}

// statusRecorder remembers the status code sent to the client.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) Status() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

func recordStatus(ctx context.Context) *statusRecorder {
	c := box.GetBoxContext(ctx)
	if r, ok := c.Response.(*statusRecorder); ok {
		return r
	}
	r := &statusRecorder{ResponseWriter: c.Response}
	c.Response = r
	return r
}

func AccessLog(l *zap.Logger) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			r := box.GetRequest(ctx)
			rec := recordStatus(ctx)
			now := time.Now()
			defer func() {
				l.Info("access",
					zap.String("remote", formatRemoteAddr(r)),
					zap.String("method", r.Method),
					zap.String("url", r.URL.String()),
					zap.Int("status", rec.Status()),
					zap.Duration("elapsed", time.Since(now)),
				)
			}()

			next(ctx)
		}
	}
}

// Instrument records request count and latency by method and action.
func Instrument(m *metrics.HTTP) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			r := box.GetRequest(ctx)
			rec := recordStatus(ctx)
			now := time.Now()

			next(ctx)

			m.Observe(r.Method, actionName(r.URL.Path), rec.Status(), time.Since(now))
		}
	}
}

// actionName returns the ':action' suffix of a path, 'resource' for plain
// resource calls.
func actionName(path string) string {
	i := strings.LastIndex(path, ":")
	if i < 0 || i == len(path)-1 {
		return "resource"
	}
	return path[i+1:]
}

func formatRemoteAddr(r *http.Request) string {
	xorigin := strings.TrimSpace(strings.Split(
		r.Header.Get("X-Forwarded-For"), ",")[0])
	if xorigin != "" {
		return xorigin
	}

	i := strings.LastIndex(r.RemoteAddr, ":")
	if i < 0 {
		return r.RemoteAddr
	}
	return r.RemoteAddr[0:i]
}

// Authenticate checks the X-Api-Key and X-Api-Secret headers. It lets
// everything through when no key is configured.
func Authenticate(apiKey, apiSecret string) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			if apiKey == "" && apiSecret == "" {
				next(ctx)
				return
			}

			r := box.GetRequest(ctx)
			keyOk := subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Api-Key")), []byte(apiKey)) == 1
			secretOk := subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Api-Secret")), []byte(apiSecret)) == 1
			if !keyOk || !secretOk {
				box.SetError(ctx, ErrUnauthorized)
				return
			}

			next(ctx)
		}
	}
}

func InterceptorUnavailable(r *registry.Registry) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {

			status := r.GetStatus()
			if status == registry.StatusOpening {
				box.SetError(ctx, fmt.Errorf("%w: opening", ErrUnavailable))
				return
			}
			if status == registry.StatusClosing {
				box.SetError(ctx, fmt.Errorf("%w: closing", ErrUnavailable))
				return
			}
			next(ctx)
		}
	}
}
