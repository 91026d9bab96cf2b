package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/fulldump/box"
	"github.com/klauspost/compress/gzip"
)

// Compression gzips responses for clients that accept it.
var Compression = CompressionLevel(gzip.BestSpeed)

// CompressionLevel builds a gzip interceptor. A level the writer refuses
// leaves responses uncompressed.
func CompressionLevel(level int) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			r := box.GetRequest(ctx)
			w := box.GetResponse(ctx)

			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next(ctx)
				return
			}

			gz, err := gzip.NewWriterLevel(w, level)
			if err != nil {
				next(ctx)
				return
			}
			defer gz.Close()

			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Add("Vary", "Accept-Encoding")
			gzw := gzipResponseWriter{Writer: gz, ResponseWriter: w}
			box.GetBoxContext(ctx).Response = gzw
			next(ctx)
		}
	}
}

// Gzip Compression
type gzipResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

// Flush pushes compressed NDJSON lines to the client as they are produced.
func (w gzipResponseWriter) Flush() {
	if gz, ok := w.Writer.(*gzip.Writer); ok {
		gz.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
