package api

import (
	"fmt"
	"net/http"
	"time"
)

// TimingMiddleware records request duration in the X-Process-Time header.
func TimingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &timingWriter{ResponseWriter: w, start: time.Now()}
		next.ServeHTTP(wrapped, r)
	})
}

// timingWriter sets the header just before the status line is written;
// headers are immutable afterwards.
type timingWriter struct {
	http.ResponseWriter
	start       time.Time
	wroteHeader bool
}

func (t *timingWriter) WriteHeader(status int) {
	if !t.wroteHeader {
		t.Header().Set("X-Process-Time", fmt.Sprintf("%.6f", time.Since(t.start).Seconds()))
		t.wroteHeader = true
	}
	t.ResponseWriter.WriteHeader(status)
}

func (t *timingWriter) Write(b []byte) (int, error) {
	if !t.wroteHeader {
		t.WriteHeader(http.StatusOK)
	}
	return t.ResponseWriter.Write(b)
}
