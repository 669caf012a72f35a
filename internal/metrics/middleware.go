package metrics

import (
	"net/http"
	"time"
)

// statusWriter はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.statusCode == 0 {
		sw.statusCode = code
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.statusCode == 0 {
		sw.statusCode = http.StatusOK
	}
	return sw.ResponseWriter.Write(b)
}

// NewHTTPMiddleware はレスポンスのステータスコードとレイテンシを記録するミドルウェアを返す。
func NewHTTPMiddleware(c *Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			status := sw.statusCode
			if status == 0 {
				status = http.StatusOK
			}
			c.RecordHTTPStatus(status)
			c.RecordRequestLatency(time.Since(start))
		})
	}
}
