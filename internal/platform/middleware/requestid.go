package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"kbgate/pkg/requestcontext"
)

// TraceIDHeader carries the correlation id on responses so clients can match
// audit entries to their requests.
const TraceIDHeader = "X-Trace-Id"

// TraceID assigns every request a correlation identifier. An inbound
// X-Trace-Id is honored so upstream proxies can stitch traces together.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set(TraceIDHeader, traceID)
		ctx := requestcontext.WithTraceID(r.Context(), traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
