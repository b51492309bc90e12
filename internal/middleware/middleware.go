package middleware

import (
	"net/http"
	"os"
	"strings"
)

// allowedOrigins parses CORS_ORIGINS (comma-separated). An empty value means
// any origin is allowed, which matches how the dashboard is normally deployed
// (separate static host, public read-only API).
func allowedOrigins() map[string]struct{} {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return nil
	}
	allowed := map[string]struct{}{}
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}
	return allowed
}

func CORSMiddleware(next http.Handler) http.Handler {
	allowed := allowedOrigins()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Echo the origin back only if it's allowed
		_, ok := allowed[origin]
		if allowed == nil || ok {
			if allowed == nil {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin") // important for caches
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		w.Header().Set("Access-Control-Expose-Headers", "Server-Timing, Cache-Control")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
