package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Options tunes the CORS middleware. Empty Methods/Headers fall back to read-only defaults.
type Options struct {
	AllowedOrigins []string
	Methods        []string
	Headers        []string
}

// New returns a CORS middleware that honors a list of allowed origins. An origin entry may use a
// leading wildcard label such as https://*.github.io to admit any subdomain.
func New(opts Options) gin.HandlerFunc {
	allowAll := len(opts.AllowedOrigins) == 0
	exact := make(map[string]struct{}, len(opts.AllowedOrigins))
	var wildcards []wildcardOrigin
	for _, origin := range opts.AllowedOrigins {
		origin = strings.TrimRight(origin, "/")
		if origin == "*" {
			allowAll = true
			continue
		}
		if w, ok := parseWildcard(origin); ok {
			wildcards = append(wildcards, w)
			continue
		}
		exact[origin] = struct{}{}
	}

	methods := opts.Methods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodOptions}
	}
	headers := opts.Headers
	if len(headers) == 0 {
		headers = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	allowMethods := strings.Join(methods, ", ")
	allowHeaders := strings.Join(headers, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if allowAll || allowed(exact, wildcards, origin) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			}
		} else if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		c.Writer.Header().Set("Access-Control-Allow-Methods", allowMethods)
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type wildcardOrigin struct {
	scheme string
	suffix string
}

func parseWildcard(origin string) (wildcardOrigin, bool) {
	scheme, host, ok := strings.Cut(origin, "://")
	if !ok || !strings.HasPrefix(host, "*.") {
		return wildcardOrigin{}, false
	}
	return wildcardOrigin{scheme: scheme, suffix: host[1:]}, true
}

func allowed(exact map[string]struct{}, wildcards []wildcardOrigin, origin string) bool {
	origin = strings.TrimRight(origin, "/")
	if _, ok := exact[origin]; ok {
		return true
	}
	scheme, host, ok := strings.Cut(origin, "://")
	if !ok {
		return false
	}
	for _, w := range wildcards {
		// the suffix keeps its leading dot, so the bare apex domain never matches
		if w.scheme == scheme && strings.HasSuffix(host, w.suffix) && len(host) > len(w.suffix) {
			return true
		}
	}
	return false
}
