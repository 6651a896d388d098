package server

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	clientdist "github.com/vango-dev/lokation/client/dist"
)

var thinClientETag = func() string {
	sum := sha256.Sum256(clientdist.LokationJS)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:]))
}()

func (s *Server) serveThinClient(w http.ResponseWriter, r *http.Request) {
	if len(clientdist.LokationJS) == 0 {
		http.Error(w, "Thin client not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", thinClientETag)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if s.config.DevMode {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	}

	if etagMatches(r.Header.Get("If-None-Match"), thinClientETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(clientdist.LokationJS)
}

// etagMatches reports whether an If-None-Match header lists etag,
// weak or strong.
func etagMatches(ifNoneMatchHeader, etag string) bool {
	if ifNoneMatchHeader == "" || etag == "" {
		return false
	}
	for _, part := range strings.Split(ifNoneMatchHeader, ",") {
		candidate := strings.TrimSpace(part)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
