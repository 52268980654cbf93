package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/history-museum/internal/config"
	"github.com/iliyamo/history-museum/internal/metrics"
)

// captureWriter tees the response body into buf (up to limit bytes) while
// forwarding everything to the client.
type captureWriter struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.truncated {
		if cw.limit > 0 && int64(cw.buf.Len()+len(b)) > cw.limit {
			cw.truncated = true
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

// cacheKey builds a stable key honoring prefix/strategy.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{"route", c.Path()}
	case "method_route":
		parts = []string{"method", r.Method, "route", c.Path()}
	case "method_route_query":
		parts = []string{"method", r.Method, "route", c.Path(), "q", r.URL.RawQuery}
	default: // "route_query"
		parts = []string{"route", c.Path(), "q", r.URL.RawQuery}
	}
	// Route patterns are shared across ids, so the concrete path is always
	// part of the key.
	parts = append(parts, "path", r.URL.Path)
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// cachedResponse is the stored form: [4 bytes status][4 bytes header length][header JSON][body].
type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

func (cr cachedResponse) encode() ([]byte, error) {
	hdr, err := json.Marshal(cr.header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8, 8+len(hdr)+len(cr.body))
	binary.BigEndian.PutUint32(out[0:4], uint32(cr.status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	out = append(out, hdr...)
	return append(out, cr.body...), nil
}

func decodeCachedResponse(bs []byte) (cachedResponse, bool) {
	if len(bs) < 8 {
		return cachedResponse{}, false
	}
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return cachedResponse{}, false
	}
	cr := cachedResponse{status: int(binary.BigEndian.Uint32(bs[0:4])), header: http.Header{}}
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &cr.header); err != nil {
			return cachedResponse{}, false
		}
	}
	cr.body = bs[8+hlen:]
	return cr, true
}

// NewRedisCache caches successful catalog responses in Redis.  Headers are
// stored with the body so a hit is byte-for-byte identical to the original
// response.  Requests from signed-in users bypass the cache so nothing
// user-specific can end up in a shared entry.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] || userID(c) != "anon" {
				return next(c)
			}
			key := cacheKey(cfg, c)

			if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				if cr, ok := decodeCachedResponse(bs); ok {
					metrics.CacheLookups.WithLabelValues("hit").Inc()
					for k, vals := range cr.header {
						// Echo sets Content-Length itself.
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(cr.status)
					_, _ = c.Response().Write(cr.body)
					return nil
				}
			}

			metrics.CacheLookups.WithLabelValues("miss").Inc()
			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := cachedResponse{status: cw.status, header: hdr, body: cw.buf.Bytes()}.encode()
			if err == nil {
				_ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
			}
			return nil
		}
	}
}
