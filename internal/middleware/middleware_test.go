package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-review/internal/config"
	"github.com/iliyamo/film-review/internal/utils"
)

const secret = "test-secret"

func newEcho() *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.JSON(http.StatusOK, echo.Map{"id": id})
	}, JWTAuth(secret))
	e.PUT("/reviews/:reviewerId", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, JWTAuth(secret), RequireSelf("reviewerId"))
	return e
}

func bearer(t *testing.T, uid uint64) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, uid, 5)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return "Bearer " + tok.Token
}

func TestJWTAuth(t *testing.T) {
	e := newEcho()
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid", bearer(t, 7), http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body)
			}
			if tc.want == http.StatusOK && !strings.Contains(rec.Body.String(), `"id":7`) {
				t.Fatalf("body = %s", rec.Body)
			}
		})
	}
}

func TestRequireSelf(t *testing.T) {
	e := newEcho()
	for path, want := range map[string]int{
		"/reviews/3":   http.StatusNoContent,
		"/reviews/4":   http.StatusForbidden,
		"/reviews/abc": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPut, path, nil)
		req.Header.Set("Authorization", bearer(t, 3))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("%s: status = %d, want %d", path, rec.Code, want)
		}
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	e := echo.New()
	e.Use(RequestID(), RequestLogger())
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("no request id generated")
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc" {
		t.Fatalf("request id = %q, want abc", got)
	}
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
		NewRedisCache(config.CacheConfig{Enabled: true}, nil),
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "" {
		t.Fatalf("status = %d, X-Cache = %q", rec.Code, rec.Header().Get("X-Cache"))
	}
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, gotHdr, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || gotHdr.Get("Content-Type") != "application/json" || string(body) != `{"a":1}` {
		t.Fatalf("decode = %d %v %q %v", status, gotHdr, body, ok)
	}
	if _, _, _, ok := decodePayload(bs[:5]); ok {
		t.Fatal("short payload decoded")
	}
}

func TestKeys(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/films/public?pageNo=2", nil)
	req.Header.Set("X-Real-Ip", "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/films/public")

	cc := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query", TTL: time.Second}
	k1 := cacheKeyFrom(cc, c, 0)
	req2 := httptest.NewRequest(http.MethodGet, "/api/films/public?pageNo=3", nil)
	k2 := cacheKeyFrom(cc, e.NewContext(req2, httptest.NewRecorder()), 0)
	if !strings.HasPrefix(k1, "cache:0:") || k1 == k2 {
		t.Fatalf("cache keys %q %q", k1, k2)
	}
	if k3 := cacheKeyFrom(cc, c, 1); k3 == k1 {
		t.Fatalf("generation not part of the key: %q", k3)
	}

	rc := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user"}
	if got := buildRateKey(rc, c); got != "rl:ip:10.0.0.1:user:guest" {
		t.Fatalf("rate key = %q", got)
	}
	c.Set(UserIDKey, uint64(9))
	if got := buildRateKey(rc, c); got != "rl:ip:10.0.0.1:user:9" {
		t.Fatalf("rate key = %q", got)
	}
}
