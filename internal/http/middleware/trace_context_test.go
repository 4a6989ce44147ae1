package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/levelup-backend/internal/observability"
	"github.com/yungbote/levelup-backend/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated when absent", "", false},
		{"kept when well formed", "req-0123456789", true},
		{"replaced when malformed", "bad id with spaces", false},
		{"replaced when too short", "abc", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			r := gin.New()
			r.Use(AttachTraceContext())
			r.GET("/x", func(c *gin.Context) {
				seen = ctxutil.RequestID(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.incoming != "" {
				req.Header.Set(headerRequestID, tc.incoming)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get(headerRequestID)
			if got == "" || got != seen {
				t.Fatalf("request id: header=%q context=%q", got, seen)
			}
			if tc.keep && got != tc.incoming {
				t.Fatalf("request id: want=%q got=%q", tc.incoming, got)
			}
			if !tc.keep && got == tc.incoming {
				t.Fatalf("request id %q should have been replaced", tc.incoming)
			}
			if rec.Header().Get(headerTraceID) == "" {
				t.Fatalf("trace id header missing")
			}
		})
	}
}

func TestMetricsSkipsProbesAndCollapsesUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/levels", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/healthcheck", "/api/levels", "/wp-admin.php"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var sb strings.Builder
	if err := m.WritePrometheus(&sb); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		`lu_api_requests_total{method="GET",route="/api/levels",status="200"} 1`,
		`lu_api_requests_total{method="GET",route="unmatched",status="404"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, `route="/healthcheck"`) {
		t.Fatalf("probe route should not be recorded\n%s", out)
	}
}
