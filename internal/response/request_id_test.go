package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func requestIDFor(t *testing.T, incoming string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		req.Header.Set("X-Request-ID", incoming)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Header().Get("X-Request-ID")
}

func TestRequestIDKeepsWellFormedClientID(t *testing.T) {
	id := uuid.New().String()
	if got := requestIDFor(t, id); got != id {
		t.Errorf("got %q, want the client's %q", got, id)
	}
}

func TestRequestIDReplacesGarbage(t *testing.T) {
	for _, incoming := range []string{"", "not-a-uuid", "<script>alert(1)</script>"} {
		got := requestIDFor(t, incoming)
		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("incoming %q: response ID %q is not a UUID", incoming, got)
		}
		if got == incoming {
			t.Errorf("incoming %q was echoed back verbatim", incoming)
		}
	}
}
