package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(ctx *gin.Context) {
		v, _ := ctx.Get(CtxRequestID)
		ctx.String(http.StatusOK, v.(string))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	generated := w.Header().Get(requestIDHeader)
	if generated == "" || w.Body.String() != generated {
		t.Fatalf("expected generated id in header and context, got %q / %q", generated, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get(requestIDHeader) != "abc-123" {
		t.Fatalf("caller id should be kept, got %q", w.Header().Get(requestIDHeader))
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example"}))
	r.GET("/users", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight got %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Fatalf("allowed origin not reflected")
	}

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unknown origin must not be allowed")
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/x", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if w.Header().Get("X-Content-Type-Options") != "nosniff" || w.Header().Get("Content-Security-Policy") == "" {
		t.Fatalf("missing security headers: %v", w.Header())
	}
}

func TestLambdaContext(t *testing.T) {
	r := gin.New()
	r.Use(LambdaContext())
	r.GET("/x", func(ctx *gin.Context) {
		v, _ := ctx.Get(CtxLambdaID)
		s, _ := v.(string)
		ctx.String(http.StatusOK, s)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(lambdacontext.NewContext(req.Context(), &lambdacontext.LambdaContext{AwsRequestID: "aws-1"}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "aws-1" {
		t.Fatalf("expected aws request id, got %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Body.String() != "" {
		t.Fatalf("expected no id outside lambda, got %q", w.Body.String())
	}
}
