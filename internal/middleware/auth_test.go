package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/nikhilmurali32/SafeBites/internal/logger"
	"github.com/nikhilmurali32/SafeBites/internal/requestdata"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthTestRouter(t *testing.T) (*gin.Engine, *requestdata.RequestData) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	require.NoError(t, err)

	captured := &requestdata.RequestData{}
	router := gin.New()
	router.Use(NewAuthMiddleware(log, testSecret).RequireAuth())
	router.GET("/probe", func(c *gin.Context) {
		if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
			*captured = *rd
		}
		c.Status(http.StatusOK)
	})
	return router, captured
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	router, captured := newAuthTestRouter(t)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":     "auth0|1",
		"email":   "ana@example.com",
		"name":    "Ana",
		"picture": "https://img.example/ana.png",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "auth0|1", captured.UserID)
	require.Equal(t, "ana@example.com", captured.Email)
	require.Equal(t, "Ana", captured.Name)
	require.Equal(t, "https://img.example/ana.png", captured.Picture)
}

func TestRequireAuthAcceptsQueryToken(t *testing.T) {
	router, captured := newAuthTestRouter(t)

	token := signToken(t, testSecret, jwt.MapClaims{"sub": "auth0|2"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe?token="+token, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "auth0|2", captured.UserID)
}

func TestRequireAuthRejects(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing_token", header: "", want: http.StatusUnauthorized},
		{name: "garbage_token", header: "Bearer not.a.jwt", want: http.StatusUnauthorized},
		{
			name:   "wrong_secret",
			header: "Bearer " + signToken(t, "other-secret", jwt.MapClaims{"sub": "auth0|1"}),
			want:   http.StatusUnauthorized,
		},
		{
			name: "expired",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": "auth0|1",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			want: http.StatusUnauthorized,
		},
		{
			name:   "missing_subject",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"email": "ana@example.com"}),
			want:   http.StatusForbidden,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)
			require.Equal(t, tc.want, w.Code)
		})
	}
}
