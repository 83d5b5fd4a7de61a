package testinfra

import (
	"net/http"
	"net/http/httptest"
	"workmill/authority"
	"workmill/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// ExecuteRequest runs a request against the router and returns the recorded
// status and body.
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w
}

// BuildSession builds a signed-in session for handler tests.
func BuildSession(uid types.ID, name string, perms ...string) *session.Session {
	return &session.Session{
		Token:    "test-token-" + name,
		Identity: session.Identity{ID: uid, Name: name, Nickname: name},
		Perms:    authority.Permissions(perms),
	}
}

// SessionFilter injects a fixed session into every request, standing in for
// the cookie based auth filter.
func SessionFilter(s *session.Session) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session.SaveSession(ctx, s)
		ctx.Next()
	}
}
