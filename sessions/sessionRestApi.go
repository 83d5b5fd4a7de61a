package sessions

import (
	"net/http"
	"time"
	"workmill/account"
	"workmill/bizerror"
	"workmill/session"

	"github.com/gin-gonic/gin"
)

func RegisterSessionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/session", middleWares...)
	g.GET("", DetailSession)
}

// DetailSession returns the signed-in session with freshly loaded permissions
// and slides the token expiration.
func DetailSession(c *gin.Context) {
	s := session.FindSession(c)
	if s == nil {
		panic(bizerror.ErrUnauthenticated)
	}

	now := time.Now()
	ttl := session.TokenExpiration - now.Sub(s.SigningTime)
	if ttl <= 0 {
		panic(bizerror.ErrUnauthenticated)
	}

	perms := account.LoadPermFunc(s.Identity.ID)
	refreshed := session.Session{Token: s.Token, Identity: s.Identity, Perms: perms,
		Privileges: s.Privileges, SigningTime: s.SigningTime}
	session.TokenCache.Set(s.Token, &refreshed, ttl)
	c.JSON(http.StatusOK, &refreshed)
}
