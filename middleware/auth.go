package middleware

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Key of the user id, both in the session cookie and in the gin context
const userkey = "user_id"

// identify resolves the caller from the Authorization header, falling back
// to the session cookie set at login. 0 means anonymous.
func identify(c *gin.Context, tokens *Tokens) uint {
	if header := c.GetHeader("Authorization"); header != "" {
		id, err := tokens.Verify(header)
		if err != nil {
			log.Printf("[AUTH-ERROR] Rejected bearer token: %v", err)
			return 0
		}
		return id
	}

	// no session middleware on this route
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return 0
	}
	session := sessions.Default(c)
	if id, ok := session.Get(userkey).(uint); ok {
		return id
	}
	return 0
}

// AuthRequired aborts the request when nobody is logged in.
func AuthRequired(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identify(c, tokens)
		if id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "reason": "Unauthenticated"})
			return
		}
		c.Set(userkey, id)
		c.Next()
	}
}

// OptionalAuth records the caller when there is one and lets anonymous
// requests through.
func OptionalAuth(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := identify(c, tokens); id != 0 {
			c.Set(userkey, id)
		}
		c.Next()
	}
}

// CurrentUser returns the id set by AuthRequired or OptionalAuth, 0 when
// anonymous.
func CurrentUser(c *gin.Context) uint {
	return c.GetUint(userkey)
}

// StartSession stores the user id in the session cookie.
func StartSession(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Set(userkey, userID)
	return session.Save()
}

// EndSession deletes the user id from the session cookie. It reports false
// when there was no session.
func EndSession(c *gin.Context) (bool, error) {
	session := sessions.Default(c)
	if session.Get(userkey) == nil {
		return false, nil
	}
	session.Delete(userkey)
	return true, session.Save()
}
