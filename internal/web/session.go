package web

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Session keys
const (
	SessionName     = "videocatcher"
	SessionKeyID    = "sid"
	SessionKeyAdmin = "admin"
)

// Context key the resolved session ID is stored under.
const ContextKeySessionID = "session_id"

// ensureSession assigns every browser a stable opaque session identifier.
// The identifier scopes cookie uploads; it is unrelated to platform-side
// authentication.
func ensureSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		sid, _ := session.Get(SessionKeyID).(string)
		if sid == "" {
			sid = uuid.NewString()
			session.Set(SessionKeyID, sid)
			if err := session.Save(); err != nil {
				// Downloads for cookie platforms will fail closed with
				// auth required; nothing sensible to do here.
				c.Set(ContextKeySessionID, sid)
				c.Next()
				return
			}
		}

		c.Set(ContextKeySessionID, sid)
		c.Next()
	}
}

// sessionID returns the request's session identifier.
func sessionID(c *gin.Context) string {
	sid, _ := c.Get(ContextKeySessionID)
	id, _ := sid.(string)
	return id
}

// isAdmin reports whether the request's session is logged in as admin.
func isAdmin(c *gin.Context) bool {
	session := sessions.Default(c)
	logged, _ := session.Get(SessionKeyAdmin).(bool)
	return logged
}

// setAdmin flips the session's admin flag.
func setAdmin(c *gin.Context, logged bool) error {
	session := sessions.Default(c)
	if logged {
		session.Set(SessionKeyAdmin, true)
	} else {
		session.Delete(SessionKeyAdmin)
	}
	return session.Save()
}
