package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
)

var (
	ErrNoPermission = errors.New("you do not have permission for this action")
	ErrNoIdentity   = errors.New("user id not found in context")
)

// callerID pulls the authenticated user id set by the auth middleware.
func callerID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
