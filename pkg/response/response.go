package response

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pulseboard/backend/pkg/apperror"
)

// ContextUserKey is where the auth middleware stores the resolved user id.
const ContextUserKey = "user_id"

// UserID retrieves the authenticated user id from the request context.
func UserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(ContextUserKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	id, err := uuid.Parse(raw.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}
	return id, nil
}

// OptionalUserID returns the requester's id when a valid identity was
// resolved, nil for anonymous requests.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, err := UserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// Error writes a structured error response. Every response carries a
// machine-stable "code" and a non-empty "error" message.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= 500 {
			logrus.WithError(err).Error("request failed")
		}
		c.JSON(appErr.Status, gin.H{"error": appErr.Message, "code": appErr.Code})
		return
	}

	logrus.WithError(err).Error("unhandled error")
	c.JSON(apperror.ErrInternal.Status, gin.H{
		"error": apperror.ErrInternal.Message,
		"code":  apperror.ErrInternal.Code,
	})
}
