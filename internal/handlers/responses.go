package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"brokerage-api/internal/ledger"
)

// respondLedgerError maps ledger error codes to HTTP statuses
func respondLedgerError(c *gin.Context, err error) {
	var lerr *ledger.Error
	if !errors.As(err, &lerr) {
		logrus.Errorf("Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal error",
			"code":    string(ledger.CodePersistence),
			"message": "An unexpected error occurred",
		})
		return
	}

	status := http.StatusInternalServerError
	switch lerr.Code {
	case ledger.CodeInvalidInput:
		status = http.StatusBadRequest
	case ledger.CodeMissingNotes, ledger.CodeInsufficientFunds, ledger.CodeInsufficientShares:
		status = http.StatusUnprocessableEntity
	case ledger.CodeInvalidState:
		status = http.StatusConflict
	case ledger.CodeNotFound:
		status = http.StatusNotFound
	case ledger.CodePersistence:
		logrus.Errorf("Persistence failure: %v", lerr)
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{
		"error":   lerr.Message,
		"code":    string(lerr.Code),
		"message": lerr.Message,
	})
}

func respondBadRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   message,
		"code":    string(ledger.CodeInvalidInput),
		"message": err.Error(),
	})
}

// currentUserID reads the authenticated user from the gin context
func currentUserID(c *gin.Context) (int64, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "user not authenticated",
			"code":    "AUTH_NOT_AUTHENTICATED",
			"message": "User authentication is required",
		})
		c.Abort()
		return 0, false
	}

	userID, ok := value.(int64)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid user identity",
			"code":    "AUTH_NOT_AUTHENTICATED",
			"message": "User identity could not be resolved",
		})
		c.Abort()
		return 0, false
	}

	return userID, true
}

// isStaff reports whether the authenticated user holds a reviewing role
func isStaff(c *gin.Context) bool {
	role, exists := c.Get("user_role")
	if !exists {
		return false
	}
	r, ok := role.(string)
	return ok && (r == "broker" || r == "admin")
}
