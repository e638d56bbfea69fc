package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var (
	errUnauthenticated = errors.New("you must be logged in")
	errForbidden       = errors.New("not authorised")
	errValidation      = errors.New("invalid request")
	errNotFound        = errors.New("not found")
	errStore           = errors.New("store operation failed")
)

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// abortWithError maps a gateway or store error to a status code and writes it.
// Store failures are logged and surfaced with a generic message.
func abortWithError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, errUnauthenticated):
		apiError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, errForbidden):
		apiError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, errValidation):
		apiError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, errNotFound):
		apiError(c, http.StatusNotFound, err.Error())
	default:
		log.WithError(err).Errorf("[%s] store error", op)
		apiError(c, http.StatusInternalServerError, "failed to "+op)
	}
	c.Abort()
}
