package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"LittleLemon/middleware"
	"LittleLemon/permission"
	"LittleLemon/services"

	"github.com/gin-gonic/gin"
)

// StatusFor maps a service error kind onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidDeliveryCrew):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, message string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[%s] %s: %v", middleware.RequestID(c), message, err)
	}
	c.JSON(status, gin.H{
		"message": message,
		"error":   err.Error(),
	})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "cannot bind request data",
		"error":   err.Error(),
	})
}

// paramID parses a positive numeric path parameter and answers 404 otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "not found",
			"error":   "invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}

func currentCaller(c *gin.Context) (permission.Caller, bool) {
	caller, ok := middleware.CurrentCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication credentials were not provided",
		})
	}
	return caller, ok
}
