package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the error envelope; success payloads are flat gin.H objects carrying success=true.
type Body struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OK sends a 200 JSON response, adding success=true to the payload.
func OK(c *gin.Context, payload gin.H) {
	c.JSON(http.StatusOK, withSuccess(payload))
}

// Created sends a 201 JSON response, adding success=true to the payload.
func Created(c *gin.Context, payload gin.H) {
	c.JSON(http.StatusCreated, withSuccess(payload))
}

// Accepted sends a 202 JSON response, adding success=true to the payload.
func Accepted(c *gin.Context, payload gin.H) {
	c.JSON(http.StatusAccepted, withSuccess(payload))
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, msg string) {
	Fail(c, http.StatusBadRequest, msg)
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, msg string) {
	Fail(c, http.StatusUnauthorized, msg)
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, msg string) {
	Fail(c, http.StatusForbidden, msg)
}

// NotFound sends 404.
func NotFound(c *gin.Context, msg string) {
	Fail(c, http.StatusNotFound, msg)
}

// Conflict sends 409.
func Conflict(c *gin.Context, msg string) {
	Fail(c, http.StatusConflict, msg)
}

// BadGateway sends 502, used when a downstream collaborator (QR storage, mail) fails.
func BadGateway(c *gin.Context, msg string) {
	Fail(c, http.StatusBadGateway, msg)
}

// Internal sends 500.
func Internal(c *gin.Context, msg string) {
	Fail(c, http.StatusInternalServerError, msg)
}

// Fail sends {success:false, message} with the given status.
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Body{Success: false, Message: msg})
}

func withSuccess(payload gin.H) gin.H {
	out := gin.H{"success": true}
	for k, v := range payload {
		out[k] = v
	}
	return out
}
