// Package handlers exposes the workflows over HTTP.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/face-gate/internal/auth"
	"github.com/example/face-gate/internal/usecase"
)

// MaxPayloadBytes caps the base64 image field, roughly a 3 MB frame.
const MaxPayloadBytes = 4 << 20

// Service is the workflow surface the HTTP layer drives.
type Service interface {
	Enroll(ctx context.Context, username, payload string) *usecase.Outcome
	Verify(ctx context.Context, username, loginID, payload string) *usecase.Outcome
	Revoke(ctx context.Context, username, loginID string) *usecase.Outcome
}

// HealthChecker reports service-level counters for the health endpoint.
type HealthChecker interface {
	CountEnrollments(ctx context.Context) (int64, error)
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
//
// Both success and error outcomes are served with HTTP 200; the status
// tag inside the body carries the result, matching the form-driven
// client contract.
func RegisterRoutes(router *gin.Engine, svc Service, health HealthChecker, jwtSecret string) {
	router.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if health != nil {
			if count, err := health.CountEnrollments(c.Request.Context()); err == nil {
				body["enrollments"] = count
			}
		}
		c.JSON(http.StatusOK, body)
	})

	router.POST("/api/register", func(c *gin.Context) {
		username := c.PostForm("username")
		payload := c.PostForm("face_image")
		if len(payload) > MaxPayloadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"status":  usecase.StatusError,
				"message": "The submitted image is too large.",
			})
			return
		}
		respond(c, svc.Enroll(c.Request.Context(), username, payload), "")
	})

	router.POST("/api/login", func(c *gin.Context) {
		username := c.PostForm("username")
		loginID := c.PostForm("login_id")
		payload := c.PostForm("face_image")
		if len(payload) > MaxPayloadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"status":  usecase.StatusError,
				"message": "The submitted image is too large.",
			})
			return
		}

		outcome := svc.Verify(c.Request.Context(), username, loginID, payload)

		var token string
		if outcome.Success() {
			issued, err := auth.IssueSession(jwtSecret, username, loginID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"status":  usecase.StatusError,
					"message": "Session could not be created. Please try again.",
				})
				return
			}
			token = issued
		}
		respond(c, outcome, token)
	})

	router.POST("/api/delete", func(c *gin.Context) {
		username := c.PostForm("username")
		loginID := c.PostForm("login_id")
		respond(c, svc.Revoke(c.Request.Context(), username, loginID), "")
	})

	session := router.Group("/api", auth.SessionMiddleware(jwtSecret))
	session.GET("/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   usecase.StatusSuccess,
			"username": c.GetString(auth.ContextUsernameKey),
			"login_id": c.GetString(auth.ContextLoginIDKey),
		})
	})
}

func respond(c *gin.Context, outcome *usecase.Outcome, token string) {
	body := gin.H{
		"status":  outcome.Status,
		"message": outcome.Message,
	}
	if outcome.Status == usecase.StatusError {
		body["code"] = string(outcome.Code)
	}
	if outcome.LoginID != "" {
		body["login_id"] = outcome.LoginID
	}
	if outcome.Redirect != "" {
		body["redirect"] = outcome.Redirect
	}
	if token != "" {
		body["token"] = token
	}
	c.JSON(http.StatusOK, body)
}
