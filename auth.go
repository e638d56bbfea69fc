package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	authCookie = "authToken"
	sessionTTL = 7 * 24 * time.Hour
)

// dummyHash is a pre-computed bcrypt hash used when a login name isn't found.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based user enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// login verifies name/password, returns a session token and sets it as the
// authToken cookie.
// POST /api/login (public, no auth required).
func (h *Handler) login(c *gin.Context) {
	var body struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	u, lookupErr := h.store.userByName(c.Request.Context(), body.Name)
	if lookupErr != nil && !errors.Is(lookupErr, errNotFound) {
		abortWithError(c, "look up user", lookupErr)
		return
	}

	// Always run bcrypt to keep response time constant regardless of whether the
	// name was found.
	hashToCheck := string(dummyHash)
	if lookupErr == nil {
		hashToCheck = u.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if lookupErr != nil || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.issueToken(u)
	if err != nil {
		log.WithError(err).Error("[login] failed to sign token")
		apiError(c, http.StatusInternalServerError, "failed to create session")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authCookie, token, int(sessionTTL.Seconds()), "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

// logout clears the session cookie. POST /api/logout.
func (h *Handler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authCookie, "", -1, "/", "", h.cookieSecure, true)
	c.Status(http.StatusNoContent)
}

// getMe returns the authenticated user. GET /api/me.
func (h *Handler) getMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

/* ─── Sessions ────────────────────────────────────────────────────────── */

func (h *Handler) issueToken(u user) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
}

// parseToken validates a session token and returns the user id it was issued for.
func (h *Handler) parseToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return h.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", errUnauthenticated
	}
	if claims.Subject == "" {
		return "", errUnauthenticated
	}
	return claims.Subject, nil
}

// sessionToken reads the token from the authToken cookie, falling back to a
// Bearer Authorization header.
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(authCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

/* ─── Middleware ──────────────────────────────────────────────────────── */

// authMiddleware resolves the session token to a user and sets "user" and
// "user_id" on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			abortWithError(c, "authenticate", errUnauthenticated)
			return
		}
		userID, err := h.parseToken(token)
		if err != nil {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		u, err := h.store.userByID(c.Request.Context(), userID)
		if errors.Is(err, errNotFound) {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}
		if err != nil {
			abortWithError(c, "load session user", err)
			return
		}

		c.Set("user", u)
		c.Set("user_id", u.ID)
		c.Next()
	}
}

// requireAdmin must run after authMiddleware.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).isAdmin() {
			apiError(c, http.StatusForbidden, "admin only")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUser returns the user set by authMiddleware.
func currentUser(c *gin.Context) user {
	u, _ := c.Get("user")
	cu, _ := u.(user)
	return cu
}
