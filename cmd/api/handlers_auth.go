package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quickmart/quickmart/internal/auth"
	"github.com/quickmart/quickmart/internal/httpx"
	"github.com/quickmart/quickmart/internal/user"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerHandler creates a user and hands back a signed token.
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerRequest true "registration"
// @Success 201 {object} httpx.Envelope
// @Router /auth/register [post]
func registerHandler(users user.Repository, secret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Name == "" || req.Email == "" || req.Password == "" || req.Phone == "" || req.Address == "" {
			httpx.Fail(c, http.StatusBadRequest, "name, email, password, phone and address are required")
			return
		}
		if len(req.Password) < 6 {
			httpx.Fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
			return
		}
		role := req.Role
		if role == "" {
			role = user.RoleCustomer
		}
		if !user.ValidRole(role) {
			httpx.Fail(c, http.StatusBadRequest, "invalid role")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error in registration process")
			return
		}
		u := &user.User{
			ID:           uuid.NewString(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Phone:        req.Phone,
			Address:      req.Address,
			Role:         role,
			IsActive:     true,
		}
		if err := users.Create(c.Request.Context(), u); err != nil {
			if errors.Is(err, user.ErrAlreadyExist) {
				httpx.Fail(c, http.StatusBadRequest, "User already exists with this email")
				return
			}
			httpx.Fail(c, http.StatusInternalServerError, "Error in registration process")
			return
		}

		token, err := auth.IssueToken(secret, u.ID, ttl)
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error in registration process")
			return
		}
		httpx.Created(c, "Registration successful! Welcome to QuickMart!", gin.H{
			"user":  u,
			"token": token,
		})
	}
}

// loginHandler verifies credentials. A missing user and a wrong password
// answer identically so the response never reveals whether the email exists.
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "credentials"
// @Success 200 {object} httpx.Envelope
// @Router /auth/login [post]
func loginHandler(users user.Repository, secret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
			httpx.Fail(c, http.StatusBadRequest, "Please provide email and password")
			return
		}

		u, err := users.GetByEmail(c.Request.Context(), req.Email)
		if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
			httpx.Fail(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		token, err := auth.IssueToken(secret, u.ID, ttl)
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error in login process")
			return
		}
		httpx.OKMsg(c, "Login successful!", gin.H{
			"user":  u,
			"token": token,
		})
	}
}

// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /auth/me [get]
func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		httpx.OK(c, gin.H{"user": gin.H{
			"id":    id.ID,
			"name":  id.Name,
			"email": id.Email,
			"role":  id.Role,
		}})
	}
}
