package handler

import (
	"net/http"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/crm/user"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Login exchanges credentials for a bearer token
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}

	u, err := h.svc.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	token, err := h.jwt.GenerateToken(user.Caller(u))
	if err != nil {
		h.logger.Error("failed to generate token", zap.String("user_id", u.ID), zap.Error(err))
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, User: u})
}

// Me returns the authenticated user
func (h *Handler) Me(c *gin.Context) {
	id := caller(c).UserID
	u, err := h.svc.Users.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if u == nil {
		h.fail(c, errorx.NotFoundError("user", id))
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}
	u, password, err := h.svc.Users.Create(c.Request.Context(), caller(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreateUserResponse{User: u, OneTimePassword: password})
}

func (h *Handler) ListUsers(c *gin.Context) {
	var filter database.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.fail(c, err)
		return
	}
	users, total, err := h.svc.Users.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondList(c, users, total, filter.Page)
}

func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.svc.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	found(h, c, "user", u)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}
	u, err := h.svc.Users.Update(c.Request.Context(), caller(c), c.Param("id"), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// CompleteProfile lets the caller fill in their own details
func (h *Handler) CompleteProfile(c *gin.Context) {
	var req dto.CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}
	u, err := h.svc.Users.CompleteProfile(c.Request.Context(), caller(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeactivateUser(c *gin.Context) {
	if err := h.svc.Users.Deactivate(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
