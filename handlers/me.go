package handlers

import (
	"net/http"

	"tipjar-backend/authz"
	"tipjar-backend/models"
	"tipjar-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MeHandler struct {
	DB *gorm.DB
}

// UpdateMyRole is the self-service role switch used during onboarding.
// It never grants admin, and an owner still holding restaurants cannot
// step down to worker.
func (h *MeHandler) UpdateMyRole(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", utils.SanitizeValidationError(err))
		return
	}

	if req.Role == "" {
		respondError(c, http.StatusBadRequest, "MISSING_ROLE", "Role is required")
		return
	}

	if req.Role == authz.RoleAdmin {
		respondError(c, http.StatusForbidden, "ADMIN_ROLE_FORBIDDEN", "Admin role cannot be set through this endpoint")
		return
	}

	if req.Role != authz.RoleOwner && req.Role != authz.RoleWorker {
		respondError(c, http.StatusBadRequest, "INVALID_ROLE", `Role must be either "owner" or "worker"`)
		return
	}

	// The role in the JWT may be stale; the guard below runs against the
	// stored role.
	var user models.User
	if err := h.DB.Where("id = ?", actor.ID).First(&user).Error; err != nil {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	if user.Role == authz.RoleOwner && req.Role == authz.RoleWorker {
		var owned int64
		if err := h.DB.Model(&models.Restaurant{}).Where("owner_user_id = ?", actor.ID).Count(&owned).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to check owned restaurants")
			return
		}
		if owned > 0 {
			respondError(c, http.StatusUnprocessableEntity, "OWNER_HAS_RESTAURANTS",
				"Cannot change to worker role while owning restaurants")
			return
		}
	}

	if err := h.DB.Model(&user).Update("role", req.Role).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to update role")
		return
	}
	user.Role = req.Role

	// The old access token still carries the previous role until it
	// expires, so hand back a fresh one with the new claims.
	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}
