package handlers

import (
	"net/http"

	"tipjar-backend/authz"
	"tipjar-backend/dtos"
	"tipjar-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler serves the admin user console. The routes sit behind the
// admin middleware; the handlers still consult the policy table so the
// decision lives in one place.
type UserHandler struct {
	DB *gorm.DB
}

var userSortColumns = map[string]string{
	"createdAt": "created_at",
	"email":     "email",
	"name":      "name",
	"role":      "role",
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionList, authz.ResourceAdminUsers); d != nil {
		respondDenial(c, d)
		return
	}

	q, perr := dtos.ParsePageQuery(c, []string{"createdAt", "email", "name", "role"}, "createdAt", 20)
	if perr != nil {
		respondParamError(c, perr)
		return
	}

	query := h.DB.Model(&models.User{})
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch users")
		return
	}

	var users []models.User
	if err := query.
		Order(q.OrderClause(userSortColumns[q.Sort])).
		Limit(q.PageSize).Offset(q.Offset()).
		Find(&users).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, dtos.NewPaged(users, q, total))
}

func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionUpdate, authz.ResourceAdminUsers); d != nil {
		respondDenial(c, d)
		return
	}

	targetID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request body")
		return
	}

	if req.Role == "" {
		respondError(c, http.StatusBadRequest, "MISSING_ROLE", "Role is required")
		return
	}
	if req.Role != authz.RoleAdmin && req.Role != authz.RoleOwner && req.Role != authz.RoleWorker {
		respondError(c, http.StatusBadRequest, "INVALID_ROLE", "Invalid role. Must be one of: admin, owner, worker")
		return
	}

	var updated models.User

	// The admin count check and the role update run in one transaction:
	// two concurrent demotions must not both observe "2 admins" and then
	// both proceed.
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.Where("id = ?", targetID).First(&target).Error; err != nil {
			return errUserNotFound
		}

		if target.Role == authz.RoleAdmin && req.Role != authz.RoleAdmin {
			var admins int64
			if err := tx.Model(&models.User{}).Where("role = ?", authz.RoleAdmin).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return errLastAdmin
			}
		}

		if err := tx.Model(&target).Update("role", req.Role).Error; err != nil {
			return err
		}
		target.Role = req.Role
		updated = target
		return nil
	})

	switch txErr {
	case nil:
		c.JSON(http.StatusOK, updated)
	case errUserNotFound:
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errLastAdmin:
		respondError(c, http.StatusUnprocessableEntity, "LAST_ADMIN_PROTECTION",
			"Cannot demote the last admin user. At least one admin must remain.")
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to update user")
	}
}

var (
	errUserNotFound = gorm.ErrRecordNotFound
	errLastAdmin    = &lastAdminError{}
)

type lastAdminError struct{}

func (*lastAdminError) Error() string { return "last admin cannot be demoted" }
