package handlers

import (
	"net/http"
	"strings"
	"time"

	"tipjar-backend/authz"
	"tipjar-backend/dtos"
	"tipjar-backend/models"
	"tipjar-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffHandler struct {
	DB *gorm.DB
}

var staffSortColumns = map[string]string{
	"displayName": "staff_members.display_name",
	"role":        "staff_members.role",
	"status":      "staff_members.status",
	"createdAt":   "staff_members.created_at",
}

// staffRow is a staff member joined with its restaurant name for list
// responses.
type staffRow struct {
	ID             uuid.UUID  `json:"id"`
	UserID         *uuid.UUID `json:"userId"`
	RestaurantID   uuid.UUID  `json:"restaurantId"`
	DisplayName    string     `json:"displayName"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	QrKey          string     `json:"qrKey"`
	UpiID          *string    `json:"upiId"`
	CreatedAt      time.Time  `json:"createdAt"`
	RestaurantName string     `json:"restaurantName"`
}

const staffRowSelect = `staff_members.id, staff_members.user_id, staff_members.restaurant_id,
	staff_members.display_name, staff_members.role, staff_members.status, staff_members.qr_key,
	staff_members.upi_id, staff_members.created_at,
	(SELECT name FROM restaurants r WHERE r.id = staff_members.restaurant_id) AS restaurant_name`

func (h *StaffHandler) ListStaff(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionList, authz.ResourceStaff); d != nil {
		respondDenial(c, d)
		return
	}

	q, perr := dtos.ParsePageQuery(c, []string{"displayName", "role", "status", "createdAt"}, "createdAt", 10)
	if perr != nil {
		respondParamError(c, perr)
		return
	}

	query := authz.ScopeStaff(h.DB.Model(&models.StaffMember{}), actor)

	if raw := c.Query("restaurantId"); raw != "" {
		restaurantID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_RESTAURANT_ID", "Valid restaurant ID is required")
			return
		}
		query = query.Where("staff_members.restaurant_id = ?", restaurantID)
	}

	if status := c.Query("status"); status != "" {
		if !models.ValidStaffStatus(status) {
			respondError(c, http.StatusBadRequest, "INVALID_STATUS", "Invalid status. Must be one of: active, inactive")
			return
		}
		query = query.Where("staff_members.status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("staff_members.display_name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch staff members")
		return
	}

	var rows []staffRow
	if err := query.
		Select(staffRowSelect).
		Order(q.OrderClause(staffSortColumns[q.Sort])).
		Limit(q.PageSize).Offset(q.Offset()).
		Scan(&rows).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch staff members")
		return
	}

	c.JSON(http.StatusOK, dtos.NewPaged(rows, q, total))
}

func (h *StaffHandler) CreateStaff(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionCreate, authz.ResourceStaff); d != nil {
		respondDenial(c, d)
		return
	}

	var req struct {
		RestaurantID string  `json:"restaurantId"`
		DisplayName  string  `json:"displayName"`
		Role         string  `json:"role"`
		Status       string  `json:"status"`
		UserID       *string `json:"userId"`
		UpiID        string  `json:"upiId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request body")
		return
	}

	// Linking a staff slot to a user account is an admin-only field, even
	// when the value is empty.
	if req.UserID != nil && actor.Role != authz.RoleAdmin {
		respondError(c, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Only admins can assign staff to specific users")
		return
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_RESTAURANT_ID", "Valid restaurant ID is required")
		return
	}

	if strings.TrimSpace(req.DisplayName) == "" {
		respondError(c, http.StatusBadRequest, "MISSING_DISPLAY_NAME", "Display name is required")
		return
	}

	var restaurant models.Restaurant
	if err := h.DB.Where("id = ?", restaurantID).First(&restaurant).Error; err != nil {
		respondError(c, http.StatusNotFound, "RESTAURANT_NOT_FOUND", "Restaurant not found")
		return
	}

	if actor.Role == authz.RoleOwner && restaurant.OwnerUserID != actor.ID {
		respondError(c, http.StatusForbidden, "RESTAURANT_ACCESS_DENIED", "You can only create staff for restaurants you own")
		return
	}

	var userID *uuid.UUID
	if req.UserID != nil && strings.TrimSpace(*req.UserID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.UserID))
		if err != nil {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		var linked models.User
		if err := h.DB.Where("id = ?", parsed).First(&linked).Error; err != nil {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		userID = &parsed
	}

	role := req.Role
	if role == "" {
		role = models.StaffRoleServer
	} else if !models.ValidStaffRole(role) {
		respondError(c, http.StatusBadRequest, "INVALID_ROLE", "Invalid role. Must be one of: server, chef, host, manager")
		return
	}

	status := req.Status
	if status == "" {
		status = models.StaffStatusActive
	} else if !models.ValidStaffStatus(status) {
		respondError(c, http.StatusBadRequest, "INVALID_STATUS", "Invalid status. Must be one of: active, inactive")
		return
	}

	qrKey, err := utils.GenerateQrKey(req.DisplayName)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to generate QR key")
		return
	}

	staff := models.StaffMember{
		UserID:       userID,
		RestaurantID: restaurantID,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         role,
		Status:       status,
		QrKey:        qrKey,
		UpiID:        optString(req.UpiID),
	}

	if err := h.DB.Create(&staff).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(c, http.StatusConflict, "QR_KEY_CONFLICT", "QR key generation failed. Please try again.")
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to create staff member")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":             staff.ID,
		"userId":         staff.UserID,
		"restaurantId":   staff.RestaurantID,
		"displayName":    staff.DisplayName,
		"role":           staff.Role,
		"status":         staff.Status,
		"qrKey":          staff.QrKey,
		"upiId":          staff.UpiID,
		"createdAt":      staff.CreatedAt,
		"restaurantName": restaurant.Name,
	})
}

// loadStaffWithRestaurant fetches the staff row and its restaurant, and
// runs the ownership check for the given action. Responses are already
// written on failure.
func (h *StaffHandler) loadStaffWithRestaurant(c *gin.Context, actor authz.Actor, action authz.Action) (*models.StaffMember, bool) {
	id, ok := parseIDParam(c)
	if !ok {
		return nil, false
	}

	var staff models.StaffMember
	if err := h.DB.Preload("Restaurant").Where("id = ?", id).First(&staff).Error; err != nil {
		respondError(c, http.StatusNotFound, "STAFF_NOT_FOUND", "Staff member not found")
		return nil, false
	}

	grant := authz.GrantFor(actor, action, authz.ResourceStaff)
	switch grant {
	case authz.GrantOwned:
		if d := authz.CheckOwnership(actor, grant, &staff.Restaurant.OwnerUserID); d != nil {
			respondDenial(c, d)
			return nil, false
		}
	case authz.GrantSelf:
		if d := authz.CheckOwnership(actor, grant, staff.UserID); d != nil {
			respondDenial(c, d)
			return nil, false
		}
	}

	return &staff, true
}

func (h *StaffHandler) GetStaff(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionRead, authz.ResourceStaff); d != nil {
		respondDenial(c, d)
		return
	}

	staff, ok := h.loadStaffWithRestaurant(c, actor, authz.ActionRead)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, staff)
}

func (h *StaffHandler) UpdateStaff(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionUpdate, authz.ResourceStaff); d != nil {
		respondDenial(c, d)
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request body")
		return
	}

	staff, ok := h.loadStaffWithRestaurant(c, actor, authz.ActionUpdate)
	if !ok {
		return
	}

	// One forbidden field fails the whole request; nothing is applied,
	// including fields the actor could otherwise update.
	provided := make([]string, 0, len(body))
	for field := range body {
		provided = append(provided, field)
	}
	if d := authz.CheckStaffFields(actor, provided); d != nil {
		respondDenial(c, d)
		return
	}

	updates := map[string]interface{}{}

	if raw, present := body["displayName"]; present {
		name, ok := raw.(string)
		if !ok || strings.TrimSpace(name) == "" {
			respondError(c, http.StatusBadRequest, "INVALID_DISPLAY_NAME", "Display name cannot be empty")
			return
		}
		updates["display_name"] = strings.TrimSpace(name)
	}

	if raw, present := body["role"]; present {
		role, ok := raw.(string)
		if !ok || !models.ValidStaffRole(role) {
			respondError(c, http.StatusBadRequest, "INVALID_ROLE", "Invalid role. Must be one of: server, chef, host, manager")
			return
		}
		updates["role"] = role
	}

	if raw, present := body["status"]; present {
		status, ok := raw.(string)
		if !ok || !models.ValidStaffStatus(status) {
			respondError(c, http.StatusBadRequest, "INVALID_STATUS", "Invalid status. Must be one of: active, inactive")
			return
		}
		updates["status"] = status
	}

	if raw, present := body["userId"]; present {
		// nil unclaims the slot; otherwise the value must be an existing user.
		if raw == nil {
			updates["user_id"] = nil
		} else {
			value, ok := raw.(string)
			if !ok {
				respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Valid user ID is required")
				return
			}
			parsed, err := uuid.Parse(strings.TrimSpace(value))
			if err != nil {
				respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Valid user ID is required")
				return
			}
			var linked models.User
			if err := h.DB.Where("id = ?", parsed).First(&linked).Error; err != nil {
				respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
				return
			}
			updates["user_id"] = parsed
		}
	}

	if raw, present := body["upiId"]; present {
		if raw == nil {
			updates["upi_id"] = nil
		} else {
			value, ok := raw.(string)
			if !ok {
				respondError(c, http.StatusBadRequest, "INVALID_UPI_ID", "UPI ID must be a string")
				return
			}
			updates["upi_id"] = optString(value)
		}
	}

	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "NO_UPDATES", "No valid fields to update")
		return
	}

	if err := h.DB.Model(staff).Updates(updates).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to update staff member")
		return
	}

	var updated models.StaffMember
	if err := h.DB.Where("id = ?", staff.ID).First(&updated).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to update staff member")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *StaffHandler) DeleteStaff(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionDelete, authz.ResourceStaff); d != nil {
		respondDenial(c, d)
		return
	}

	staff, ok := h.loadStaffWithRestaurant(c, actor, authz.ActionDelete)
	if !ok {
		return
	}

	if err := h.DB.Delete(&models.StaffMember{}, "id = ?", staff.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to delete staff member")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "Staff member deleted successfully",
		"deletedStaffMember": staff,
	})
}

// GetStaffTips lists one staff member's tips with a summary, the
// endpoint workers use for their own earnings.
func (h *StaffHandler) GetStaffTips(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionRead, authz.ResourceTip); d != nil {
		respondDenial(c, d)
		return
	}

	q, perr := dtos.ParsePageQuery(c, []string{"amountCents", "createdAt"}, "createdAt", 20)
	if perr != nil {
		respondParamError(c, perr)
		return
	}

	var staff models.StaffMember
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.DB.Preload("Restaurant").Where("id = ?", id).First(&staff).Error; err != nil {
		respondError(c, http.StatusNotFound, "STAFF_NOT_FOUND", "Staff member not found")
		return
	}

	grant := authz.GrantFor(actor, authz.ActionRead, authz.ResourceTip)
	switch grant {
	case authz.GrantOwned:
		if d := authz.CheckOwnership(actor, grant, &staff.Restaurant.OwnerUserID); d != nil {
			respondDenial(c, d)
			return
		}
	case authz.GrantSelf:
		if d := authz.CheckOwnership(actor, grant, staff.UserID); d != nil {
			respondDenial(c, d)
			return
		}
	}

	var dateFrom, dateTo time.Time
	if raw := c.Query("dateFrom"); raw != "" {
		from, ok := parseDateFilter(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "INVALID_DATE_FROM", "Invalid dateFrom format. Use ISO string")
			return
		}
		dateFrom = from
	}
	if raw := c.Query("dateTo"); raw != "" {
		to, ok := parseDateFilter(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "INVALID_DATE_TO", "Invalid dateTo format. Use ISO string")
			return
		}
		dateTo = to
	}

	// Separate chains so the summary's custom select does not leak into
	// the row query.
	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("tips.staff_member_id = ?", staff.ID)
		if !dateFrom.IsZero() {
			db = db.Where("tips.created_at >= ?", dateFrom)
		}
		if !dateTo.IsZero() {
			db = db.Where("tips.created_at <= ?", dateTo)
		}
		return db
	}

	var total int64
	if err := h.DB.Model(&models.Tip{}).Scopes(filter).Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch tips")
		return
	}

	var summary struct {
		TotalAmount int64 `json:"totalAmount"`
		TipCount    int64 `json:"tipCount"`
	}
	if err := h.DB.Model(&models.Tip{}).Scopes(filter).
		Select("COALESCE(SUM(tips.amount_cents), 0) AS total_amount, COUNT(*) AS tip_count").
		Scan(&summary).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch tips")
		return
	}

	sortColumns := map[string]string{"amountCents": "tips.amount_cents", "createdAt": "tips.created_at"}

	var tips []models.Tip
	if err := h.DB.Model(&models.Tip{}).Scopes(filter).
		Order(q.OrderClause(sortColumns[q.Sort])).
		Limit(q.PageSize).Offset(q.Offset()).
		Find(&tips).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch tips")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     tips,
		"page":     q.Page,
		"pageSize": q.PageSize,
		"total":    total,
		"summary":  summary,
	})
}
