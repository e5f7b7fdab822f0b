package handlers

import (
	"net/http"
	"strings"

	"tipjar-backend/dtos"
	"tipjar-backend/models"
	"tipjar-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FeatureToggleHandler struct {
	DB *gorm.DB
}

var toggleSortColumns = map[string]string{
	"key":       "key",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

var validAudiences = map[string]bool{"all": true, "owners": true, "workers": true, "admins": true}

// ListToggles is public so frontends can read flags without a session.
func (h *FeatureToggleHandler) ListToggles(c *gin.Context) {
	q, perr := dtos.ParsePageQuery(c, []string{"key", "createdAt", "updatedAt"}, "key", 50)
	if perr != nil {
		respondParamError(c, perr)
		return
	}

	query := h.DB.Model(&models.FeatureToggle{})

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("key LIKE ? OR label LIKE ?", pattern, pattern)
	}

	if audience := c.Query("audience"); audience != "" {
		if !validAudiences[audience] {
			respondError(c, http.StatusBadRequest, "INVALID_AUDIENCE", "Invalid audience. Must be one of: all, owners, workers, admins")
			return
		}
		query = query.Where("audience = ?", audience)
	}

	if raw := c.Query("enabled"); raw != "" {
		switch raw {
		case "true":
			query = query.Where("enabled = ?", true)
		case "false":
			query = query.Where("enabled = ?", false)
		default:
			respondError(c, http.StatusBadRequest, "INVALID_ENABLED_VALUE", "enabled must be true or false")
			return
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch feature toggles")
		return
	}

	var toggles []models.FeatureToggle
	if err := query.
		Order(q.OrderClause(toggleSortColumns[q.Sort])).
		Limit(q.PageSize).Offset(q.Offset()).
		Find(&toggles).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch feature toggles")
		return
	}

	c.JSON(http.StatusOK, dtos.NewPaged(toggles, q, total))
}

func (h *FeatureToggleHandler) GetToggleByKey(c *gin.Context) {
	key := c.Param("key")

	var toggle models.FeatureToggle
	if err := h.DB.Where("key = ?", key).First(&toggle).Error; err != nil {
		respondError(c, http.StatusNotFound, "TOGGLE_NOT_FOUND", "Feature toggle not found")
		return
	}

	c.JSON(http.StatusOK, toggle)
}

func (h *FeatureToggleHandler) CreateToggle(c *gin.Context) {
	var req struct {
		Key      string `json:"key"`
		Label    string `json:"label"`
		Enabled  *bool  `json:"enabled"`
		Audience string `json:"audience"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request body")
		return
	}

	req.Key = strings.TrimSpace(req.Key)
	req.Label = strings.TrimSpace(req.Label)
	if req.Key == "" || req.Label == "" {
		respondError(c, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "Key and label are required")
		return
	}

	if !utils.ValidToggleKey(req.Key) {
		respondError(c, http.StatusBadRequest, "INVALID_KEY_FORMAT", "Key must be lowercase letters, digits and underscores")
		return
	}

	audience := req.Audience
	if audience == "" {
		audience = "all"
	} else if !validAudiences[audience] {
		respondError(c, http.StatusBadRequest, "INVALID_AUDIENCE", "Invalid audience. Must be one of: all, owners, workers, admins")
		return
	}

	toggle := models.FeatureToggle{
		Key:      req.Key,
		Label:    req.Label,
		Audience: audience,
	}
	if req.Enabled != nil {
		toggle.Enabled = *req.Enabled
	}

	if err := h.DB.Create(&toggle).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(c, http.StatusConflict, "DUPLICATE_KEY", "A feature toggle with this key already exists")
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to create feature toggle")
		return
	}

	c.JSON(http.StatusCreated, toggle)
}

func (h *FeatureToggleHandler) UpdateToggle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var toggle models.FeatureToggle
	if err := h.DB.Where("id = ?", id).First(&toggle).Error; err != nil {
		respondError(c, http.StatusNotFound, "TOGGLE_NOT_FOUND", "Feature toggle not found")
		return
	}

	h.applyToggleUpdate(c, &toggle)
}

// UpdateToggleByKey mirrors UpdateToggle for callers that only know the
// key.
func (h *FeatureToggleHandler) UpdateToggleByKey(c *gin.Context) {
	key := c.Param("key")

	var toggle models.FeatureToggle
	if err := h.DB.Where("key = ?", key).First(&toggle).Error; err != nil {
		respondError(c, http.StatusNotFound, "TOGGLE_NOT_FOUND", "Feature toggle not found")
		return
	}

	h.applyToggleUpdate(c, &toggle)
}

func (h *FeatureToggleHandler) applyToggleUpdate(c *gin.Context, toggle *models.FeatureToggle) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request body")
		return
	}

	updates := map[string]interface{}{}

	if raw, present := body["label"]; present {
		label, ok := raw.(string)
		if !ok || strings.TrimSpace(label) == "" {
			respondError(c, http.StatusBadRequest, "INVALID_LABEL", "Label cannot be empty")
			return
		}
		updates["label"] = strings.TrimSpace(label)
	}

	if raw, present := body["enabled"]; present {
		enabled, ok := raw.(bool)
		if !ok {
			respondError(c, http.StatusBadRequest, "INVALID_ENABLED_VALUE", "enabled must be true or false")
			return
		}
		updates["enabled"] = enabled
	}

	if raw, present := body["audience"]; present {
		audience, ok := raw.(string)
		if !ok || !validAudiences[audience] {
			respondError(c, http.StatusBadRequest, "INVALID_AUDIENCE", "Invalid audience. Must be one of: all, owners, workers, admins")
			return
		}
		updates["audience"] = audience
	}

	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "NO_UPDATES", "No valid fields to update")
		return
	}

	if err := h.DB.Model(toggle).Updates(updates).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to update feature toggle")
		return
	}

	c.JSON(http.StatusOK, toggle)
}

func (h *FeatureToggleHandler) DeleteToggle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var toggle models.FeatureToggle
	if err := h.DB.Where("id = ?", id).First(&toggle).Error; err != nil {
		respondError(c, http.StatusNotFound, "TOGGLE_NOT_FOUND", "Feature toggle not found")
		return
	}

	if err := h.DB.Delete(&toggle).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to delete feature toggle")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Feature toggle deleted successfully",
		"deletedToggle": toggle,
	})
}
