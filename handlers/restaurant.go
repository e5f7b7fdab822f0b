package handlers

import (
	"net/http"
	"strings"

	"tipjar-backend/authz"
	"tipjar-backend/dtos"
	"tipjar-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RestaurantHandler struct {
	DB *gorm.DB
}

var restaurantSortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
}

func (h *RestaurantHandler) ListRestaurants(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	// Workers are denied outright, not handed an empty list.
	if d := authz.CanAccess(actor, authz.ActionList, authz.ResourceRestaurant); d != nil {
		respondDenial(c, d)
		return
	}

	q, perr := dtos.ParsePageQuery(c, []string{"name", "createdAt"}, "createdAt", 10)
	if perr != nil {
		respondParamError(c, perr)
		return
	}

	query := authz.ScopeRestaurants(h.DB.Model(&models.Restaurant{}), actor)
	if search := c.Query("search"); search != "" {
		query = query.Where("restaurants.name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch restaurants")
		return
	}

	var restaurants []models.Restaurant
	if err := query.
		Order(q.OrderClause(restaurantSortColumns[q.Sort])).
		Limit(q.PageSize).Offset(q.Offset()).
		Find(&restaurants).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch restaurants")
		return
	}

	c.JSON(http.StatusOK, dtos.NewPaged(restaurants, q, total))
}

func (h *RestaurantHandler) CreateRestaurant(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionCreate, authz.ResourceRestaurant); d != nil {
		respondDenial(c, d)
		return
	}

	var req struct {
		Name        string `json:"name"`
		UpiID       string `json:"upiId"`
		Address     string `json:"address"`
		City        string `json:"city"`
		State       string `json:"state"`
		Country     string `json:"country"`
		OwnerUserID string `json:"ownerUserId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		respondError(c, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "Name is required")
		return
	}
	if strings.TrimSpace(req.UpiID) == "" {
		respondError(c, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "UPI ID is required")
		return
	}

	// Owners always create for themselves; only admins may assign another
	// owner, and only a user already holding the owner role qualifies.
	ownerUserID := actor.ID
	if actor.Role == authz.RoleAdmin && req.OwnerUserID != "" {
		parsed, err := uuid.Parse(req.OwnerUserID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_OWNER_USER", "Specified owner user not found")
			return
		}

		var ownerUser models.User
		if err := h.DB.Where("id = ?", parsed).First(&ownerUser).Error; err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_OWNER_USER", "Specified owner user not found")
			return
		}
		if ownerUser.Role != authz.RoleOwner {
			respondError(c, http.StatusBadRequest, "INVALID_OWNER_ROLE", "Specified user must have owner role")
			return
		}
		ownerUserID = parsed
	}

	restaurant := models.Restaurant{
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(req.Name),
		UpiID:       strings.TrimSpace(req.UpiID),
		Address:     strings.TrimSpace(req.Address),
		City:        strings.TrimSpace(req.City),
		State:       strings.TrimSpace(req.State),
		Country:     strings.TrimSpace(req.Country),
	}

	if err := h.DB.Create(&restaurant).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to create restaurant")
		return
	}

	c.JSON(http.StatusCreated, restaurant)
}

func (h *RestaurantHandler) GetRestaurant(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionRead, authz.ResourceRestaurant); d != nil {
		respondDenial(c, d)
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	// The scope predicate is baked into the lookup, so a restaurant the
	// actor cannot see is indistinguishable from one that does not exist.
	var restaurant models.Restaurant
	if err := authz.ScopeRestaurants(h.DB, actor).Where("restaurants.id = ?", id).First(&restaurant).Error; err != nil {
		respondError(c, http.StatusNotFound, "RESTAURANT_NOT_FOUND", "Restaurant not found")
		return
	}

	c.JSON(http.StatusOK, restaurant)
}

func (h *RestaurantHandler) UpdateRestaurant(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionUpdate, authz.ResourceRestaurant); d != nil {
		respondDenial(c, d)
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request body")
		return
	}

	// Ownership never moves through this endpoint, for anyone.
	if _, present := body["ownerUserId"]; present {
		respondError(c, http.StatusBadRequest, "OWNER_ID_NOT_ALLOWED", "Owner user ID cannot be provided in request body")
		return
	}
	if _, present := body["owner_user_id"]; present {
		respondError(c, http.StatusBadRequest, "OWNER_ID_NOT_ALLOWED", "Owner user ID cannot be provided in request body")
		return
	}

	var restaurant models.Restaurant
	if err := authz.ScopeRestaurants(h.DB, actor).Where("restaurants.id = ?", id).First(&restaurant).Error; err != nil {
		respondError(c, http.StatusNotFound, "RESTAURANT_NOT_FOUND", "Restaurant not found")
		return
	}

	updates := map[string]interface{}{}

	if raw, present := body["name"]; present {
		name, ok := raw.(string)
		if !ok || strings.TrimSpace(name) == "" {
			respondError(c, http.StatusBadRequest, "INVALID_NAME", "Name is required and must be a non-empty string")
			return
		}
		updates["name"] = strings.TrimSpace(name)
	}

	if raw, present := body["upiId"]; present {
		upi, ok := raw.(string)
		if !ok || strings.TrimSpace(upi) == "" {
			respondError(c, http.StatusBadRequest, "INVALID_UPI_ID", "UPI ID is required and must be a non-empty string")
			return
		}
		updates["upi_id"] = strings.TrimSpace(upi)
	}

	for field, column := range map[string]string{"address": "address", "city": "city", "state": "state", "country": "country"} {
		raw, present := body[field]
		if !present {
			continue
		}
		if raw == nil {
			updates[column] = ""
			continue
		}
		value, ok := raw.(string)
		if !ok {
			respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", field+" must be a string")
			return
		}
		updates[column] = strings.TrimSpace(value)
	}

	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "NO_UPDATE_FIELDS", "No valid fields provided for update")
		return
	}

	if err := h.DB.Model(&restaurant).Updates(updates).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to update restaurant")
		return
	}

	c.JSON(http.StatusOK, restaurant)
}

func (h *RestaurantHandler) DeleteRestaurant(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionDelete, authz.ResourceRestaurant); d != nil {
		respondDenial(c, d)
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var restaurant models.Restaurant
	if err := h.DB.Where("id = ?", id).First(&restaurant).Error; err != nil {
		respondError(c, http.StatusNotFound, "RESTAURANT_NOT_FOUND", "Restaurant not found")
		return
	}

	if err := h.DB.Delete(&restaurant).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to delete restaurant")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Restaurant deleted successfully",
		"deletedRestaurant": restaurant,
	})
}
