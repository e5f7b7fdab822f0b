package handlers

import (
	"net/http"
	"time"

	"tipjar-backend/authz"
	"tipjar-backend/dtos"
	"tipjar-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewHandler struct {
	DB *gorm.DB
}

var reviewSortColumns = map[string]string{
	"rating":    "reviews.rating",
	"createdAt": "reviews.created_at",
}

type reviewRow struct {
	ID               uuid.UUID  `json:"id"`
	StaffMemberID    uuid.UUID  `json:"staffMemberId"`
	Rating           int        `json:"rating"`
	Comment          *string    `json:"comment"`
	TipID            *uuid.UUID `json:"tipId"`
	Approved         bool       `json:"approved"`
	ApprovedBy       *uuid.UUID `json:"approvedBy"`
	CreatedAt        time.Time  `json:"createdAt"`
	StaffDisplayName string     `json:"staffDisplayName"`
	RestaurantID     uuid.UUID  `json:"restaurantId"`
	RestaurantName   string     `json:"restaurantName"`
	TipAmountCents   *int64     `json:"tipAmountCents"`
}

const reviewRowSelect = `reviews.id, reviews.staff_member_id, reviews.rating, reviews.comment,
	reviews.tip_id, reviews.approved, reviews.approved_by, reviews.created_at,
	staff_members.display_name AS staff_display_name,
	restaurants.id AS restaurant_id, restaurants.name AS restaurant_name,
	tips.amount_cents AS tip_amount_cents`

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionList, authz.ResourceReview); d != nil {
		respondDenial(c, d)
		return
	}

	q, perr := dtos.ParsePageQuery(c, []string{"rating", "createdAt"}, "createdAt", 10)
	if perr != nil {
		respondParamError(c, perr)
		return
	}

	query := authz.ScopeReviews(h.DB.Model(&models.Review{}), actor).
		Joins("LEFT JOIN tips ON tips.id = reviews.tip_id")

	if raw := c.Query("restaurantId"); raw != "" {
		restaurantID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_RESTAURANT_ID", "Valid restaurant ID is required")
			return
		}
		query = query.Where("staff_members.restaurant_id = ?", restaurantID)
	}

	if raw := c.Query("staffId"); raw != "" {
		staffID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_STAFF_ID", "Valid staff member ID is required")
			return
		}
		query = query.Where("reviews.staff_member_id = ?", staffID)
	}

	if raw := c.Query("approved"); raw != "" {
		switch raw {
		case "true":
			query = query.Where("reviews.approved = ?", true)
		case "false":
			query = query.Where("reviews.approved = ?", false)
		default:
			respondError(c, http.StatusBadRequest, "INVALID_APPROVED_VALUE", "approved must be true or false")
			return
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch reviews")
		return
	}

	var rows []reviewRow
	if err := query.
		Select(reviewRowSelect).
		Order(q.OrderClause(reviewSortColumns[q.Sort])).
		Limit(q.PageSize).Offset(q.Offset()).
		Scan(&rows).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch reviews")
		return
	}

	c.JSON(http.StatusOK, dtos.NewPaged(rows, q, total))
}

// CreateReview accepts a public review from the tipping page. New
// reviews start unapproved while the review_moderation toggle is on.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req struct {
		StaffKey string `json:"staffKey"`
		StaffID  string `json:"staffId"`
		Rating   *int   `json:"rating"`
		Comment  string `json:"comment"`
		TipID    string `json:"tipId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request body")
		return
	}

	if req.StaffKey == "" && req.StaffID == "" {
		respondError(c, http.StatusBadRequest, "MISSING_STAFF_IDENTIFIER", "Either staffKey or staffId is required")
		return
	}

	if req.Rating == nil {
		respondError(c, http.StatusBadRequest, "MISSING_RATING", "Rating is required")
		return
	}
	if *req.Rating < 1 || *req.Rating > 5 {
		respondError(c, http.StatusBadRequest, "INVALID_RATING", "Rating must be between 1 and 5")
		return
	}

	staff, ok := resolveStaffIdentifier(h.DB, c, req.StaffKey, req.StaffID)
	if !ok {
		return
	}

	if staff.Status != models.StaffStatusActive {
		respondError(c, http.StatusBadRequest, "STAFF_INACTIVE", "This staff member is not currently accepting reviews")
		return
	}

	var tipID *uuid.UUID
	if req.TipID != "" {
		parsed, err := uuid.Parse(req.TipID)
		if err != nil {
			respondError(c, http.StatusNotFound, "TIP_NOT_FOUND", "Tip not found")
			return
		}
		var tip models.Tip
		if err := h.DB.Where("id = ? AND staff_member_id = ?", parsed, staff.ID).First(&tip).Error; err != nil {
			respondError(c, http.StatusNotFound, "TIP_NOT_FOUND", "Tip not found")
			return
		}
		tipID = &parsed
	}

	review := models.Review{
		StaffMemberID: staff.ID,
		Rating:        *req.Rating,
		Comment:       optString(req.Comment),
		TipID:         tipID,
		Approved:      !h.moderationEnabled(),
	}

	if err := h.DB.Create(&review).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to create review")
		return
	}

	c.JSON(http.StatusCreated, review)
}

// ModerateReview approves or rejects a review for a staff member the
// actor manages.
func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionModerate, authz.ResourceReview); d != nil {
		respondDenial(c, d)
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Approved *bool `json:"approved"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Approved == nil {
		respondError(c, http.StatusBadRequest, "INVALID_APPROVED_VALUE", "approved must be true or false")
		return
	}

	var review models.Review
	if err := h.DB.Where("id = ?", id).First(&review).Error; err != nil {
		respondError(c, http.StatusNotFound, "REVIEW_NOT_FOUND", "Review not found")
		return
	}

	var staff models.StaffMember
	if err := h.DB.Preload("Restaurant").Where("id = ?", review.StaffMemberID).First(&staff).Error; err != nil {
		respondError(c, http.StatusNotFound, "REVIEW_NOT_FOUND", "Review not found")
		return
	}

	grant := authz.GrantFor(actor, authz.ActionModerate, authz.ResourceReview)
	if grant == authz.GrantOwned {
		if d := authz.CheckOwnership(actor, grant, &staff.Restaurant.OwnerUserID); d != nil {
			respondDenial(c, d)
			return
		}
	}

	updates := map[string]interface{}{
		"approved":    *req.Approved,
		"approved_by": actor.ID,
	}
	if err := h.DB.Model(&review).Updates(updates).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to update review")
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) moderationEnabled() bool {
	var toggle models.FeatureToggle
	if err := h.DB.Where("key = ?", models.ReviewModerationKey).First(&toggle).Error; err != nil {
		return false
	}
	return toggle.Enabled
}
