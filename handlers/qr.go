package handlers

import (
	"math"
	"net/http"

	"tipjar-backend/models"
	"tipjar-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type QrHandler struct {
	DB *gorm.DB
}

// ResolveQr powers the public tipping page. It returns everything the
// page needs in one round trip: staff identity, a ready-to-open UPI
// link, recent approved reviews and recent tips, and aggregate stats.
// Inactive staff resolve like missing ones so retired QR codes leak
// nothing.
func (h *QrHandler) ResolveQr(c *gin.Context) {
	key := c.Param("key")

	var staff models.StaffMember
	if err := h.DB.Preload("Restaurant").Where("qr_key = ?", key).First(&staff).Error; err != nil {
		respondError(c, http.StatusNotFound, "STAFF_NOT_FOUND", "Staff member not found")
		return
	}

	if staff.Status != models.StaffStatusActive {
		respondError(c, http.StatusNotFound, "STAFF_INACTIVE", "This staff member is not currently accepting tips")
		return
	}

	var reviews []models.Review
	if err := h.DB.
		Where("staff_member_id = ? AND approved = ?", staff.ID, true).
		Order("created_at DESC").Limit(5).
		Find(&reviews).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to load tipping page")
		return
	}

	var tips []models.Tip
	if err := h.DB.
		Where("staff_member_id = ? AND status = ?", staff.ID, models.TipStatusSucceeded).
		Order("created_at DESC").Limit(5).
		Find(&tips).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to load tipping page")
		return
	}

	var ratingStats struct {
		AverageRating float64
		ReviewCount   int64
	}
	if err := h.DB.Model(&models.Review{}).
		Where("staff_member_id = ? AND approved = ?", staff.ID, true).
		Select("COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS review_count").
		Scan(&ratingStats).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to load tipping page")
		return
	}

	var tipStats struct {
		TotalAmount int64
		TipCount    int64
	}
	if err := h.DB.Model(&models.Tip{}).
		Where("staff_member_id = ? AND status = ?", staff.ID, models.TipStatusSucceeded).
		Select("COALESCE(SUM(amount_cents), 0) AS total_amount, COUNT(*) AS tip_count").
		Scan(&tipStats).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to load tipping page")
		return
	}

	// Staff level UPI ID wins over the restaurant's.
	upiID := staff.Restaurant.UpiID
	if staff.UpiID != nil && *staff.UpiID != "" {
		upiID = *staff.UpiID
	}

	c.JSON(http.StatusOK, gin.H{
		"staff": gin.H{
			"id":          staff.ID,
			"displayName": staff.DisplayName,
			"role":        staff.Role,
			"qrKey":       staff.QrKey,
		},
		"restaurant": gin.H{
			"id":      staff.Restaurant.ID,
			"name":    staff.Restaurant.Name,
			"address": staff.Restaurant.Address,
			"city":    staff.Restaurant.City,
		},
		"upiId":   upiID,
		"upiLink": utils.BuildUpiLink(upiID, staff.DisplayName, 0, "Tip for "+staff.DisplayName),
		"reviews": reviews,
		"tips":    tips,
		"stats": gin.H{
			"averageRating": math.Round(ratingStats.AverageRating*100) / 100,
			"reviewCount":   ratingStats.ReviewCount,
			"tipCount":      tipStats.TipCount,
			"totalAmount":   tipStats.TotalAmount,
		},
	})
}
