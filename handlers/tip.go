package handlers

import (
	"math"
	"net/http"
	"strings"
	"time"

	"tipjar-backend/authz"
	"tipjar-backend/dtos"
	"tipjar-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TipHandler struct {
	DB *gorm.DB
}

var tipSortColumns = map[string]string{
	"amountCents": "tips.amount_cents",
	"createdAt":   "tips.created_at",
}

// tipRow joins a tip with its staff member and restaurant for list
// responses.
type tipRow struct {
	ID               uuid.UUID `json:"id"`
	StaffMemberID    uuid.UUID `json:"staffMemberId"`
	AmountCents      int64     `json:"amountCents"`
	Currency         string    `json:"currency"`
	PayerName        *string   `json:"payerName"`
	Message          *string   `json:"message"`
	Source           string    `json:"source"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	StaffDisplayName string    `json:"staffDisplayName"`
	RestaurantID     uuid.UUID `json:"restaurantId"`
	RestaurantName   string    `json:"restaurantName"`
}

const tipRowSelect = `tips.id, tips.staff_member_id, tips.amount_cents, tips.currency,
	tips.payer_name, tips.message, tips.source, tips.status, tips.created_at,
	staff_members.display_name AS staff_display_name,
	restaurants.id AS restaurant_id, restaurants.name AS restaurant_name`

func (h *TipHandler) ListTips(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if d := authz.CanAccess(actor, authz.ActionList, authz.ResourceTip); d != nil {
		respondDenial(c, d)
		return
	}

	q, perr := dtos.ParsePageQuery(c, []string{"amountCents", "createdAt"}, "createdAt", 20)
	if perr != nil {
		respondParamError(c, perr)
		return
	}

	query := authz.ScopeTips(h.DB.Model(&models.Tip{}), actor)

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
		query = query.Where("tips.staff_member_id = ?", staffID)
	}

	if raw := c.Query("dateFrom"); raw != "" {
		from, ok := parseDateFilter(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "INVALID_DATE_FROM", "Invalid dateFrom format. Use ISO string")
			return
		}
		query = query.Where("tips.created_at >= ?", from)
	}
	if raw := c.Query("dateTo"); raw != "" {
		to, ok := parseDateFilter(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "INVALID_DATE_TO", "Invalid dateTo format. Use ISO string")
			return
		}
		query = query.Where("tips.created_at <= ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch tips")
		return
	}

	var rows []tipRow
	if err := query.
		Select(tipRowSelect).
		Order(q.OrderClause(tipSortColumns[q.Sort])).
		Limit(q.PageSize).Offset(q.Offset()).
		Scan(&rows).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch tips")
		return
	}

	c.JSON(http.StatusOK, dtos.NewPaged(rows, q, total))
}

// CreateTip records a tip against a staff member. This is the public
// endpoint behind the tipping page, so the staff member can be
// identified by QR key or by id.
func (h *TipHandler) CreateTip(c *gin.Context) {
	var req struct {
		StaffKey  string   `json:"staffKey"`
		StaffID   string   `json:"staffId"`
		Amount    *float64 `json:"amount"`
		Currency  string   `json:"currency"`
		PayerName string   `json:"payerName"`
		Message   string   `json:"message"`
		Source    string   `json:"source"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request body")
		return
	}

	if req.StaffKey == "" && req.StaffID == "" {
		respondError(c, http.StatusBadRequest, "MISSING_STAFF_IDENTIFIER", "Either staffKey or staffId is required")
		return
	}

	if req.Amount == nil || *req.Amount <= 0 {
		respondError(c, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be a positive number")
		return
	}
	if *req.Amount < 1 || *req.Amount > 100000 {
		respondError(c, http.StatusBadRequest, "AMOUNT_OUT_OF_RANGE", "Amount must be between 1 and 100000")
		return
	}

	source := req.Source
	if source == "" {
		source = models.TipSourceQR
	} else if !models.ValidTipSource(source) {
		respondError(c, http.StatusBadRequest, "INVALID_SOURCE", "Invalid source. Must be one of: qr, link, pos")
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}

	staff, ok := resolveStaffIdentifier(h.DB, c, req.StaffKey, req.StaffID)
	if !ok {
		return
	}

	if staff.Status != models.StaffStatusActive {
		respondError(c, http.StatusBadRequest, "STAFF_INACTIVE", "This staff member is not currently accepting tips")
		return
	}

	tip := models.Tip{
		StaffMemberID: staff.ID,
		AmountCents:   int64(math.Round(*req.Amount * 100)),
		Currency:      currency,
		PayerName:     optString(req.PayerName),
		Message:       optString(req.Message),
		Source:        source,
		Status:        models.TipStatusSucceeded,
	}

	if err := h.DB.Create(&tip).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Failed to record tip")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":               tip.ID,
		"staffMemberId":    tip.StaffMemberID,
		"amountCents":      tip.AmountCents,
		"currency":         tip.Currency,
		"payerName":        tip.PayerName,
		"message":          tip.Message,
		"source":           tip.Source,
		"status":           tip.Status,
		"createdAt":        tip.CreatedAt,
		"staffDisplayName": staff.DisplayName,
		"restaurantName":   staff.Restaurant.Name,
	})
}

// resolveStaffIdentifier finds a staff member by QR key or id. The key
// wins when both are present.
func resolveStaffIdentifier(db *gorm.DB, c *gin.Context, staffKey, staffID string) (*models.StaffMember, bool) {
	var staff models.StaffMember
	query := db.Preload("Restaurant")

	if staffKey != "" {
		query = query.Where("qr_key = ?", staffKey)
	} else {
		id, err := uuid.Parse(strings.TrimSpace(staffID))
		if err != nil {
			respondError(c, http.StatusNotFound, "STAFF_NOT_FOUND", "Staff member not found")
			return nil, false
		}
		query = query.Where("id = ?", id)
	}

	if err := query.First(&staff).Error; err != nil {
		respondError(c, http.StatusNotFound, "STAFF_NOT_FOUND", "Staff member not found")
		return nil, false
	}
	return &staff, true
}
