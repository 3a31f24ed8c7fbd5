package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/velourbar/members-app/models"
	"github.com/velourbar/members-app/utils"
)

type MembershipController struct {
	DB *gorm.DB
}

func NewMembershipController(db *gorm.DB) *MembershipController {
	return &MembershipController{DB: db}
}

// Tier prices per month. Billing itself belongs to the payment
// provider; these only feed the simulated upgrade flow.
var tierPrices = map[string]float64{
	models.TierBronze:   5000,
	models.TierSilver:   10000,
	models.TierGold:     20000,
	models.TierPlatinum: 50000,
}

// GetMembership returns the caller's membership state.
func (mc *MembershipController) GetMembership(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoIdentity)
		return
	}

	var membership models.Membership
	if err := mc.DB.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("membership not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Membership", membership)
}

// Upgrade sets the caller's membership to paid at the requested tier.
// Checkout is simulated; a real deployment would gate this behind the
// payment provider's webhook.
func (mc *MembershipController) Upgrade(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoIdentity)
		return
	}

	var req struct {
		Tier string `json:"tier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	price, known := tierPrices[req.Tier]
	if !known {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unknown tier"))
		return
	}

	var membership models.Membership
	if err := mc.DB.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("membership not found"))
		return
	}

	renews := time.Now().UTC().AddDate(0, 1, 0)
	membership.Type = models.MembershipPaid
	membership.Tier = req.Tier
	membership.PlanPrice = price
	membership.RenewsAt = &renews

	if err := mc.DB.Save(&membership).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Membership upgraded: user=%d tier=%s", userID, req.Tier)
	utils.RespondJSON(c, http.StatusOK, "Membership upgraded", membership)
}

// ListMembers -> admin view of all members with membership state.
func (mc *MembershipController) ListMembers(c *gin.Context) {
	var memberships []models.Membership
	if err := mc.DB.Preload("User").Order("created_at DESC").Find(&memberships).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type memberRow struct {
		models.Membership
		User models.ProfileSummary `json:"user"`
	}
	rows := make([]memberRow, 0, len(memberships))
	for _, m := range memberships {
		rows = append(rows, memberRow{Membership: m, User: m.User.Summary()})
	}
	utils.RespondJSON(c, http.StatusOK, "Members", rows)
}
