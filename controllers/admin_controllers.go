package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/velourbar/members-app/models"
	"github.com/velourbar/members-app/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// GetDashboardStats aggregates counts for the admin console landing page.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	var (
		totalMembers   int64
		paidMembers    int64
		pendingMatches int64
		totalMatches   int64
		upcomingVisits int64
	)

	if err := ac.DB.Model(&models.User{}).Where("role = ?", "member").Count(&totalMembers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	ac.DB.Model(&models.Membership{}).Where("type = ?", models.MembershipPaid).Count(&paidMembers)
	ac.DB.Model(&models.MatchingRequest{}).Where("status = ?", models.MatchingStatusPending).Count(&pendingMatches)
	ac.DB.Model(&models.MatchingHistory{}).Count(&totalMatches)
	ac.DB.Model(&models.VisitPlan{}).Where("status = ?", models.VisitPlanBooked).Count(&upcomingVisits)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"total_members":    totalMembers,
		"paid_members":     paidMembers,
		"pending_matches":  pendingMatches,
		"realized_matches": totalMatches,
		"upcoming_visits":  upcomingVisits,
	})
}
