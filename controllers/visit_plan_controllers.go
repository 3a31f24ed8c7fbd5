package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velourbar/members-app/models"
	"github.com/velourbar/members-app/utils"
)

type VisitPlanController struct {
	DB *gorm.DB
}

func NewVisitPlanController(db *gorm.DB) *VisitPlanController {
	return &VisitPlanController{DB: db}
}

// GetVisitPlans returns the caller's reservations, soonest first.
func (vc *VisitPlanController) GetVisitPlans(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoIdentity)
		return
	}

	var plans []models.VisitPlan
	if err := vc.DB.Where("user_id = ?", userID).
		Order("visit_date ASC").Find(&plans).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Visit plans", plans)
}

// CreateVisitPlan books a visit and hands back a reservation code.
func (vc *VisitPlanController) CreateVisitPlan(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoIdentity)
		return
	}

	var req struct {
		VisitDate string `json:"visit_date" binding:"required"`
		PartySize int    `json:"party_size" binding:"required,min=1"`
		Note      string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	plan := models.VisitPlan{
		UserID:          userID,
		VisitDate:       req.VisitDate,
		PartySize:       req.PartySize,
		Note:            req.Note,
		ReservationCode: uuid.NewString(),
		Status:          models.VisitPlanBooked,
	}
	if err := vc.DB.Create(&plan).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Visit plan %d booked for user %d (%s)", plan.ID, userID, plan.VisitDate)
	utils.RespondJSON(c, http.StatusCreated, "Visit plan booked", plan)
}

// CancelVisitPlan cancels one of the caller's booked reservations.
// Ownership-filtered conditional update: a foreign or already-cancelled
// plan is a plain 404.
func (vc *VisitPlanController) CancelVisitPlan(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoIdentity)
		return
	}

	planID, err := strconv.Atoi(c.Param("plan_id"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("visit plan not found"))
		return
	}

	res := vc.DB.Model(&models.VisitPlan{}).
		Where("id = ? AND user_id = ? AND status = ?", planID, userID, models.VisitPlanBooked).
		Update("status", models.VisitPlanCancelled)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("visit plan not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Visit plan cancelled", gin.H{"plan_id": planID})
}
