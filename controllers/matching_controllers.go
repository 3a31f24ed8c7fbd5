package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/velourbar/members-app/models"
	"github.com/velourbar/members-app/services"
	"github.com/velourbar/members-app/utils"
)

type MatchingController struct {
	Service *services.MatchingService
}

func NewMatchingController(svc *services.MatchingService) *MatchingController {
	return &MatchingController{Service: svc}
}

// matchingErrorStatus maps service errors to HTTP status codes.
func matchingErrorStatus(err error) int {
	var quotaErr *services.QuotaExceededError
	switch {
	case errors.As(err, &quotaErr):
		return http.StatusTooManyRequests
	case errors.Is(err, services.ErrNotPaidMember):
		return http.StatusForbidden
	case errors.Is(err, services.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, services.ErrSelfRequest),
		errors.Is(err, services.ErrRecipientNotEligible),
		errors.Is(err, services.ErrDuplicatePending),
		errors.Is(err, services.ErrRequestExpired),
		errors.Is(err, services.ErrMissingSelectedDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondMatchingError(c *gin.Context, err error) {
	code := matchingErrorStatus(err)
	if code == http.StatusInternalServerError {
		utils.ErrorLogger.Errorf("matching operation failed: %v", err)
		err = errors.New("unexpected error, please try again")
	}
	utils.RespondError(c, code, err)
}

// ListRequests -> GET /matching/requests?type=sent|received
func (mc *MatchingController) ListRequests(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoIdentity)
		return
	}

	scope := c.Query("type")
	switch scope {
	case services.ScopeSent, services.ScopeReceived:
	case "":
		scope = services.ScopeBoth
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("type must be sent or received"))
		return
	}

	views, err := mc.Service.List(userID, scope)
	if err != nil {
		respondMatchingError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Matching requests", views)
}

// CreateRequest -> POST /matching/requests
func (mc *MatchingController) CreateRequest(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoIdentity)
		return
	}

	var body struct {
		ToUserID      uint                  `json:"to_user_id"`
		ProposedDates []models.ProposedDate `json:"proposed_dates"`
		Message       string                `json:"message"`
		Introduction  string                `json:"introduction"`
		Topic         string                `json:"topic"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	req, err := mc.Service.Create(userID, services.CreateMatchingInput{
		ToUserID:      body.ToUserID,
		ProposedDates: body.ProposedDates,
		Message:       body.Message,
		Introduction:  body.Introduction,
		Topic:         body.Topic,
	})
	if err != nil {
		respondMatchingError(c, err)
		return
	}

	utils.InfoLogger.Printf("Matching request %d created: %d -> %d", req.ID, req.FromUserID, req.ToUserID)
	utils.RespondJSON(c, http.StatusOK, "Matching request created", req)
}

// AcceptRequest -> POST /matching/requests/:request_id/accept
func (mc *MatchingController) AcceptRequest(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoIdentity)
		return
	}

	requestID, err := strconv.Atoi(c.Param("request_id"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, services.ErrRequestNotFound)
		return
	}

	var body struct {
		SelectedDate *models.ProposedDate `json:"selected_date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	selected := models.ProposedDate{}
	if body.SelectedDate != nil {
		selected = *body.SelectedDate
	}

	req, err := mc.Service.Accept(userID, uint(requestID), selected)
	if err != nil {
		respondMatchingError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Matching request accepted", req)
}

// RejectRequest -> POST /matching/requests/:request_id/reject
func (mc *MatchingController) RejectRequest(c *gin.Context) {
	mc.resolveRequest(c, mc.Service.Reject, "Matching request rejected")
}

// CancelRequest -> POST /matching/requests/:request_id/cancel
func (mc *MatchingController) CancelRequest(c *gin.Context) {
	mc.resolveRequest(c, mc.Service.Cancel, "Matching request cancelled")
}

func (mc *MatchingController) resolveRequest(c *gin.Context, op func(uint, uint) (*models.MatchingRequest, error), message string) {
	userID, ok := callerID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoIdentity)
		return
	}

	requestID, err := strconv.Atoi(c.Param("request_id"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, services.ErrRequestNotFound)
		return
	}

	req, err := op(userID, uint(requestID))
	if err != nil {
		respondMatchingError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, req)
}

// GetHistory -> GET /matching/history
func (mc *MatchingController) GetHistory(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoIdentity)
		return
	}

	rows, err := mc.Service.History(userID)
	if err != nil {
		respondMatchingError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Matching history", rows)
}
