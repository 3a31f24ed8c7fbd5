package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/velourbar/members-app/models"
	"github.com/velourbar/members-app/utils"
)

type EventController struct {
	DB *gorm.DB
}

func NewEventController(db *gorm.DB) *EventController {
	return &EventController{DB: db}
}

// GetPublishedEvents -> public listing for the marketing pages.
func (ec *EventController) GetPublishedEvents(c *gin.Context) {
	var events []models.Event
	if err := ec.DB.Where("published = ?", true).
		Order("event_date ASC").Find(&events).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Events", events)
}

// GetEventByID -> public detail, published events only.
func (ec *EventController) GetEventByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("event not found"))
		return
	}

	var event models.Event
	if err := ec.DB.Where("id = ? AND published = ?", id, true).First(&event).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("event not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Event detail", event)
}

// --- admin console ---

// GetAllEvents -> admin listing including drafts.
func (ec *EventController) GetAllEvents(c *gin.Context) {
	var events []models.Event
	if err := ec.DB.Order("event_date ASC").Find(&events).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All events", events)
}

func (ec *EventController) CreateEvent(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		EventDate   string `json:"event_date" binding:"required"`
		Capacity    int    `json:"capacity"`
		Published   bool   `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
		Capacity:    req.Capacity,
		Published:   req.Published,
	}
	if err := ec.DB.Create(&event).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Event created", event)
}

func (ec *EventController) UpdateEvent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("event not found"))
		return
	}

	var event models.Event
	if err := ec.DB.First(&event, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("event not found"))
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		EventDate   *string `json:"event_date"`
		Capacity    *int    `json:"capacity"`
		Published   *bool   `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.EventDate != nil {
		event.EventDate = *req.EventDate
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}
	if req.Published != nil {
		event.Published = *req.Published
	}

	if err := ec.DB.Save(&event).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Event updated", event)
}

func (ec *EventController) DeleteEvent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("event not found"))
		return
	}

	if err := ec.DB.Delete(&models.Event{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Event deleted", gin.H{"event_id": id})
}
