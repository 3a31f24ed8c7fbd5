package services

import (
	"time"

	"github.com/velourbar/members-app/models"
	"github.com/velourbar/members-app/utils"
	"gorm.io/gorm"
)

// Notifier writes notification rows for lifecycle side effects. Emit is
// best-effort: the triggering transition has already committed, so a
// failed write is logged and swallowed rather than rolled back.
type Notifier struct {
	DB *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{DB: db}
}

func (n *Notifier) Emit(userID uint, notifType, title, message string, data map[string]any) {
	notif := models.Notification{
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.DB.Create(&notif).Error; err != nil {
		if utils.ErrorLogger != nil {
			utils.ErrorLogger.Errorf("failed to write %s notification for user %d: %v", notifType, userID, err)
		}
	}
}
