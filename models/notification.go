package models

import "time"

const (
	NotificationMatchingRequest  = "matching_request"
	NotificationMatchingResponse = "matching_response"
)

type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Type      string         `gorm:"type:varchar(30);not null" json:"type"`
	Title     string         `gorm:"type:varchar(100);not null" json:"title"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Data      map[string]any `gorm:"serializer:json;type:text" json:"data"`
	IsRead    bool           `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
