package models

import "time"

type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	EventDate   string    `gorm:"type:varchar(30);not null" json:"event_date"`
	Capacity    int       `gorm:"not null;default:0" json:"capacity"`
	Published   bool      `gorm:"not null;default:false;index" json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
