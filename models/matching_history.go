package models

import "time"

// MatchingHistory records a realized meeting. One row per accepted
// request, written at acceptance time, immutable afterwards.
type MatchingHistory struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	RequestID   uint            `gorm:"uniqueIndex;not null" json:"request_id"`
	Request     MatchingRequest `gorm:"foreignKey:RequestID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	MatchedDate string          `gorm:"type:varchar(30);not null" json:"matched_date"`
	Location    string          `gorm:"type:varchar(100);not null" json:"location"`
	CreatedAt   time.Time       `json:"created_at"`
}
