package models

import (
	"fmt"
	"time"
)

const (
	MatchingStatusPending   = "pending"
	MatchingStatusAccepted  = "accepted"
	MatchingStatusRejected  = "rejected"
	MatchingStatusExpired   = "expired"
	MatchingStatusCancelled = "cancelled"
)

// MatchingRequestTTL is how long a request stays open before it expires.
const MatchingRequestTTL = 72 * time.Hour

// ProposedDate is one candidate slot offered by the sender.
type ProposedDate struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type MatchingRequest struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	FromUserID uint `gorm:"not null;index" json:"from_user_id"`
	FromUser   User `gorm:"foreignKey:FromUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ToUserID   uint `gorm:"not null;index" json:"to_user_id"`
	ToUser     User `gorm:"foreignKey:ToUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	Status        string         `gorm:"type:varchar(15);not null;default:'pending'" json:"status"`
	ProposedDates []ProposedDate `gorm:"serializer:json;type:text;not null" json:"proposed_dates"`
	Message       string         `gorm:"type:text;not null" json:"message"`
	Introduction  string         `gorm:"type:text;not null" json:"introduction"`
	Topic         string         `gorm:"type:varchar(255)" json:"topic,omitempty"`

	// PendingPair is "<from>:<to>" while the request is pending and NULL
	// afterwards. The unique index is what actually guarantees at most one
	// pending request per ordered pair; the application-level duplicate
	// check only exists to produce a friendly error.
	PendingPair *string `gorm:"type:varchar(50);uniqueIndex" json:"-"`

	RespondedAt *time.Time `json:"responded_at,omitempty"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PairKey builds the PendingPair value for a sender/recipient pair.
func PairKey(fromID, toID uint) string {
	return fmt.Sprintf("%d:%d", fromID, toID)
}
