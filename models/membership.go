package models

import "time"

const (
	MembershipFree = "free"
	MembershipPaid = "paid"

	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
)

type Membership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Type      string    `gorm:"type:varchar(10);not null;default:'free'" json:"type"`
	Tier      string    `gorm:"type:varchar(15);not null;default:'bronze'" json:"tier"`
	PlanPrice float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"plan_price"`
	RenewsAt  *time.Time `json:"renews_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Membership) IsPaid() bool {
	return m.Type == MembershipPaid
}
