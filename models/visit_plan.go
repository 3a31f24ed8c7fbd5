package models

import "time"

const (
	VisitPlanBooked    = "booked"
	VisitPlanCancelled = "cancelled"
)

type VisitPlan struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	User            User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	VisitDate       string    `gorm:"type:varchar(30);not null" json:"visit_date"`
	PartySize       int       `gorm:"not null;default:1" json:"party_size"`
	Note            string    `gorm:"type:text" json:"note"`
	ReservationCode string    `gorm:"type:varchar(40);uniqueIndex;not null" json:"reservation_code"`
	Status          string    `gorm:"type:varchar(15);not null;default:'booked'" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
