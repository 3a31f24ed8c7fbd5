package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Interests string    `gorm:"type:varchar(255)" json:"interests"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileSummary is the slice of a user shown to other members,
// e.g. on matching request lists.
type ProfileSummary struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	Interests string `json:"interests"`
}

func (u *User) Summary() ProfileSummary {
	return ProfileSummary{
		ID:        u.ID,
		Name:      u.Name,
		Bio:       u.Bio,
		Interests: u.Interests,
	}
}
