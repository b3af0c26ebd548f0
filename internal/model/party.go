package model

import "time"

// User is an authentication identity.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsSuperuser  bool      `gorm:"not null" json:"is_superuser"`
	IsStaff      bool      `gorm:"not null" json:"is_staff"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Client owns machines. Each user is linked to at most one client.
type Client struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null;default:noname" json:"title"`
	Description string `gorm:"size:255;not null" json:"description"`
	UserID      int64  `gorm:"uniqueIndex;not null" json:"user_id"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ServiceCompany services machines. Each user is linked to at most one company.
type ServiceCompany struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null;default:noname" json:"title"`
	Description string `gorm:"size:255;not null" json:"description"`
	UserID      int64  `gorm:"uniqueIndex;not null" json:"user_id"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Client) TableName() string         { return "clients" }
func (ServiceCompany) TableName() string { return "service_companies" }
