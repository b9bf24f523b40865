package models

import "time"

type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Firstname string `gorm:"not null"`
	Lastname  string `gorm:"not null"`
	RoleID    int32  `gorm:"not null"`
	Role      Role   `gorm:"foreignKey:RoleID"`
	BranchID  *int64 `gorm:"index"`
	IsActive  bool   `gorm:"default:false"`
	LastLogin *time.Time
	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

type Role struct {
	ID          int32      `gorm:"primaryKey;autoIncrement"`
	RoleName    string     `gorm:"uniqueIndex;not null"`
	AccessLevel int32      `gorm:"not null"`
	Permissions string     `gorm:"type:text"`
	CreatedAt   *time.Time `gorm:"autoCreateTime"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime"`
}

// PushSubscription is one admin browser subscribed to web-push events.
type PushSubscription struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Endpoint  string `gorm:"type:text;uniqueIndex:idx_push_endpoint,length:512;not null"`
	P256dh    string `gorm:"type:text;not null"`
	Auth      string `gorm:"type:text;not null"`
	UserID    *int64 `gorm:"index"`
	BranchID  *int64 `gorm:"index"`
	CreatedAt time.Time
}
