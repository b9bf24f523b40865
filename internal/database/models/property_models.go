package models

import "time"

type Branch struct {
	ID         int64   `gorm:"primaryKey;autoIncrement"`
	BranchCode string  `gorm:"type:varchar(32);uniqueIndex;not null"`
	BranchName string  `gorm:"type:varchar(128);not null"`
	Address    *string `gorm:"type:text"`
	Phone      *string `gorm:"type:varchar(32)"`
	Email      *string `gorm:"type:varchar(128)"`
	IsActive   bool    `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type RoomType struct {
	ID           int32   `gorm:"primaryKey;autoIncrement"`
	BranchID     int64   `gorm:"index;not null"`
	TypeName     string  `gorm:"type:varchar(64);not null"`
	BaseRate     string  `gorm:"type:decimal(18,2);not null"`
	MaxOccupancy int32   `gorm:"not null;default:2"`
	Description  *string `gorm:"type:text"`
	IsActive     bool    `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Branch *Branch `gorm:"foreignKey:BranchID"`
}

type Room struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	BranchID   int64  `gorm:"index;not null"`
	RoomTypeID int32  `gorm:"not null"`
	RoomNumber string `gorm:"type:varchar(16);not null"`
	Floor      *int32
	// available | occupied | cleaning | maintenance
	Status    string `gorm:"type:varchar(20);not null;default:'available'"`
	QrToken   string `gorm:"type:varchar(64);uniqueIndex;not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Branch   *Branch   `gorm:"foreignKey:BranchID"`
	RoomType *RoomType `gorm:"foreignKey:RoomTypeID"`
}

type Guest struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	BranchID  int64   `gorm:"index;not null"`
	FullName  string  `gorm:"type:varchar(128);not null"`
	Phone     string  `gorm:"type:varchar(32);not null"`
	Email     *string `gorm:"type:varchar(128)"`
	IDNumber  *string `gorm:"type:varchar(64)"`
	Address   *string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Reservation struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement"`
	ConfirmationNumber string `gorm:"type:varchar(32);uniqueIndex;not null"`
	BranchID           int64  `gorm:"index;not null"`
	GuestID            int64  `gorm:"index;not null"`
	// confirmed | pending | checked-in | checked-out | cancelled | no-show
	Status         string  `gorm:"type:varchar(20);not null;default:'pending'"`
	Subtotal       string  `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	DiscountAmount string  `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	TaxAmount      string  `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	TotalAmount    string  `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	PaidAmount     string  `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	Notes          *string `gorm:"type:text"`
	CheckedInAt    *time.Time
	CheckedOutAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Guest *Guest            `gorm:"foreignKey:GuestID"`
	Rooms []ReservationRoom `gorm:"foreignKey:ReservationID"`
}

type ReservationRoom struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	ReservationID int64     `gorm:"index;not null"`
	RoomID        int64     `gorm:"not null"`
	CheckInDate   time.Time `gorm:"not null"`
	CheckOutDate  time.Time `gorm:"not null"`
	Adults        int32     `gorm:"not null;default:1"`
	Children      int32     `gorm:"not null;default:0"`
	Nights        int32     `gorm:"not null;default:1"`
	Rate          string    `gorm:"type:decimal(18,2);not null"`
	TotalAmount   string    `gorm:"type:decimal(18,2);not null"`
	CreatedAt     time.Time

	Room *Room `gorm:"foreignKey:RoomID"`
}

type Tax struct {
	ID        int32  `gorm:"primaryKey;autoIncrement"`
	TaxName   string `gorm:"type:varchar(64);not null"`
	Rate      string `gorm:"type:decimal(5,2);not null"`
	BranchID  *int64 `gorm:"index"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
