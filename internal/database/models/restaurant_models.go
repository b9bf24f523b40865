package models

import "time"

type MenuCategory struct {
	ID           int32  `gorm:"primaryKey;autoIncrement"`
	BranchID     int64  `gorm:"index;not null"`
	CategoryName string `gorm:"type:varchar(128);not null"`
	SortOrder    int32  `gorm:"not null;default:0"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Dishes []Dish `gorm:"foreignKey:CategoryID"`
}

type Dish struct {
	ID          int32   `gorm:"primaryKey;autoIncrement"`
	BranchID    int64   `gorm:"index;not null"`
	CategoryID  int32   `gorm:"index;not null"`
	DishName    string  `gorm:"type:varchar(128);not null"`
	Price       string  `gorm:"type:decimal(18,2);not null"`
	Description *string `gorm:"type:text"`
	ImageUrl    *string `gorm:"type:varchar(256)"`
	IsAvailable bool    `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category *MenuCategory `gorm:"foreignKey:CategoryID"`
}

type RestaurantTable struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	BranchID    int64  `gorm:"index;not null"`
	TableNumber string `gorm:"type:varchar(16);not null"`
	Capacity    int32  `gorm:"not null;default:4"`
	// open | occupied
	Status    string `gorm:"type:varchar(20);not null;default:'open'"`
	QrToken   string `gorm:"type:varchar(64);uniqueIndex;not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RestaurantOrder struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	OrderNumber string `gorm:"type:varchar(32);uniqueIndex;not null"`
	BranchID    int64  `gorm:"index;not null"`
	// exactly one of TableID / RoomID is set; RoomID orders are room service
	TableID       *int64  `gorm:"index"`
	RoomID        *int64  `gorm:"index"`
	ReservationID *int64  `gorm:"index"`
	CustomerName  *string `gorm:"type:varchar(128)"`
	CustomerPhone *string `gorm:"type:varchar(32)"`
	// pending | confirmed | preparing | ready | served | completed | cancelled
	Status         string `gorm:"type:varchar(20);not null;default:'pending'"`
	Subtotal       string `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	TaxAmount      string `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	TotalAmount    string `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	KotGenerated   bool   `gorm:"not null;default:false"`
	KotGeneratedAt *time.Time
	BotGenerated   bool `gorm:"not null;default:false"`
	BotGeneratedAt *time.Time
	ServedAt       *time.Time
	CompletedAt    *time.Time
	Notes          *string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Items []RestaurantOrderItem `gorm:"foreignKey:OrderID"`
	Table *RestaurantTable      `gorm:"foreignKey:TableID"`
	Room  *Room                 `gorm:"foreignKey:RoomID"`
	Bill  *RestaurantBill       `gorm:"foreignKey:OrderID"`
}

type RestaurantOrderItem struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	OrderID  int64 `gorm:"index;not null"`
	DishID   int32 `gorm:"not null"`
	Quantity int32 `gorm:"not null"`
	// quantity floor for guest-side edits: the quantity this line was
	// first ordered with; guests can never retract below it
	OriginalQuantity    int32   `gorm:"not null"`
	UnitPrice           string  `gorm:"type:decimal(18,2);not null"`
	TotalPrice          string  `gorm:"type:decimal(18,2);not null"`
	SpecialInstructions *string `gorm:"type:text"`
	// pending | preparing | ready | served | cancelled
	Status    string `gorm:"type:varchar(20);not null;default:'pending'"`
	IsKot     bool   `gorm:"not null;default:false"`
	IsBot     bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Dish *Dish `gorm:"foreignKey:DishID"`
}

type RestaurantBill struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	BillNumber    string `gorm:"type:varchar(32);uniqueIndex;not null"`
	OrderID       int64  `gorm:"uniqueIndex;not null"`
	BranchID      int64  `gorm:"index;not null"`
	Subtotal      string `gorm:"type:decimal(18,2);not null"`
	TaxPercentage string `gorm:"type:decimal(5,2);not null;default:'0.00'"`
	TaxAmount     string `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	DiscountAmount string `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	ServiceCharge  string `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	TotalAmount    string `gorm:"type:decimal(18,2);not null"`
	// unpaid | paid
	PaymentStatus string  `gorm:"type:varchar(20);not null;default:'unpaid'"`
	PaymentMethod *string `gorm:"type:varchar(32)"`
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
