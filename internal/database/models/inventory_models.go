package models

import "time"

type StockItem struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	BranchID          int64  `gorm:"index;not null"`
	ItemCode          string `gorm:"type:varchar(32);uniqueIndex;not null"`
	ItemName          string `gorm:"type:varchar(128);not null"`
	UnitOfMeasure     string `gorm:"type:varchar(32);not null"`
	AvailableQuantity string `gorm:"type:decimal(12,3);not null;default:'0.000'"`
	ReorderLevel      string `gorm:"type:decimal(12,3);not null;default:'0.000'"`
	UnitCost          string `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	IsActive          bool   `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Movements []StockMovement `gorm:"foreignKey:StockItemID"`
}

type StockMovement struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	StockItemID int64 `gorm:"index;not null"`
	// purchase | consumption | adjustment | wastage
	MovementType  string  `gorm:"type:varchar(20);not null"`
	Quantity      string  `gorm:"type:decimal(12,3);not null"`
	UnitCost      *string `gorm:"type:decimal(18,2)"`
	ReferenceType *string `gorm:"type:varchar(32)"`
	ReferenceID   *string `gorm:"type:varchar(64)"`
	Notes         *string `gorm:"type:text"`
	CreatedBy     *int64
	CreatedAt     time.Time
}

// DishIngredient links a dish to the stock it consumes per serving, so
// completing a restaurant order can decrement inventory.
type DishIngredient struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement"`
	DishID             int32  `gorm:"index;not null"`
	StockItemID        int64  `gorm:"index;not null"`
	QuantityPerServing string `gorm:"type:decimal(12,3);not null"`
	CreatedAt          time.Time

	StockItem *StockItem `gorm:"foreignKey:StockItemID"`
}
