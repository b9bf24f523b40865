package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vistara-hms/internal/database/models"
	"vistara-hms/internal/utils"
)

const (
	MovementPurchase    = "purchase"
	MovementConsumption = "consumption"
	MovementAdjustment  = "adjustment"
	MovementWastage     = "wastage"
)

type InventoryHandler struct {
	db *gorm.DB
}

func NewInventoryHandler(db *gorm.DB) *InventoryHandler {
	return &InventoryHandler{db: db}
}

type CreateStockItemRequest struct {
	BranchID          int64   `json:"branch_id" binding:"required"`
	ItemCode          string  `json:"item_code" binding:"required"`
	ItemName          string  `json:"item_name" binding:"required"`
	UnitOfMeasure     string  `json:"unit_of_measure" binding:"required"`
	AvailableQuantity *string `json:"available_quantity,omitempty"`
	ReorderLevel      *string `json:"reorder_level,omitempty"`
	UnitCost          *string `json:"unit_cost,omitempty"`
}

type UpdateStockItemRequest struct {
	ItemName      *string `json:"item_name,omitempty"`
	UnitOfMeasure *string `json:"unit_of_measure,omitempty"`
	ReorderLevel  *string `json:"reorder_level,omitempty"`
	UnitCost      *string `json:"unit_cost,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

type CreateMovementRequest struct {
	StockItemID  int64   `json:"stock_item_id" binding:"required"`
	MovementType string  `json:"movement_type" binding:"required,oneof=purchase consumption adjustment wastage"`
	Quantity     string  `json:"quantity" binding:"required"`
	UnitCost     *string `json:"unit_cost,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

type ListStockQuery struct {
	BranchID *int64 `form:"branch_id,omitempty"`
	LowStock *bool  `form:"low_stock,omitempty"`
	IsActive *bool  `form:"is_active,omitempty"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

func (h *InventoryHandler) ListStockItems(c *gin.Context) {
	var q ListStockQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid query parameters"))
		return
	}

	var items []models.StockItem
	var total int64

	query := h.db.Model(&models.StockItem{})
	if q.BranchID != nil {
		query = query.Where("branch_id = ?", *q.BranchID)
	}
	if q.IsActive != nil {
		query = query.Where("is_active = ?", *q.IsActive)
	}
	if q.LowStock != nil && *q.LowStock {
		query = query.Where("available_quantity::numeric <= reorder_level::numeric")
	}

	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	offset := (q.Page - 1) * q.PageSize
	if err := query.Offset(offset).Limit(q.PageSize).Order("item_name asc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessWithMetaResponse("Stock items", items, gin.H{
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	}))
}

func (h *InventoryHandler) CreateStockItem(c *gin.Context) {
	var req CreateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	item := models.StockItem{
		BranchID:          req.BranchID,
		ItemCode:          req.ItemCode,
		ItemName:          req.ItemName,
		UnitOfMeasure:     req.UnitOfMeasure,
		AvailableQuantity: "0.000",
		ReorderLevel:      "0.000",
		UnitCost:          "0.00",
		IsActive:          true,
	}
	if req.AvailableQuantity != nil {
		item.AvailableQuantity = *req.AvailableQuantity
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}
	if req.UnitCost != nil {
		item.UnitCost = *req.UnitCost
	}

	if err := h.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create stock item: "+err.Error()))
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse("Stock item created", item))
}

func (h *InventoryHandler) UpdateStockItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid stock item id"))
		return
	}

	var req UpdateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var item models.StockItem
	if err := h.db.Where("id = ?", itemID).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Stock item not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if req.ItemName != nil {
		item.ItemName = *req.ItemName
	}
	if req.UnitOfMeasure != nil {
		item.UnitOfMeasure = *req.UnitOfMeasure
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}
	if req.UnitCost != nil {
		item.UnitCost = *req.UnitCost
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := h.db.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update stock item"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Stock item updated", item))
}

// CreateMovement records a manual stock movement and applies it to the
// item balance in one transaction. Consumption and wastage subtract;
// purchase adds; adjustment sets the signed delta as given.
func (h *InventoryHandler) CreateMovement(c *gin.Context) {
	var req CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid quantity format"))
		return
	}

	tx := h.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var item models.StockItem
	if err := tx.Where("id = ?", req.StockItemID).First(&item).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Stock item not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	available, _ := decimal.NewFromString(item.AvailableQuantity)
	switch req.MovementType {
	case MovementPurchase:
		available = available.Add(qty)
	case MovementConsumption, MovementWastage:
		available = available.Sub(qty)
	case MovementAdjustment:
		available = available.Add(qty)
	}
	item.AvailableQuantity = available.StringFixed(3)

	movement := models.StockMovement{
		StockItemID:  req.StockItemID,
		MovementType: req.MovementType,
		Quantity:     qty.StringFixed(3),
		UnitCost:     req.UnitCost,
		Notes:        req.Notes,
	}
	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(int64); ok {
			movement.CreatedBy = &id
		}
	}

	if err := tx.Create(&movement).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to record movement"))
		return
	}
	if err := tx.Save(&item).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update stock balance"))
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to commit movement"))
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse("Movement recorded", movement))
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid stock item id"))
		return
	}

	var movements []models.StockMovement
	if err := h.db.Where("stock_item_id = ?", itemID).Order("created_at desc").Limit(200).Find(&movements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Stock movements", movements))
}

// ConsumeForOrder decrements stock for every dish ingredient on a
// completed restaurant order. Runs inside the caller's transaction so
// completion stays all-or-nothing. Missing recipes are skipped; stock
// is allowed to go negative (shortfall shows up on the low-stock view
// rather than blocking a sale).
func ConsumeForOrder(tx *gorm.DB, order models.RestaurantOrder, items []models.RestaurantOrderItem) error {
	ref := "restaurant_order"
	refID := strconv.FormatInt(order.ID, 10)

	for _, item := range items {
		var ingredients []models.DishIngredient
		if err := tx.Where("dish_id = ?", item.DishID).Find(&ingredients).Error; err != nil {
			return err
		}

		for _, ing := range ingredients {
			perServing, err := decimal.NewFromString(ing.QuantityPerServing)
			if err != nil {
				continue
			}
			consumed := perServing.Mul(decimal.NewFromInt32(item.Quantity))

			var stock models.StockItem
			if err := tx.Where("id = ?", ing.StockItemID).First(&stock).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					continue
				}
				return err
			}

			available, _ := decimal.NewFromString(stock.AvailableQuantity)
			stock.AvailableQuantity = available.Sub(consumed).StringFixed(3)
			if err := tx.Save(&stock).Error; err != nil {
				return err
			}

			notes := fmt.Sprintf("order %s", order.OrderNumber)
			movement := models.StockMovement{
				StockItemID:   ing.StockItemID,
				MovementType:  MovementConsumption,
				Quantity:      consumed.StringFixed(3),
				ReferenceType: &ref,
				ReferenceID:   &refID,
				Notes:         &notes,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
