package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vistara-hms/internal/database/models"
	"vistara-hms/internal/services/notification"
	"vistara-hms/internal/utils"

	invhandler "vistara-hms/internal/services/inventory/handler"
)

const (
	RESTAURANT_CACHE_PREFIX = "restaurant:"
	MENU_CACHE_KEY          = "restaurant:menu"

	CACHE_TTL_SHORT  = 5 * time.Minute
	CACHE_TTL_MEDIUM = 30 * time.Minute
)

const (
	TableStatusOpen     = "open"
	TableStatusOccupied = "occupied"
)

type RestaurantHandler struct {
	db       *gorm.DB
	redis    *redis.Client
	notifier *notification.Dispatcher
}

func NewRestaurantHandler(db *gorm.DB, redisClient *redis.Client, notifier *notification.Dispatcher) *RestaurantHandler {
	return &RestaurantHandler{
		db:       db,
		redis:    redisClient,
		notifier: notifier,
	}
}

func (h *RestaurantHandler) InvalidateMenuCaches(ctx context.Context, branchIDs ...int64) {
	_ = h.redis.Del(ctx, MENU_CACHE_KEY)
	for _, id := range branchIDs {
		_ = h.redis.Del(ctx, fmt.Sprintf("%s%d", RESTAURANT_CACHE_PREFIX, id))
	}
}

// --- Requests ---

type OrderItemRequest struct {
	DishID              int32   `json:"dish_id" binding:"required"`
	Quantity            int32   `json:"quantity" binding:"required,gt=0"`
	SpecialInstructions *string `json:"special_instructions,omitempty"`
}

type CreateOrderRequest struct {
	BranchID      int64              `json:"branch_id" binding:"required"`
	TableID       *int64             `json:"table_id,omitempty"`
	RoomID        *int64             `json:"room_id,omitempty"`
	ReservationID *int64             `json:"reservation_id,omitempty"`
	CustomerName  *string            `json:"customer_name,omitempty"`
	CustomerPhone *string            `json:"customer_phone,omitempty"`
	Notes         *string            `json:"notes,omitempty"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CreateBillRequest struct {
	OrderID        int64   `json:"order_id" binding:"required"`
	DiscountAmount *string `json:"discount_amount,omitempty"`
	PaymentMethod  *string `json:"payment_method,omitempty"`
}

type PayBillRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type ListOrdersQuery struct {
	BranchID *int64  `form:"branch_id,omitempty"`
	Status   *string `form:"status,omitempty"`
	Page     int     `form:"page,default=1"`
	PageSize int     `form:"page_size,default=20"`
}

// --- Orders ---

func (h *RestaurantHandler) ListOrders(c *gin.Context) {
	var q ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid query parameters"))
		return
	}

	var orders []models.RestaurantOrder
	var total int64

	query := h.db.Model(&models.RestaurantOrder{}).
		Preload("Items.Dish").
		Preload("Table").
		Preload("Bill")

	if q.BranchID != nil {
		query = query.Where("branch_id = ?", *q.BranchID)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	offset := (q.Page - 1) * q.PageSize
	if err := query.Order("created_at desc").Offset(offset).Limit(q.PageSize).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessWithMetaResponse("Orders", orders, gin.H{
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	}))
}

// ListRoomServiceOrders is the room-service subset: orders bound to a
// room instead of a table.
func (h *RestaurantHandler) ListRoomServiceOrders(c *gin.Context) {
	var q ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid query parameters"))
		return
	}

	query := h.db.Model(&models.RestaurantOrder{}).
		Preload("Items.Dish").
		Preload("Room").
		Where("room_id IS NOT NULL")

	if q.BranchID != nil {
		query = query.Where("branch_id = ?", *q.BranchID)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}

	var orders []models.RestaurantOrder
	if err := query.Order("created_at desc").Limit(100).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Room service orders", orders))
}

func (h *RestaurantHandler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid order id"))
		return
	}

	var order models.RestaurantOrder
	if err := h.db.Where("id = ?", orderID).
		Preload("Items.Dish").
		Preload("Table").
		Preload("Room").
		Preload("Bill").
		First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Order", order))
}

// CreateOrder inserts the order with its items and marks the table
// occupied, all in one transaction.
func (h *RestaurantHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	if (req.TableID == nil) == (req.RoomID == nil) {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Exactly one of table_id or room_id must be provided"))
		return
	}

	tx := h.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order, err := createOrderTx(tx, req)
	if err != nil {
		tx.Rollback()
		status, msg := orderErrorStatus(err)
		c.JSON(status, utils.ErrorResponse(msg))
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create order"))
		return
	}

	h.notifier.NotifyAsync(notification.Event{
		Type:     notification.EventOrderCreated,
		Title:    "New restaurant order",
		Body:     fmt.Sprintf("Order %s placed", order.OrderNumber),
		BranchID: order.BranchID,
		Data:     map[string]interface{}{"order_id": order.ID},
	})

	c.JSON(http.StatusCreated, utils.SuccessResponse("Order created", order))
}

func orderErrorStatus(err error) (int, string) {
	switch err {
	case ErrOrderNotFound:
		return http.StatusNotFound, "Order not found"
	case ErrUnknownStatus:
		return http.StatusBadRequest, "Unknown order status"
	case ErrInvalidTransition:
		return http.StatusConflict, "Illegal status transition"
	case errTargetNotFound:
		return http.StatusNotFound, "Table or room not found"
	case errNoDish:
		return http.StatusBadRequest, "Order references an unknown or unavailable dish"
	}
	return http.StatusInternalServerError, "Database error"
}

var (
	errTargetNotFound = fmt.Errorf("order target not found")
	errNoDish         = fmt.Errorf("dish not found")
)

func createOrderTx(tx *gorm.DB, req CreateOrderRequest) (*models.RestaurantOrder, error) {
	now := time.Now()

	order := models.RestaurantOrder{
		OrderNumber:   utils.OrderNumber(now),
		BranchID:      req.BranchID,
		TableID:       req.TableID,
		RoomID:        req.RoomID,
		ReservationID: req.ReservationID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Status:        StatusPending,
		Notes:         req.Notes,
	}

	if req.TableID != nil {
		var table models.RestaurantTable
		if err := tx.Where("id = ? AND is_active = ?", *req.TableID, true).First(&table).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errTargetNotFound
			}
			return nil, err
		}
		table.Status = TableStatusOccupied
		if err := tx.Save(&table).Error; err != nil {
			return nil, err
		}
	} else {
		var room models.Room
		if err := tx.Where("id = ? AND is_active = ?", *req.RoomID, true).First(&room).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errTargetNotFound
			}
			return nil, err
		}
	}

	subtotal := decimal.Zero
	items := make([]models.RestaurantOrderItem, 0, len(req.Items))
	for _, ir := range req.Items {
		var dish models.Dish
		if err := tx.Where("id = ? AND is_available = ?", ir.DishID, true).First(&dish).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errNoDish
			}
			return nil, err
		}

		unitPrice, err := decimal.NewFromString(dish.Price)
		if err != nil {
			return nil, err
		}
		lineTotal := unitPrice.Mul(decimal.NewFromInt32(ir.Quantity))
		subtotal = subtotal.Add(lineTotal)

		items = append(items, models.RestaurantOrderItem{
			DishID:              ir.DishID,
			Quantity:            ir.Quantity,
			OriginalQuantity:    ir.Quantity,
			UnitPrice:           unitPrice.StringFixed(2),
			TotalPrice:          lineTotal.StringFixed(2),
			SpecialInstructions: ir.SpecialInstructions,
			Status:              StatusPending,
		})
	}

	order.Subtotal = subtotal.StringFixed(2)
	order.TaxAmount = "0.00"
	order.TotalAmount = subtotal.StringFixed(2)

	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := tx.Create(&items).Error; err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// UpdateOrderStatus applies one state-machine transition and its side
// effects atomically: served stamps served_at; completed stamps
// completed_at, releases the table, consumes stock, and synthesizes a
// bill when none exists.
func (h *RestaurantHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid order id"))
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	tx := h.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order, err := updateOrderStatusTx(tx, orderID, req.Status)
	if err != nil {
		tx.Rollback()
		status, msg := orderErrorStatus(err)
		c.JSON(status, utils.ErrorResponse(msg))
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update order"))
		return
	}

	h.notifier.NotifyAsync(notification.Event{
		Type:     notification.EventOrderStatusChanged,
		Title:    "Order status changed",
		Body:     fmt.Sprintf("Order %s is now %s", order.OrderNumber, order.Status),
		BranchID: order.BranchID,
		Data:     map[string]interface{}{"order_id": order.ID, "status": order.Status},
	})

	c.JSON(http.StatusOK, utils.SuccessResponse("Order status updated", order))
}

func updateOrderStatusTx(tx *gorm.DB, orderID int64, newStatus string) (*models.RestaurantOrder, error) {
	var order models.RestaurantOrder
	if err := tx.Where("id = ?", orderID).Preload("Items").First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if err := CheckTransition(order.Status, newStatus); err != nil {
		return nil, err
	}

	now := time.Now()
	order.Status = newStatus

	switch newStatus {
	case StatusServed:
		order.ServedAt = &now

	case StatusCompleted:
		order.CompletedAt = &now

		if order.TableID != nil {
			if err := tx.Model(&models.RestaurantTable{}).
				Where("id = ?", *order.TableID).
				Update("status", TableStatusOpen).Error; err != nil {
				return nil, err
			}
		}

		var billCount int64
		if err := tx.Model(&models.RestaurantBill{}).Where("order_id = ?", order.ID).Count(&billCount).Error; err != nil {
			return nil, err
		}
		if billCount == 0 {
			subtotal, err := decimal.NewFromString(order.Subtotal)
			if err != nil {
				subtotal = decimal.Zero
			}
			serviceCharge, taxAmount, total := CompletionBillTotals(subtotal)

			bill := models.RestaurantBill{
				BillNumber:    utils.BillNumber(now),
				OrderID:       order.ID,
				BranchID:      order.BranchID,
				Subtotal:      subtotal.StringFixed(2),
				TaxPercentage: "13.00",
				TaxAmount:     taxAmount.StringFixed(2),
				ServiceCharge: serviceCharge.StringFixed(2),
				TotalAmount:   total.StringFixed(2),
				PaymentStatus: "unpaid",
			}
			if err := tx.Create(&bill).Error; err != nil {
				return nil, err
			}
			order.Bill = &bill
		}

		if err := invhandler.ConsumeForOrder(tx, order, order.Items); err != nil {
			return nil, err
		}

	case StatusCancelled:
		if order.TableID != nil {
			if err := tx.Model(&models.RestaurantTable{}).
				Where("id = ?", *order.TableID).
				Update("status", TableStatusOpen).Error; err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Omit(clause.Associations).Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// --- KOT / BOT ---

// GenerateKOT marks every un-ticketed item and returns exactly the
// newly included set; a second run with no new items returns an empty
// list.
func (h *RestaurantHandler) GenerateKOT(c *gin.Context) {
	h.generateTicket(c, KitchenTicket)
}

func (h *RestaurantHandler) GenerateBOT(c *gin.Context) {
	h.generateTicket(c, BeverageTicket)
}

func (h *RestaurantHandler) generateTicket(c *gin.Context, kind TicketKind) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid order id"))
		return
	}

	tx := h.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var order models.RestaurantOrder
	if err := tx.Where("id = ?", orderID).Preload("Items.Dish").First(&order).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	newItems := UnticketedItems(order.Items, kind)

	if len(newItems) > 0 {
		ids := make([]int64, 0, len(newItems))
		for _, item := range newItems {
			ids = append(ids, item.ID)
		}

		flag := "is_kot"
		if kind == BeverageTicket {
			flag = "is_bot"
		}
		if err := tx.Model(&models.RestaurantOrderItem{}).
			Where("id IN ?", ids).
			Update(flag, true).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to mark items"))
			return
		}

		now := time.Now()
		if kind == KitchenTicket {
			order.KotGenerated = true
			order.KotGeneratedAt = &now
		} else {
			order.BotGenerated = true
			order.BotGeneratedAt = &now
		}
		if err := tx.Omit(clause.Associations).Save(&order).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update order"))
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to generate ticket"))
		return
	}

	name := "KOT"
	if kind == BeverageTicket {
		name = "BOT"
	}
	c.JSON(http.StatusOK, utils.SuccessResponse(name+" generated", gin.H{
		"order_number": order.OrderNumber,
		"items":        newItems,
	}))
}

// --- Bills ---

type ListBillsQuery struct {
	BranchID      *int64  `form:"branch_id,omitempty"`
	PaymentStatus *string `form:"payment_status,omitempty"`
	Page          int     `form:"page,default=1"`
	PageSize      int     `form:"page_size,default=20"`
}

func (h *RestaurantHandler) ListBills(c *gin.Context) {
	var q ListBillsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid query parameters"))
		return
	}

	var bills []models.RestaurantBill
	var total int64

	query := h.db.Model(&models.RestaurantBill{})
	if q.BranchID != nil {
		query = query.Where("branch_id = ?", *q.BranchID)
	}
	if q.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *q.PaymentStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	offset := (q.Page - 1) * q.PageSize
	if err := query.Order("created_at desc").Offset(offset).Limit(q.PageSize).Find(&bills).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessWithMetaResponse("Bills", bills, gin.H{
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	}))
}

// CreateBill is the manual dine-in path: flat 10% tax on the
// discounted subtotal.
func (h *RestaurantHandler) CreateBill(c *gin.Context) {
	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var order models.RestaurantOrder
	if err := h.db.Where("id = ?", req.OrderID).First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	var existing models.RestaurantBill
	if err := h.db.Where("order_id = ?", req.OrderID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, utils.ErrorResponse("Bill already exists for this order"))
		return
	} else if err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	subtotal, err := decimal.NewFromString(order.Subtotal)
	if err != nil {
		subtotal = decimal.Zero
	}
	discount := decimal.Zero
	if req.DiscountAmount != nil {
		if d, err := decimal.NewFromString(*req.DiscountAmount); err == nil {
			discount = d
		}
	}

	taxAmount, total := ManualBillTotals(subtotal, discount)

	bill := models.RestaurantBill{
		BillNumber:     utils.BillNumber(time.Now()),
		OrderID:        order.ID,
		BranchID:       order.BranchID,
		Subtotal:       subtotal.StringFixed(2),
		TaxPercentage:  "10.00",
		TaxAmount:      taxAmount.StringFixed(2),
		DiscountAmount: discount.StringFixed(2),
		TotalAmount:    total.StringFixed(2),
		PaymentStatus:  "unpaid",
		PaymentMethod:  req.PaymentMethod,
	}

	if err := h.db.Create(&bill).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create bill: "+err.Error()))
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse("Bill created", bill))
}

func (h *RestaurantHandler) PayBill(c *gin.Context) {
	billID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid bill id"))
		return
	}

	var req PayBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var bill models.RestaurantBill
	if err := h.db.Where("id = ?", billID).First(&bill).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Bill not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if bill.PaymentStatus == "paid" {
		c.JSON(http.StatusConflict, utils.ErrorResponse("Bill already paid"))
		return
	}

	now := time.Now()
	bill.PaymentStatus = "paid"
	bill.PaymentMethod = &req.PaymentMethod
	bill.PaidAt = &now

	if err := h.db.Save(&bill).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update bill"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Bill paid", bill))
}
