package handler

import (
	"context"
	"encoding/json"
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

	resthandler "vistara-hms/internal/services/restaurant/handler"
)

const (
	QR_TOKEN_CACHE_PREFIX = "qr:token:"
	QR_TOKEN_CACHE_TTL    = 30 * time.Minute
)

const (
	TargetTable = "table"
	TargetRoom  = "room"
)

// TokenInfo is what a scan token resolves to.
type TokenInfo struct {
	Type     string `json:"type"`
	ID       int64  `json:"id"`
	BranchID int64  `json:"branch_id"`
	Name     string `json:"name"`
}

type QROrderHandler struct {
	db       *gorm.DB
	redis    *redis.Client
	notifier *notification.Dispatcher
}

func NewQROrderHandler(db *gorm.DB, redisClient *redis.Client, notifier *notification.Dispatcher) *QROrderHandler {
	return &QROrderHandler{
		db:       db,
		redis:    redisClient,
		notifier: notifier,
	}
}

// ResolveToken checks the token against active tables first, then
// rooms. Hits are cached; a miss is the guest-visible "invalid QR
// code" state.
func (h *QROrderHandler) ResolveToken(ctx context.Context, token string) (*TokenInfo, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	cacheKey := QR_TOKEN_CACHE_PREFIX + token
	if cached, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var info TokenInfo
		if err := json.Unmarshal([]byte(cached), &info); err == nil {
			return &info, nil
		}
	}

	var info TokenInfo

	var table models.RestaurantTable
	err := h.db.WithContext(ctx).Where("qr_token = ? AND is_active = ?", token, true).First(&table).Error
	switch err {
	case nil:
		info = TokenInfo{Type: TargetTable, ID: table.ID, BranchID: table.BranchID, Name: "Table " + table.TableNumber}
	case gorm.ErrRecordNotFound:
		var room models.Room
		err = h.db.WithContext(ctx).Where("qr_token = ? AND is_active = ?", token, true).First(&room).Error
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidToken
		}
		if err != nil {
			return nil, err
		}
		info = TokenInfo{Type: TargetRoom, ID: room.ID, BranchID: room.BranchID, Name: "Room " + room.RoomNumber}
	default:
		return nil, err
	}

	if payload, err := json.Marshal(info); err == nil {
		_ = h.redis.Set(ctx, cacheKey, payload, QR_TOKEN_CACHE_TTL)
	}
	return &info, nil
}

// latestOpenOrder returns the most recent non-terminal order for the
// resolved location, or gorm.ErrRecordNotFound.
func (h *QROrderHandler) latestOpenOrder(ctx context.Context, info *TokenInfo) (*models.RestaurantOrder, error) {
	query := h.db.WithContext(ctx).
		Preload("Items.Dish").
		Where("status NOT IN ?", []string{resthandler.StatusCompleted, resthandler.StatusCancelled})

	if info.Type == TargetTable {
		query = query.Where("table_id = ?", info.ID)
	} else {
		query = query.Where("room_id = ?", info.ID)
	}

	var order models.RestaurantOrder
	if err := query.Order("created_at desc").First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// --- Guest endpoints (unauthenticated) ---

// Info returns the scan target and the branch's active menu.
func (h *QROrderHandler) Info(c *gin.Context) {
	info, err := h.ResolveToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if err == ErrInvalidToken {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Invalid QR code"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	var categories []models.MenuCategory
	if err := h.db.Where("branch_id = ? AND is_active = ?", info.BranchID, true).
		Preload("Dishes", "is_available = ?", true).
		Order("sort_order asc").
		Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("QR session", gin.H{
		"target": info,
		"menu":   categories,
	}))
}

// ExistingOrder returns the open order for this token with the
// modification-window state; clients poll this every 30 seconds.
func (h *QROrderHandler) ExistingOrder(c *gin.Context) {
	info, err := h.ResolveToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if err == ErrInvalidToken {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Invalid QR code"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	order, err := h.latestOpenOrder(c.Request.Context(), info)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusOK, utils.SuccessResponse("No open order", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	now := time.Now()
	c.JSON(http.StatusOK, utils.SuccessResponse("Existing order", gin.H{
		"order":                    order,
		"can_modify":               CanModify(order.CreatedAt, now),
		"window_seconds_remaining": int(WindowRemaining(order.CreatedAt, now).Seconds()),
	}))
}

type SubmitOrderRequest struct {
	CustomerName  *string      `json:"customer_name,omitempty"`
	CustomerPhone *string      `json:"customer_phone,omitempty"`
	Notes         *string      `json:"notes,omitempty"`
	Items         []ItemUpdate `json:"items" binding:"required,min=1,dive"`
}

// Submit creates a pending order for the scanned location, or merges
// into the one already open there.
func (h *QROrderHandler) Submit(c *gin.Context) {
	info, err := h.ResolveToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if err == ErrInvalidToken {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Invalid QR code"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	existing, err := h.latestOpenOrder(c.Request.Context(), info)
	if err != nil && err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if existing != nil {
		h.applyUpdates(c, existing, req)
		return
	}

	h.createGuestOrder(c, info, req)
}

// Update amends an order by id; the client got the id from a prior
// Submit or ExistingOrder call.
func (h *QROrderHandler) Update(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid order id"))
		return
	}

	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var order models.RestaurantOrder
	if err := h.db.Where("id = ?", orderID).Preload("Items.Dish").First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if resthandler.IsTerminal(order.Status) {
		c.JSON(http.StatusConflict, utils.ErrorResponse("Order is no longer open"))
		return
	}

	h.applyUpdates(c, &order, req)
}

// Clear cancels the open order for this token. Only allowed while the
// modification window is open; after that the kitchen owns the order.
func (h *QROrderHandler) Clear(c *gin.Context) {
	info, err := h.ResolveToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if err == ErrInvalidToken {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Invalid QR code"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	order, err := h.latestOpenOrder(c.Request.Context(), info)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusOK, utils.SuccessResponse("No open order", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if !CanModify(order.CreatedAt, time.Now()) {
		c.JSON(http.StatusForbidden, utils.ErrorResponse("Cannot modify: the modification window has expired"))
		return
	}

	tx := h.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order.Status = resthandler.StatusCancelled
	if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to cancel order"))
		return
	}
	if order.TableID != nil {
		if err := tx.Model(&models.RestaurantTable{}).
			Where("id = ?", *order.TableID).
			Update("status", resthandler.TableStatusOpen).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to release table"))
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to cancel order"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Order cancelled", nil))
}

// --- internals ---

func (h *QROrderHandler) createGuestOrder(c *gin.Context, info *TokenInfo, req SubmitOrderRequest) {
	tx := h.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	now := time.Now()
	order := models.RestaurantOrder{
		OrderNumber:   utils.OrderNumber(now),
		BranchID:      info.BranchID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Status:        resthandler.StatusPending,
		Notes:         req.Notes,
	}
	if info.Type == TargetTable {
		order.TableID = &info.ID
	} else {
		order.RoomID = &info.ID
	}

	subtotal := decimal.Zero
	var items []models.RestaurantOrderItem
	for _, u := range req.Items {
		if u.Quantity <= 0 {
			continue
		}
		var dish models.Dish
		if err := tx.Where("id = ? AND is_available = ?", u.DishID, true).First(&dish).Error; err != nil {
			tx.Rollback()
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusBadRequest, utils.ErrorResponse("Order references an unknown or unavailable dish"))
				return
			}
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
			return
		}

		unitPrice, err := decimal.NewFromString(dish.Price)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
			return
		}
		lineTotal := unitPrice.Mul(decimal.NewFromInt32(u.Quantity))
		subtotal = subtotal.Add(lineTotal)

		items = append(items, models.RestaurantOrderItem{
			DishID:              u.DishID,
			Quantity:            u.Quantity,
			OriginalQuantity:    u.Quantity,
			UnitPrice:           unitPrice.StringFixed(2),
			TotalPrice:          lineTotal.StringFixed(2),
			SpecialInstructions: u.SpecialInstructions,
			Status:              resthandler.StatusPending,
		})
	}

	if len(items) == 0 {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Order must have at least one item"))
		return
	}

	order.Subtotal = subtotal.StringFixed(2)
	order.TaxAmount = "0.00"
	order.TotalAmount = subtotal.StringFixed(2)

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create order"))
		return
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := tx.Create(&items).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create order items"))
		return
	}

	if info.Type == TargetTable {
		if err := tx.Model(&models.RestaurantTable{}).
			Where("id = ?", info.ID).
			Update("status", resthandler.TableStatusOccupied).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to mark table occupied"))
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create order"))
		return
	}
	order.Items = items

	h.notifier.NotifyAsync(notification.Event{
		Type:     notification.EventOrderCreated,
		Title:    "New QR order",
		Body:     fmt.Sprintf("Order %s placed at %s", order.OrderNumber, info.Name),
		BranchID: order.BranchID,
		Data:     map[string]interface{}{"order_id": order.ID},
	})

	c.JSON(http.StatusCreated, utils.SuccessResponse("Order placed", gin.H{
		"order":                    order,
		"can_modify":               true,
		"window_seconds_remaining": int(ModificationWindow.Seconds()),
	}))
}

func (h *QROrderHandler) applyUpdates(c *gin.Context, order *models.RestaurantOrder, req SubmitOrderRequest) {
	now := time.Now()

	if err := ValidateItemUpdates(order.Items, req.Items, order.CreatedAt, now); err != nil {
		switch err {
		case ErrWindowExpired:
			c.JSON(http.StatusForbidden, utils.ErrorResponse("Cannot modify: the modification window has expired"))
		case ErrBelowOriginalQuantity:
			c.JSON(http.StatusForbidden, utils.ErrorResponse("Cannot modify: quantity cannot drop below the originally ordered amount"))
		default:
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to validate changes"))
		}
		return
	}

	tx := h.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	byDish := make(map[int32]*models.RestaurantOrderItem, len(order.Items))
	for i := range order.Items {
		byDish[order.Items[i].DishID] = &order.Items[i]
	}

	for _, u := range req.Items {
		if item, ok := byDish[u.DishID]; ok {
			if u.Quantity == item.Quantity {
				continue
			}
			if u.Quantity == 0 {
				if err := tx.Where("id = ?", item.ID).Delete(&models.RestaurantOrderItem{}).Error; err != nil {
					tx.Rollback()
					c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update order"))
					return
				}
				continue
			}

			unitPrice, _ := decimal.NewFromString(item.UnitPrice)
			item.Quantity = u.Quantity
			item.TotalPrice = unitPrice.Mul(decimal.NewFromInt32(u.Quantity)).StringFixed(2)
			if u.SpecialInstructions != nil {
				item.SpecialInstructions = u.SpecialInstructions
			}
			if err := tx.Save(item).Error; err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update order"))
				return
			}
			continue
		}

		if u.Quantity <= 0 {
			continue
		}
		var dish models.Dish
		if err := tx.Where("id = ? AND is_available = ?", u.DishID, true).First(&dish).Error; err != nil {
			tx.Rollback()
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusBadRequest, utils.ErrorResponse("Order references an unknown or unavailable dish"))
				return
			}
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
			return
		}

		unitPrice, err := decimal.NewFromString(dish.Price)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
			return
		}
		newItem := models.RestaurantOrderItem{
			OrderID:             order.ID,
			DishID:              u.DishID,
			Quantity:            u.Quantity,
			OriginalQuantity:    u.Quantity,
			UnitPrice:           unitPrice.StringFixed(2),
			TotalPrice:          unitPrice.Mul(decimal.NewFromInt32(u.Quantity)).StringFixed(2),
			SpecialInstructions: u.SpecialInstructions,
			Status:              resthandler.StatusPending,
		}
		if err := tx.Create(&newItem).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to add item"))
			return
		}
	}

	// reload lines and re-derive totals
	var items []models.RestaurantOrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to reload order"))
		return
	}
	subtotal := resthandler.OrderSubtotal(items)
	order.Subtotal = subtotal.StringFixed(2)
	order.TotalAmount = subtotal.StringFixed(2)
	order.Items = items

	if req.CustomerName != nil {
		order.CustomerName = req.CustomerName
	}
	if req.CustomerPhone != nil {
		order.CustomerPhone = req.CustomerPhone
	}
	if req.Notes != nil {
		order.Notes = req.Notes
	}

	if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update order"))
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update order"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Order updated", gin.H{
		"order":                    order,
		"can_modify":               CanModify(order.CreatedAt, now),
		"window_seconds_remaining": int(WindowRemaining(order.CreatedAt, now).Seconds()),
	}))
}
