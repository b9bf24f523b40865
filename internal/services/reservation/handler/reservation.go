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
)

const (
	AVAILABILITY_CACHE_PREFIX = "reservation:availability:"

	CACHE_TTL_SHORT = 5 * time.Minute
)

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked-in"
	StatusCheckedOut = "checked-out"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no-show"
)

const (
	RoomStatusAvailable   = "available"
	RoomStatusOccupied    = "occupied"
	RoomStatusCleaning    = "cleaning"
	RoomStatusMaintenance = "maintenance"
)

const dateLayout = "2006-01-02"

type ReservationHandler struct {
	db       *gorm.DB
	redis    *redis.Client
	notifier *notification.Dispatcher
}

func NewReservationHandler(db *gorm.DB, redisClient *redis.Client, notifier *notification.Dispatcher) *ReservationHandler {
	return &ReservationHandler{
		db:       db,
		redis:    redisClient,
		notifier: notifier,
	}
}

// --- Requests ---

type GuestRequest struct {
	GuestID  *int64  `json:"guest_id,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	IDNumber *string `json:"id_number,omitempty"`
	Address  *string `json:"address,omitempty"`
}

type ReservationRoomRequest struct {
	RoomID       int64   `json:"room_id" binding:"required"`
	CheckInDate  string  `json:"check_in_date" binding:"required"`
	CheckOutDate string  `json:"check_out_date" binding:"required"`
	Adults       int32   `json:"adults" binding:"required,gt=0"`
	Children     int32   `json:"children"`
	Rate         *string `json:"rate,omitempty"`
}

type CreateReservationRequest struct {
	BranchID int64                    `json:"branch_id" binding:"required"`
	Guest    GuestRequest             `json:"guest" binding:"required"`
	Rooms    []ReservationRoomRequest `json:"rooms" binding:"required,min=1,dive"`
	Notes    *string                  `json:"notes,omitempty"`
	Confirm  bool                     `json:"confirm"`
}

type UpdateReservationRequest struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

type CheckOutRequest struct {
	DiscountValue float64 `json:"discount_value"`
	DiscountType  string  `json:"discount_type" binding:"omitempty,oneof=percentage flat"`
	PaidAmount    float64 `json:"paid_amount"`
}

type ListReservationsQuery struct {
	BranchID *int64  `form:"branch_id,omitempty"`
	Status   *string `form:"status,omitempty"`
	Page     int     `form:"page,default=1"`
	PageSize int     `form:"page_size,default=20"`
}

type AvailabilityQuery struct {
	BranchID     int64  `form:"branch_id" binding:"required"`
	CheckInDate  string `form:"check_in_date" binding:"required"`
	CheckOutDate string `form:"check_out_date" binding:"required"`
}

// --- Reservations ---

func (h *ReservationHandler) ListReservations(c *gin.Context) {
	var q ListReservationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid query parameters"))
		return
	}

	var reservations []models.Reservation
	var total int64

	query := h.db.Model(&models.Reservation{}).
		Preload("Guest").
		Preload("Rooms.Room")

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
	if err := query.Order("created_at desc").Offset(offset).Limit(q.PageSize).Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessWithMetaResponse("Reservations", reservations, gin.H{
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	}))
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid reservation id"))
		return
	}

	var reservation models.Reservation
	if err := h.db.Where("id = ?", reservationID).
		Preload("Guest").
		Preload("Rooms.Room.RoomType").
		First(&reservation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Reservation not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Reservation", reservation))
}

// ListAvailableRooms reports rooms free for the whole requested range:
// active, not under maintenance, and not held by an overlapping
// reservation. Cached briefly per branch and range.
func (h *ReservationHandler) ListAvailableRooms(c *gin.Context) {
	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid query parameters"))
		return
	}

	checkIn, checkOut, err := parseStayDates(q.CheckInDate, q.CheckOutDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}

	cacheKey := fmt.Sprintf("%s%d:%s:%s", AVAILABILITY_CACHE_PREFIX, q.BranchID, q.CheckInDate, q.CheckOutDate)
	if cached, err := h.redis.Get(c.Request.Context(), cacheKey).Result(); err == nil {
		var rooms []models.Room
		if json.Unmarshal([]byte(cached), &rooms) == nil {
			c.JSON(http.StatusOK, utils.SuccessResponse("Available rooms", rooms))
			return
		}
	}

	var rooms []models.Room
	if err := h.db.
		Preload("RoomType").
		Where("branch_id = ? AND is_active = ? AND status <> ?", q.BranchID, true, RoomStatusMaintenance).
		Where(`id NOT IN (
			SELECT rr.room_id FROM reservation_rooms rr
			JOIN reservations r ON r.id = rr.reservation_id
			WHERE r.status IN ? AND rr.check_in_date < ? AND rr.check_out_date > ?
		)`, []string{StatusPending, StatusConfirmed, StatusCheckedIn}, checkOut, checkIn).
		Order("room_number asc").
		Find(&rooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if payload, err := json.Marshal(rooms); err == nil {
		_ = h.redis.Set(c.Request.Context(), cacheKey, payload, CACHE_TTL_SHORT)
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Available rooms", rooms))
}

// CreateReservation books one or more rooms for a guest. Room totals
// are priced and locked here; later rate changes never reprice an
// existing booking.
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
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

	guest, err := h.resolveGuest(tx, req.BranchID, req.Guest)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}

	status := StatusPending
	if req.Confirm {
		status = StatusConfirmed
	}

	reservation := models.Reservation{
		ConfirmationNumber: h.uniqueConfirmationNumber(tx),
		BranchID:           req.BranchID,
		GuestID:            guest.ID,
		Status:             status,
		Notes:              req.Notes,
	}

	subtotal := decimal.Zero
	rooms := make([]models.ReservationRoom, 0, len(req.Rooms))
	for _, rr := range req.Rooms {
		checkIn, checkOut, err := parseStayDates(rr.CheckInDate, rr.CheckOutDate)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
			return
		}

		var room models.Room
		if err := tx.Preload("RoomType").
			Where("id = ? AND branch_id = ? AND is_active = ?", rr.RoomID, req.BranchID, true).
			First(&room).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, utils.ErrorResponse(fmt.Sprintf("Room %d not found", rr.RoomID)))
			return
		}

		overlapping, err := h.hasOverlap(tx, rr.RoomID, checkIn, checkOut)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
			return
		}
		if overlapping {
			tx.Rollback()
			c.JSON(http.StatusConflict, utils.ErrorResponse(fmt.Sprintf("Room %s is already booked for those dates", room.RoomNumber)))
			return
		}

		rate := decimal.Zero
		if rr.Rate != nil {
			rate, err = decimal.NewFromString(*rr.Rate)
			if err != nil {
				tx.Rollback()
				c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid rate format"))
				return
			}
		} else if room.RoomType != nil {
			rate, _ = decimal.NewFromString(room.RoomType.BaseRate)
		}

		nights := stayNights(checkIn, checkOut)
		roomTotal := rate.Mul(decimal.NewFromInt32(nights))
		subtotal = subtotal.Add(roomTotal)

		rooms = append(rooms, models.ReservationRoom{
			RoomID:       rr.RoomID,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
			Adults:       rr.Adults,
			Children:     rr.Children,
			Nights:       nights,
			Rate:         rate.StringFixed(2),
			TotalAmount:  roomTotal.StringFixed(2),
		})
	}

	reservation.Subtotal = subtotal.StringFixed(2)
	reservation.DiscountAmount = "0.00"
	reservation.TaxAmount = "0.00"
	reservation.TotalAmount = subtotal.StringFixed(2)
	reservation.PaidAmount = "0.00"
	reservation.Rooms = rooms

	if err := tx.Create(&reservation).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create reservation"))
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to commit reservation"))
		return
	}

	h.invalidateAvailability(c.Request.Context(), req.BranchID)
	h.notifier.NotifyAsync(notification.Event{
		Type:     notification.EventReservationCreated,
		Title:    "New reservation",
		Body:     fmt.Sprintf("%s booked %d room(s), %s", guest.FullName, len(rooms), reservation.ConfirmationNumber),
		BranchID: req.BranchID,
		Data:     map[string]interface{}{"reservation_id": reservation.ID},
	})

	c.JSON(http.StatusCreated, utils.SuccessResponse("Reservation created", reservation))
}

// UpdateReservation handles notes edits and the non-stay status moves:
// confirming a pending booking, cancelling, or marking a no-show.
// Check-in and check-out have their own endpoints.
func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid reservation id"))
		return
	}

	var req UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var reservation models.Reservation
	if err := h.db.Where("id = ?", reservationID).First(&reservation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Reservation not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if req.Status != nil {
		next := *req.Status
		switch next {
		case StatusConfirmed:
			if reservation.Status != StatusPending {
				c.JSON(http.StatusBadRequest, utils.ErrorResponse("Only pending reservations can be confirmed"))
				return
			}
		case StatusCancelled, StatusNoShow:
			if reservation.Status != StatusPending && reservation.Status != StatusConfirmed {
				c.JSON(http.StatusBadRequest, utils.ErrorResponse("Reservation can no longer be cancelled"))
				return
			}
		default:
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Use the check-in and check-out endpoints for stay transitions"))
			return
		}
		reservation.Status = next
	}
	if req.Notes != nil {
		reservation.Notes = req.Notes
	}

	if err := h.db.Save(&reservation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update reservation"))
		return
	}

	h.invalidateAvailability(c.Request.Context(), reservation.BranchID)
	c.JSON(http.StatusOK, utils.SuccessResponse("Reservation updated", reservation))
}

// DeleteReservation cancels a booking that has not started its stay.
// Rows are kept for the audit trail; nothing is hard-deleted.
func (h *ReservationHandler) DeleteReservation(c *gin.Context) {
	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid reservation id"))
		return
	}

	var reservation models.Reservation
	if err := h.db.Where("id = ?", reservationID).First(&reservation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Reservation not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if reservation.Status != StatusPending && reservation.Status != StatusConfirmed {
		c.JSON(http.StatusConflict, utils.ErrorResponse("Reservation can no longer be cancelled"))
		return
	}

	reservation.Status = StatusCancelled
	if err := h.db.Save(&reservation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to cancel reservation"))
		return
	}

	h.invalidateAvailability(c.Request.Context(), reservation.BranchID)
	c.JSON(http.StatusOK, utils.SuccessResponse("Reservation cancelled", reservation))
}

// CheckIn moves a pending or confirmed reservation into its stay and
// marks every booked room occupied.
func (h *ReservationHandler) CheckIn(c *gin.Context) {
	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid reservation id"))
		return
	}

	tx := h.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var reservation models.Reservation
	if err := tx.Where("id = ?", reservationID).Preload("Guest").Preload("Rooms").First(&reservation).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Reservation not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if reservation.Status != StatusPending && reservation.Status != StatusConfirmed {
		tx.Rollback()
		c.JSON(http.StatusConflict, utils.ErrorResponse(fmt.Sprintf("Cannot check in a %s reservation", reservation.Status)))
		return
	}

	for _, rr := range reservation.Rooms {
		var room models.Room
		if err := tx.Where("id = ?", rr.RoomID).First(&room).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
			return
		}
		if room.Status == RoomStatusOccupied || room.Status == RoomStatusMaintenance {
			tx.Rollback()
			c.JSON(http.StatusConflict, utils.ErrorResponse(fmt.Sprintf("Room %s is not ready (%s)", room.RoomNumber, room.Status)))
			return
		}
		if err := tx.Model(&models.Room{}).Where("id = ?", rr.RoomID).Update("status", RoomStatusOccupied).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update room status"))
			return
		}
	}

	now := time.Now()
	reservation.Status = StatusCheckedIn
	reservation.CheckedInAt = &now
	if err := tx.Omit(clause.Associations).Save(&reservation).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update reservation"))
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to commit check-in"))
		return
	}

	guestName := "Guest"
	if reservation.Guest != nil {
		guestName = reservation.Guest.FullName
	}
	h.notifier.NotifyAsync(notification.Event{
		Type:     notification.EventGuestCheckedIn,
		Title:    "Guest checked in",
		Body:     fmt.Sprintf("%s checked in, %s", guestName, reservation.ConfirmationNumber),
		BranchID: reservation.BranchID,
		Data:     map[string]interface{}{"reservation_id": reservation.ID},
	})

	c.JSON(http.StatusOK, utils.SuccessResponse("Checked in", reservation))
}

// CheckOut settles the folio: room charges plus any unpaid room-service
// bills, minus the discount, plus every active tax for the branch. The
// rooms go to cleaning and folded-in restaurant bills are marked paid.
func (h *ReservationHandler) CheckOut(c *gin.Context) {
	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid reservation id"))
		return
	}

	var req CheckOutRequest
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

	var reservation models.Reservation
	if err := tx.Where("id = ?", reservationID).Preload("Guest").Preload("Rooms").First(&reservation).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Reservation not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if reservation.Status != StatusCheckedIn {
		tx.Rollback()
		c.JSON(http.StatusConflict, utils.ErrorResponse("Only checked-in reservations can be checked out"))
		return
	}

	subtotal, _ := decimal.NewFromString(reservation.Subtotal)

	roomIDs := make([]int64, 0, len(reservation.Rooms))
	for _, rr := range reservation.Rooms {
		roomIDs = append(roomIDs, rr.RoomID)
	}

	roomServiceTotal, billIDs, err := h.unpaidRoomServiceBills(tx, roomIDs, reservation.CheckedInAt)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}
	subtotal = subtotal.Add(roomServiceTotal)

	var taxes []models.Tax
	if err := tx.Where("is_active = ? AND (branch_id = ? OR branch_id IS NULL)", true, reservation.BranchID).
		Find(&taxes).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	paid := decimal.NewFromFloat(sanitize(req.PaidAmount))
	totals := ComputeCheckout(subtotal, req.DiscountValue, req.DiscountType, taxes, paid)

	now := time.Now()
	reservation.Status = StatusCheckedOut
	reservation.CheckedOutAt = &now
	reservation.Subtotal = totals.Subtotal
	reservation.DiscountAmount = totals.DiscountAmount
	reservation.TaxAmount = totals.TaxTotal
	reservation.TotalAmount = totals.GrandTotal
	reservation.PaidAmount = paid.StringFixed(2)

	if err := tx.Omit(clause.Associations).Save(&reservation).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update reservation"))
		return
	}

	if len(billIDs) > 0 {
		if err := tx.Model(&models.RestaurantBill{}).
			Where("id IN ?", billIDs).
			Updates(map[string]interface{}{"payment_status": "paid", "paid_at": now}).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to settle room service bills"))
			return
		}
	}

	if len(roomIDs) > 0 {
		if err := tx.Model(&models.Room{}).
			Where("id IN ?", roomIDs).
			Update("status", RoomStatusCleaning).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update room status"))
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to commit check-out"))
		return
	}

	h.invalidateAvailability(c.Request.Context(), reservation.BranchID)

	guestName := "Guest"
	if reservation.Guest != nil {
		guestName = reservation.Guest.FullName
	}
	h.notifier.NotifyAsync(notification.Event{
		Type:     notification.EventGuestCheckedOut,
		Title:    "Guest checked out",
		Body:     fmt.Sprintf("%s checked out, total %s", guestName, totals.GrandTotal),
		BranchID: reservation.BranchID,
		Data:     map[string]interface{}{"reservation_id": reservation.ID},
	})

	c.JSON(http.StatusOK, utils.SuccessResponse("Checked out", gin.H{
		"reservation": reservation,
		"folio":       totals,
	}))
}

// --- Guests ---

type ListGuestsQuery struct {
	BranchID *int64  `form:"branch_id,omitempty"`
	Search   *string `form:"search,omitempty"`
	Page     int     `form:"page,default=1"`
	PageSize int     `form:"page_size,default=20"`
}

func (h *ReservationHandler) ListGuests(c *gin.Context) {
	var q ListGuestsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid query parameters"))
		return
	}

	query := h.db.Model(&models.Guest{})
	if q.BranchID != nil {
		query = query.Where("branch_id = ?", *q.BranchID)
	}
	if q.Search != nil && *q.Search != "" {
		pattern := "%" + *q.Search + "%"
		query = query.Where("full_name ILIKE ? OR phone LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	var guests []models.Guest
	offset := (q.Page - 1) * q.PageSize
	if err := query.Order("full_name asc").Offset(offset).Limit(q.PageSize).Find(&guests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessWithMetaResponse("Guests", guests, gin.H{
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	}))
}

// --- Internals ---

// resolveGuest returns an existing guest by id, matches on phone, or
// creates a new row from the inline details.
func (h *ReservationHandler) resolveGuest(tx *gorm.DB, branchID int64, req GuestRequest) (*models.Guest, error) {
	if req.GuestID != nil {
		var guest models.Guest
		if err := tx.Where("id = ?", *req.GuestID).First(&guest).Error; err != nil {
			return nil, fmt.Errorf("guest %d not found", *req.GuestID)
		}
		return &guest, nil
	}

	if req.FullName == nil || req.Phone == nil {
		return nil, fmt.Errorf("guest details require full_name and phone")
	}

	var guest models.Guest
	err := tx.Where("branch_id = ? AND phone = ?", branchID, *req.Phone).First(&guest).Error
	if err == nil {
		return &guest, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	guest = models.Guest{
		BranchID: branchID,
		FullName: *req.FullName,
		Phone:    *req.Phone,
		Email:    req.Email,
		IDNumber: req.IDNumber,
		Address:  req.Address,
	}
	if err := tx.Create(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

func (h *ReservationHandler) uniqueConfirmationNumber(tx *gorm.DB) string {
	for i := 0; i < 5; i++ {
		number := utils.ConfirmationNumber(time.Now())
		var count int64
		if err := tx.Model(&models.Reservation{}).Where("confirmation_number = ?", number).Count(&count).Error; err == nil && count == 0 {
			return number
		}
	}
	return utils.ConfirmationNumber(time.Now())
}

func (h *ReservationHandler) hasOverlap(tx *gorm.DB, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	var count int64
	err := tx.Model(&models.ReservationRoom{}).
		Joins("JOIN reservations ON reservations.id = reservation_rooms.reservation_id").
		Where("reservation_rooms.room_id = ?", roomID).
		Where("reservations.status IN ?", []string{StatusPending, StatusConfirmed, StatusCheckedIn}).
		Where("reservation_rooms.check_in_date < ? AND reservation_rooms.check_out_date > ?", checkOut, checkIn).
		Count(&count).Error
	return count > 0, err
}

// unpaidRoomServiceBills sums unpaid restaurant bills for orders billed
// to the stay's rooms since check-in.
func (h *ReservationHandler) unpaidRoomServiceBills(tx *gorm.DB, roomIDs []int64, since *time.Time) (decimal.Decimal, []int64, error) {
	total := decimal.Zero
	if len(roomIDs) == 0 {
		return total, nil, nil
	}

	query := tx.Model(&models.RestaurantBill{}).
		Joins("JOIN restaurant_orders ON restaurant_orders.id = restaurant_bills.order_id").
		Where("restaurant_orders.room_id IN ?", roomIDs).
		Where("restaurant_bills.payment_status = ?", "unpaid")
	if since != nil {
		query = query.Where("restaurant_orders.created_at >= ?", *since)
	}

	var bills []models.RestaurantBill
	if err := query.Find(&bills).Error; err != nil {
		return total, nil, err
	}

	ids := make([]int64, 0, len(bills))
	for _, bill := range bills {
		amount, err := decimal.NewFromString(bill.TotalAmount)
		if err != nil {
			continue
		}
		total = total.Add(amount)
		ids = append(ids, bill.ID)
	}
	return total, ids, nil
}

func (h *ReservationHandler) invalidateAvailability(ctx context.Context, branchID int64) {
	iter := h.redis.Scan(ctx, 0, fmt.Sprintf("%s%d:*", AVAILABILITY_CACHE_PREFIX, branchID), 100).Iterator()
	for iter.Next(ctx) {
		_ = h.redis.Del(ctx, iter.Val())
	}
}

func parseStayDates(in, out string) (time.Time, time.Time, error) {
	checkIn, err := time.Parse(dateLayout, in)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid check_in_date, expected YYYY-MM-DD")
	}
	checkOut, err := time.Parse(dateLayout, out)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid check_out_date, expected YYYY-MM-DD")
	}
	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, fmt.Errorf("check_out_date must be after check_in_date")
	}
	return checkIn, checkOut, nil
}

func stayNights(checkIn, checkOut time.Time) int32 {
	nights := int32(checkOut.Sub(checkIn).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	return nights
}
