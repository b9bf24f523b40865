package handler

import (
	"errors"
	"time"

	"vistara-hms/internal/database/models"
)

// ModificationWindow is how long after order creation a guest may still
// retract quantities. Re-evaluated on every request; nothing is
// scheduled against it.
const ModificationWindow = 2 * time.Minute

var (
	ErrInvalidToken          = errors.New("invalid QR token")
	ErrWindowExpired         = errors.New("modification window expired")
	ErrBelowOriginalQuantity = errors.New("quantity below originally ordered amount")
)

func CanModify(createdAt, now time.Time) bool {
	return now.Sub(createdAt) <= ModificationWindow
}

// WindowRemaining reports how much of the window is left, floored at 0.
func WindowRemaining(createdAt, now time.Time) time.Duration {
	remaining := ModificationWindow - now.Sub(createdAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ItemUpdate is a desired final quantity for one dish. Quantity 0 on an
// existing line asks for removal; dishes not mentioned are untouched.
type ItemUpdate struct {
	DishID              int32   `json:"dish_id" binding:"required"`
	Quantity            int32   `json:"quantity"`
	SpecialInstructions *string `json:"special_instructions,omitempty"`
}

// ValidateItemUpdates enforces the guest-edit rules against the stored
// order lines:
//   - increasing any quantity, or adding a dish not on the order, is
//     always allowed;
//   - decreasing or removing an existing line requires the window to be
//     open, and the quantity can never drop below the amount the line
//     was originally ordered with.
func ValidateItemUpdates(existing []models.RestaurantOrderItem, updates []ItemUpdate, createdAt, now time.Time) error {
	byDish := make(map[int32]models.RestaurantOrderItem, len(existing))
	for _, item := range existing {
		byDish[item.DishID] = item
	}

	canModify := CanModify(createdAt, now)

	for _, u := range updates {
		item, ok := byDish[u.DishID]
		if !ok {
			continue // new dish, unrestricted
		}
		if u.Quantity >= item.Quantity {
			continue // unchanged or increased
		}
		if !canModify {
			return ErrWindowExpired
		}
		if u.Quantity < item.OriginalQuantity {
			return ErrBelowOriginalQuantity
		}
	}
	return nil
}
