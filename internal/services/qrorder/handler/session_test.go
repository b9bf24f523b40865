package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vistara-hms/internal/database/models"
)

func TestCanModify(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, CanModify(createdAt, createdAt.Add(30*time.Second)))
	assert.True(t, CanModify(createdAt, createdAt.Add(ModificationWindow)))
	assert.False(t, CanModify(createdAt, createdAt.Add(ModificationWindow+time.Second)))
	assert.False(t, CanModify(createdAt, createdAt.Add(time.Hour)))
}

func TestWindowRemaining(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 90*time.Second, WindowRemaining(createdAt, createdAt.Add(30*time.Second)))
	assert.Equal(t, time.Duration(0), WindowRemaining(createdAt, createdAt.Add(5*time.Minute)))
}

func TestValidateItemUpdatesIncreaseAlwaysAllowed(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	existing := []models.RestaurantOrderItem{
		{DishID: 1, Quantity: 2, OriginalQuantity: 2},
	}

	// 2 -> 3 well past the window
	updates := []ItemUpdate{{DishID: 1, Quantity: 3}}
	assert.NoError(t, ValidateItemUpdates(existing, updates, createdAt, createdAt.Add(10*time.Minute)))
}

func TestValidateItemUpdatesNewDishAlwaysAllowed(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	existing := []models.RestaurantOrderItem{
		{DishID: 1, Quantity: 2, OriginalQuantity: 2},
	}

	updates := []ItemUpdate{{DishID: 9, Quantity: 1}}
	assert.NoError(t, ValidateItemUpdates(existing, updates, createdAt, createdAt.Add(10*time.Minute)))
}

func TestValidateItemUpdatesDecreaseAfterWindow(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	existing := []models.RestaurantOrderItem{
		{DishID: 1, Quantity: 3, OriginalQuantity: 2},
	}

	// 3 -> 2 at T+3m: the window is closed, even though 2 is the floor
	updates := []ItemUpdate{{DishID: 1, Quantity: 2}}
	assert.ErrorIs(t,
		ValidateItemUpdates(existing, updates, createdAt, createdAt.Add(3*time.Minute)),
		ErrWindowExpired)
}

func TestValidateItemUpdatesFloorInsideWindow(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := createdAt.Add(time.Minute)
	existing := []models.RestaurantOrderItem{
		{DishID: 1, Quantity: 3, OriginalQuantity: 2},
	}

	// 3 -> 2 inside the window lands on the floor: fine
	assert.NoError(t, ValidateItemUpdates(existing, []ItemUpdate{{DishID: 1, Quantity: 2}}, createdAt, now))

	// 3 -> 1 drops below what was first ordered: rejected
	assert.ErrorIs(t,
		ValidateItemUpdates(existing, []ItemUpdate{{DishID: 1, Quantity: 1}}, createdAt, now),
		ErrBelowOriginalQuantity)

	// removal of an originally ordered line is rejected too
	assert.ErrorIs(t,
		ValidateItemUpdates(existing, []ItemUpdate{{DishID: 1, Quantity: 0}}, createdAt, now),
		ErrBelowOriginalQuantity)
}

func TestValidateItemUpdatesUnchangedQuantity(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	existing := []models.RestaurantOrderItem{
		{DishID: 1, Quantity: 2, OriginalQuantity: 2},
	}

	// restating the same quantity is a no-op even after the window
	updates := []ItemUpdate{{DishID: 1, Quantity: 2}}
	assert.NoError(t, ValidateItemUpdates(existing, updates, createdAt, createdAt.Add(time.Hour)))
}

func TestValidateItemUpdatesMixedBatchFailsAsWhole(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := createdAt.Add(time.Minute)
	existing := []models.RestaurantOrderItem{
		{DishID: 1, Quantity: 2, OriginalQuantity: 2},
		{DishID: 2, Quantity: 1, OriginalQuantity: 1},
	}

	updates := []ItemUpdate{
		{DishID: 1, Quantity: 4},
		{DishID: 2, Quantity: 0},
	}
	assert.ErrorIs(t, ValidateItemUpdates(existing, updates, createdAt, now), ErrBelowOriginalQuantity)
}
