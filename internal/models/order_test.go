package models_test

import (
	"testing"

	"lapak/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	// Canonical lower-case values
	status, err := models.ParseOrderStatus("pending")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, status)

	// Legacy mixed-case values fold to the same state
	status, err = models.ParseOrderStatus("Pending")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, status)

	status, err = models.ParseOrderStatus("  CANCELLED ")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, status)

	_, err = models.ParseOrderStatus("refunded")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order status")
}

func TestOrderStatusTransitions(t *testing.T) {
	// Forward lifecycle
	assert.True(t, models.OrderStatusPending.CanTransitionTo(models.OrderStatusProcessing))
	assert.True(t, models.OrderStatusProcessing.CanTransitionTo(models.OrderStatusShipped))
	assert.True(t, models.OrderStatusShipped.CanTransitionTo(models.OrderStatusDelivered))

	// Cancellation only from pending or processing
	assert.True(t, models.OrderStatusPending.CanTransitionTo(models.OrderStatusCancelled))
	assert.True(t, models.OrderStatusProcessing.CanTransitionTo(models.OrderStatusCancelled))
	assert.False(t, models.OrderStatusShipped.CanTransitionTo(models.OrderStatusCancelled))
	assert.False(t, models.OrderStatusDelivered.CanTransitionTo(models.OrderStatusCancelled))

	// Terminal states never re-enter the lifecycle
	for _, next := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		assert.False(t, models.OrderStatusDelivered.CanTransitionTo(next))
		assert.False(t, models.OrderStatusCancelled.CanTransitionTo(next))
	}

	// No skipping ahead
	assert.False(t, models.OrderStatusPending.CanTransitionTo(models.OrderStatusShipped))
	assert.False(t, models.OrderStatusPending.CanTransitionTo(models.OrderStatusDelivered))
}

func TestOrderStatusCancellable(t *testing.T) {
	assert.True(t, models.OrderStatusPending.Cancellable())
	assert.True(t, models.OrderStatusProcessing.Cancellable())
	assert.False(t, models.OrderStatusShipped.Cancellable())
	assert.False(t, models.OrderStatusDelivered.Cancellable())
	assert.False(t, models.OrderStatusCancelled.Cancellable())
}

func TestCartLineMergeKey(t *testing.T) {
	a := models.CartLine{ProductID: "p1", Size: "M", Color: "red", Quantity: 1}
	b := models.CartLine{ProductID: "p1", Size: "M", Color: "red", Quantity: 5}
	c := models.CartLine{ProductID: "p1", Size: "L", Color: "red", Quantity: 1}

	assert.Equal(t, a.MergeKey(), b.MergeKey())
	assert.NotEqual(t, a.MergeKey(), c.MergeKey())
}
