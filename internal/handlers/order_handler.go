package handlers

import (
	"errors"
	"log"

	"lapak/internal/middleware"
	"lapak/internal/models"
	"lapak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for checkout and orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/checkout", h.HandleCheckout)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
	orderRoutes.Patch("/:id/status", middleware.AdminRequired(), h.HandleUpdateOrderStatus)
}

// HandleCheckout converts the authenticated user's cart into an order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication is required for checkout.",
		})
	}

	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	order, err := h.service.CheckoutFromCart(c.UserContext(), userID, req)
	if err != nil {
		log.Printf("Checkout failed for user %s: %v", userID, err)
		return h.checkoutError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// checkoutError maps the checkout error taxonomy onto HTTP responses with
// enough structured detail for the caller to act on.
func (h *OrderHandler) checkoutError(c *fiber.Ctx, err error) error {
	var stockErr *services.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":    "Checkout failed due to insufficient stock.",
			"error":      stockErr.Error(),
			"product_id": stockErr.ProductID,
		})
	}
	var amountErr *services.AmountMismatchError
	if errors.As(err, &amountErr) {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"message":  "Payment amount does not match the order total.",
			"error":    amountErr.Error(),
			"paid":     amountErr.Paid,
			"expected": amountErr.Expected,
		})
	}

	switch {
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidCartState),
		errors.Is(err, services.ErrMissingReference):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Checkout request is invalid.",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrPaymentNotSettled):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"message": "Payment could not be completed.",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrDuplicateReference):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "This payment reference has already been used.",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrPaymentGatewayUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Payment gateway is unavailable, please retry.",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Could not complete checkout",
		"error":   err.Error(),
	})
}

// HandleGetOrders lists the authenticated user's orders; admins see all.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)

	var (
		orders []models.Order
		err    error
	)
	if role == models.RoleAdmin {
		orders, err = h.service.GetAllOrders()
	} else {
		orders, err = h.service.GetOrdersByUser(userID)
	}
	if err != nil {
		log.Printf("Error getting orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order; owners and admins only.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.loadOwnedOrder(c)
	if order == nil {
		return err
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels a pending/processing order, restoring stock and
// refunding wallet payments.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.loadOwnedOrder(c)
	if order == nil {
		return err
	}

	cancelled, err := h.service.CancelOrder(order.ID)
	if err != nil {
		log.Printf("Error cancelling order %s: %v", order.ID, err)
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		case errors.Is(err, services.ErrNotCancellable):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Order can no longer be cancelled.",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not cancel order",
			"error":   err.Error(),
		})
	}
	return c.JSON(cancelled)
}

// HandleUpdateOrderStatus applies an administrative status transition.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	order, err := h.service.UpdateOrderStatus(orderID, updateData.Status)
	if err != nil {
		log.Printf("Error updating order status for order %s: %v", orderID, err)
		if errors.Is(err, services.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Order status update failed.",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}

// loadOwnedOrder fetches the order in :id and enforces that the caller owns
// it (or is an admin). On failure it writes the error response itself and
// returns a nil order.
func (h *OrderHandler) loadOwnedOrder(c *fiber.Ctx) (*models.Order, error) {
	orderID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)

	order, err := h.service.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	if order.UserID != userID && role != models.RoleAdmin {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You do not have access to this order.",
		})
	}
	return order, nil
}
