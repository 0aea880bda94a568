package handlers

import (
	"errors"
	"log"

	"lapak/internal/middleware"
	"lapak/internal/repositories"
	"lapak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WalletHandler handles HTTP requests for the wallet.
type WalletHandler struct {
	service *services.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(service *services.WalletService) *WalletHandler {
	return &WalletHandler{
		service: service,
	}
}

// RegisterRoutes registers the wallet routes with the Fiber app.
func (h *WalletHandler) RegisterRoutes(router fiber.Router) {
	walletRoutes := router.Group("/wallet")
	walletRoutes.Get("/", h.HandleGetWallet)
	walletRoutes.Post("/:userId/deposit", middleware.AdminRequired(), h.HandleDeposit)
}

// HandleGetWallet returns the caller's balance and transaction history.
func (h *WalletHandler) HandleGetWallet(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	balance, err := h.service.GetBalance(userID)
	if err != nil {
		log.Printf("Error getting balance for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve wallet",
			"error":   err.Error(),
		})
	}
	txns, err := h.service.GetTransactions(userID)
	if err != nil {
		log.Printf("Error getting transactions for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve transactions",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"balance":      balance,
		"transactions": txns,
	})
}

// HandleDeposit credits a user's wallet (admin only).
func (h *WalletHandler) HandleDeposit(c *fiber.Ctx) error {
	targetUserID := c.Params("userId")

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Deposit amount must be positive.",
		})
	}

	if err := h.service.Deposit(targetUserID, req.Amount); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		log.Printf("Error depositing to user %s: %v", targetUserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not process deposit",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Deposit successful",
	})
}
