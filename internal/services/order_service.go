package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"lapak/internal/models"
	"lapak/internal/repositories"

	"github.com/google/uuid"
)

// Notifier delivers order notifications. Delivery is fire-and-forget: the
// order service logs failures and never lets them fail a checkout or a
// cancellation.
type Notifier interface {
	NotifyOrderConfirmed(order *models.Order) error
	NotifyOrderCancelled(order *models.Order) error
}

// CheckoutRequest is the caller's input to a cart checkout. The total is
// never part of it; it is always computed server-side.
type CheckoutRequest struct {
	PaymentMethod models.PaymentMethod   `json:"payment_method" validate:"required,oneof=wallet gateway"`
	Reference     string                 `json:"reference,omitempty" validate:"omitempty,max=100"`
	Shipping      models.ShippingDetails `json:"shipping"`
}

// OrderService orchestrates the checkout and cancellation sagas over the
// inventory, wallet and order stores. There is no cross-aggregate atomic
// commit; each forward step has a compensating action that runs in reverse
// order on failure.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	verifier    PaymentVerifier
	notifier    Notifier
	shippingFee int64
}

// NewOrderService creates a new OrderService. notifier may be nil, in which
// case notifications are skipped.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	verifier PaymentVerifier,
	notifier Notifier,
	shippingFee int64,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		verifier:    verifier,
		notifier:    notifier,
		shippingFee: shippingFee,
	}
}

// checkoutLine pairs a cart line with the product snapshot resolved for it.
type checkoutLine struct {
	line    models.CartLine
	product models.Product
}

// CheckoutFromCart converts the user's cart into a confirmed order.
//
// Steps 1-3 (load cart, compute total, validate payment) have no side
// effects; any failure there leaves the system untouched. From stock
// reservation onward every committed step is compensated on a later
// failure: reservations are released in reverse order, and a wallet debit
// is credited back if the order cannot be persisted.
func (s *OrderService) CheckoutFromCart(ctx context.Context, userID string, req CheckoutRequest) (*models.Order, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for checkout: %w", err)
	}

	cart, err := s.userRepo.GetCart(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	// Drop lines whose product has since disappeared; the caller must
	// refresh if nothing purchasable remains.
	var lines []checkoutLine
	for _, l := range cart {
		product, err := s.productRepo.GetByID(l.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrProductNotFound) {
				log.Printf("Checkout for user %s: skipping vanished product %s", userID, l.ProductID)
				continue
			}
			return nil, fmt.Errorf("failed to resolve cart line: %w", err)
		}
		lines = append(lines, checkoutLine{line: l, product: *product})
	}
	if len(lines) == 0 {
		return nil, ErrInvalidCartState
	}

	var total int64
	for _, cl := range lines {
		total += cl.product.Price * int64(cl.line.Quantity)
	}
	total += s.shippingFee

	switch req.PaymentMethod {
	case models.PaymentMethodWallet:
		if user.Balance < total {
			return nil, ErrInsufficientFunds
		}
	case models.PaymentMethodGateway:
		if req.Reference == "" {
			return nil, ErrMissingReference
		}
		processed, err := s.userRepo.HasProcessedReference(req.Reference)
		if err != nil {
			return nil, fmt.Errorf("failed to check payment reference: %w", err)
		}
		if processed {
			return nil, ErrDuplicateReference
		}
		if err := s.verifier.Verify(ctx, req.Reference, total); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported payment method: %s", req.PaymentMethod)
	}

	// Reserve in product-ID order so concurrent checkouts contend on
	// products in the same sequence.
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].product.ID < lines[j].product.ID
	})

	var reserved []checkoutLine
	for _, cl := range lines {
		if err := s.productRepo.ReserveStock(cl.product.ID, cl.line.Quantity); err != nil {
			s.releaseReserved(reserved)
			if errors.Is(err, repositories.ErrInsufficientStock) || errors.Is(err, repositories.ErrProductNotFound) {
				return nil, &InsufficientStockError{ProductID: cl.product.ID, Requested: cl.line.Quantity}
			}
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		reserved = append(reserved, cl)
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, cl := range lines {
		items = append(items, models.OrderItem{
			ProductID: cl.product.ID,
			Name:      cl.product.Name,
			Price:     cl.product.Price,
			Quantity:  cl.line.Quantity,
			Size:      cl.line.Size,
			Color:     cl.line.Color,
		})
	}

	txn := &models.Transaction{
		ID:     uuid.New().String(),
		Type:   models.TransactionPurchase,
		Amount: total,
		Status: models.TransactionSuccess,
		Method: req.PaymentMethod,
		Items:  items,
	}

	initialStatus := models.OrderStatusPending
	switch req.PaymentMethod {
	case models.PaymentMethodWallet:
		if err := s.userRepo.Debit(userID, total, txn); err != nil {
			s.releaseReserved(reserved)
			if errors.Is(err, repositories.ErrInsufficientBalance) {
				return nil, ErrInsufficientFunds
			}
			return nil, fmt.Errorf("failed to debit wallet: %w", err)
		}
	case models.PaymentMethodGateway:
		ref := req.Reference
		txn.Reference = &ref
		if err := s.userRepo.AppendTransaction(userID, txn); err != nil {
			s.releaseReserved(reserved)
			if errors.Is(err, repositories.ErrDuplicateReference) {
				return nil, ErrDuplicateReference
			}
			return nil, fmt.Errorf("failed to record gateway transaction: %w", err)
		}
		// Money already settled externally, so the order starts processing.
		initialStatus = models.OrderStatusProcessing
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		Email:         user.Email,
		Items:         items,
		Total:         total,
		Status:        initialStatus,
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentStatusPaid,
	}
	if err := s.orderRepo.Create(order); err != nil {
		s.releaseReserved(reserved)
		switch req.PaymentMethod {
		case models.PaymentMethodWallet:
			refund := &models.Transaction{
				ID:     uuid.New().String(),
				Type:   models.TransactionRefund,
				Amount: total,
				Status: models.TransactionSuccess,
				Method: models.PaymentMethodWallet,
			}
			if creditErr := s.userRepo.Credit(userID, total, refund); creditErr != nil {
				log.Printf("Checkout rollback: failed to refund user %s after order persist failure: %v", userID, creditErr)
			}
		case models.PaymentMethodGateway:
			// The recorded transaction keeps the reference consumed, so a
			// retry of the same settled payment will be rejected as a
			// duplicate. Name the reference for manual reconciliation.
			log.Printf("Checkout rollback: order persist failed for user %s; gateway reference %s stays consumed (amount %d): %v",
				userID, req.Reference, total, err)
		}
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	if err := s.userRepo.ClearCart(userID); err != nil {
		// The order is durable; a stale cart is an inconvenience, not a
		// reason to fail the checkout.
		log.Printf("Failed to clear cart for user %s after order %s: %v", userID, order.ID, err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyOrderConfirmed(order); err != nil {
			log.Printf("Warning: failed to send confirmation for order %s: %v", order.ID, err)
		}
	}

	return order, nil
}

// releaseReserved compensates already-applied reservations in reverse
// order. Failures are logged and skipped; the original cause is what the
// caller sees.
func (s *OrderService) releaseReserved(reserved []checkoutLine) {
	for i := len(reserved) - 1; i >= 0; i-- {
		cl := reserved[i]
		if err := s.productRepo.ReleaseStock(cl.product.ID, cl.line.Quantity); err != nil {
			log.Printf("Compensation: failed to release %d x %s: %v", cl.line.Quantity, cl.product.ID, err)
		}
	}
}

// CancelOrder cancels a pending or processing order, restores its stock and
// refunds wallet payments. The status transition happens first and is
// guarded, so a repeated cancel fails with ErrNotCancellable instead of
// double-refunding or double-restocking.
func (s *OrderService) CancelOrder(orderID string) (*models.Order, error) {
	order, err := s.orderRepo.TransitionStatus(orderID, models.OrderStatusCancelled)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		if errors.Is(err, repositories.ErrInvalidTransition) {
			return nil, ErrNotCancellable
		}
		return nil, fmt.Errorf("failed to cancel order %s: %w", orderID, err)
	}

	for _, item := range order.Items {
		if err := s.productRepo.ReleaseStock(item.ProductID, item.Quantity); err != nil {
			// Lost compensation on a vanished product is accepted and
			// reported; the cancellation itself proceeds.
			log.Printf("Cancellation of order %s: failed to restore %d x %s: %v",
				order.ID, item.Quantity, item.ProductID, err)
		}
	}

	if order.PaymentMethod == models.PaymentMethodWallet && order.PaymentStatus == models.PaymentStatusPaid {
		refund := &models.Transaction{
			ID:     uuid.New().String(),
			Type:   models.TransactionRefund,
			Amount: order.Total,
			Status: models.TransactionSuccess,
			Method: models.PaymentMethodWallet,
			Items:  order.Items,
		}
		if err := s.userRepo.Credit(order.UserID, order.Total, refund); err != nil {
			log.Printf("Cancellation of order %s: failed to refund %d to user %s: %v",
				order.ID, order.Total, order.UserID, err)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyOrderCancelled(order); err != nil {
			log.Printf("Warning: failed to send cancellation notice for order %s: %v", order.ID, err)
		}
	}

	return order, nil
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// GetOrdersByUser retrieves the orders owned by a user.
func (s *OrderService) GetOrdersByUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// UpdateOrderStatus applies an administrative status transition (e.g.
// processing to shipped). Cancellation is rejected here because it must go
// through CancelOrder so stock and wallet compensation run.
func (s *OrderService) UpdateOrderStatus(id string, status string) (*models.Order, error) {
	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	if parsed == models.OrderStatusCancelled {
		return nil, fmt.Errorf("use the cancel operation to cancel an order")
	}

	order, err := s.orderRepo.TransitionStatus(id, parsed)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}
