package handlers

import (
	"sembako/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler handles checkout and the transaction log.
type TransactionHandler struct {
	service *services.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(service *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		service: service,
	}
}

// RegisterRoutes registers the transaction routes behind auth.
func (h *TransactionHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	transactionRoutes := router.Group("/transactions", auth)
	transactionRoutes.Post("/checkout", h.HandleCheckout)
	transactionRoutes.Get("/", h.HandleGetTransactions)
	transactionRoutes.Get("/:id", h.HandleGetTransactionByID)
}

// HandleCheckout converts the cart into a completed transaction.
func (h *TransactionHandler) HandleCheckout(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	txn, err := h.service.Checkout(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Checkout successful",
		"data":    txn,
	})
}

// HandleGetTransactions lists the user's own transactions.
func (h *TransactionHandler) HandleGetTransactions(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	txns, err := h.service.ListTransactions(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Transactions retrieved successfully",
		"data":    txns,
	})
}

// HandleGetTransactionByID retrieves one of the user's transactions.
func (h *TransactionHandler) HandleGetTransactionByID(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	txn, err := h.service.GetTransaction(c.UserContext(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Transaction retrieved successfully",
		"data":    txn,
	})
}
