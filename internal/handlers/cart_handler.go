package handlers

import (
	"sembako/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the authenticated user's cart.
type CartHandler struct {
	service   *services.CartService
	validator *requestValidator
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:   service,
		validator: newRequestValidator(),
	}
}

// RegisterRoutes registers the cart routes behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cartRoutes := router.Group("/cart", auth)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleAddItem)
	cartRoutes.Put("/:id", h.HandleUpdateItem)
	cartRoutes.Delete("/:id", h.HandleRemoveItem)
}

// AddCartItemRequest represents the request body for adding to the cart.
type AddCartItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// UpdateCartItemRequest represents the request body for changing a line's quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// HandleGetCart returns the cart with its total.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	summary, err := h.service.ListCart(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Cart items retrieved successfully",
		"data":    summary,
	})
}

// HandleAddItem adds a product to the cart, merging with an existing line.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req AddCartItemRequest
	if err := h.validator.parse(c, &req); err != nil {
		return err
	}

	item, created, err := h.service.AddItem(c.UserContext(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}

	message := "Cart item quantity updated"
	if created {
		message = "Item added to cart"
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    item,
	})
}

// HandleUpdateItem sets the quantity of a cart line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	itemID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateCartItemRequest
	if err := h.validator.parse(c, &req); err != nil {
		return err
	}

	item, err := h.service.UpdateItem(c.UserContext(), userID, itemID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Cart item updated",
		"data":    item,
	})
}

// HandleRemoveItem deletes a cart line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	itemID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.RemoveItem(c.UserContext(), userID, itemID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Item removed from cart",
	})
}
