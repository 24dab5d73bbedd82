package handlers

import (
	"dukan/internal/middleware"
	"dukan/internal/models"
	"dukan/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	r := router.Group("/order", protect)
	r.Post("/create-order", h.HandleCreateOrder)
	r.Get("/get-order/:id", h.HandleGetOrderByID)
	r.Get("/get-all-orders/:userId", h.HandleGetOrdersOfUser)
	r.Get("/get-seller-all-orders/:id", h.HandleGetOrdersOfShop)
	r.Put("/update-order-status/:id", h.HandleUpdateOrderStatus)
	r.Put("/order-refund/:id", h.HandleRequestRefund)
	r.Put("/order-refund-success/:id", h.HandleApproveRefund)
	r.Get("/admin-all-orders", middleware.RequireRole(models.RoleAdmin), h.HandleAdminListOrders)
}

// HandleCreateOrder places an order for the caller.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CreateOrderInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.service.CreateOrder(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Order created successfully",
		"order":   order,
	})
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "order": order})
}

func (h *OrderHandler) HandleGetOrdersOfUser(c *fiber.Ctx) error {
	orders, err := h.service.GetOrdersOfUser(c.UserContext(), middleware.UserID(c), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Orders fetched successfully",
		"orders":      orders,
		"totalOrders": len(orders),
	})
}

// HandleGetOrdersOfShop takes the seller's account id.
func (h *OrderHandler) HandleGetOrdersOfShop(c *fiber.Ctx) error {
	orders, err := h.service.GetOrdersOfShop(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"totalOrders": len(orders),
		"orders":      orders,
	})
}

// HandleUpdateOrderStatus moves an order along the delivery pipeline.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order status updated successfully",
		"order":   order,
	})
}

func (h *OrderHandler) HandleRequestRefund(c *fiber.Ctx) error {
	order, err := h.service.RequestRefund(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Refund request submitted successfully!",
		"order":   order,
	})
}

func (h *OrderHandler) HandleApproveRefund(c *fiber.Ctx) error {
	order, err := h.service.ApproveRefund(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order refund successful!",
		"order":   order,
	})
}

func (h *OrderHandler) HandleAdminListOrders(c *fiber.Ctx) error {
	orders, err := h.service.AdminListOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "All orders fetched successfully",
		"orders":      orders,
		"totalOrders": len(orders),
	})
}
