package handlers

import (
	"dukan/internal/middleware"
	"dukan/internal/models"
	"dukan/internal/services"

	"github.com/gofiber/fiber/v2"
)

type WithdrawHandler struct {
	service *services.WithdrawService
}

func NewWithdrawHandler(service *services.WithdrawService) *WithdrawHandler {
	return &WithdrawHandler{service: service}
}

func (h *WithdrawHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	r := router.Group("/withdraw", protect)
	r.Post("/create-withdraw-request", h.HandleCreate)

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	r.Get("/get-all-withdraw-request", adminOnly, h.HandleAdminList)
	r.Put("/update-withdraw-request/:id", adminOnly, h.HandleApprove)
}

func (h *WithdrawHandler) HandleCreate(c *fiber.Ctx) error {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	withdraw, err := h.service.CreateWithdrawRequest(c.UserContext(), middleware.UserID(c), req.Amount)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Withdrawal request created successfully",
		"withdraw": withdraw,
	})
}

func (h *WithdrawHandler) HandleAdminList(c *fiber.Ctx) error {
	withdraws, err := h.service.AdminListWithdraws(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "withdraws": withdraws})
}

// HandleApprove marks a withdraw paid. The body's sellerId is an optional
// shop id and defaults to the withdraw owner's shop.
func (h *WithdrawHandler) HandleApprove(c *fiber.Ctx) error {
	var req struct {
		SellerID string `json:"sellerId"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}

	withdraw, err := h.service.ApproveWithdrawRequest(c.UserContext(), middleware.UserID(c), c.Params("id"), req.SellerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Withdrawal request updated successfully",
		"withdraw": withdraw,
	})
}
