package handlers

import (
	"dukan/internal/middleware"
	"dukan/internal/models"
	"dukan/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SellerHandler serves shop profiles and their payout details.
type SellerHandler struct {
	service *services.SellerService
}

func NewSellerHandler(service *services.SellerService) *SellerHandler {
	return &SellerHandler{service: service}
}

func (h *SellerHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	r := router.Group("/seller", protect)
	r.Post("/create-seller", h.HandleCreateSeller)
	r.Get("/seller-profile", h.HandleProfile)
	r.Put("/update-seller-profile", h.HandleUpdateShopProfile)
	r.Put("/update-seller-avatar", h.HandleUpdateShopAvatar)
	r.Get("/get-shop-info/:id", h.HandleShopInfo)
	r.Put("/update-payment-methods", h.HandleUpdatePaymentMethod)
	r.Delete("/delete-withdraw-method", h.HandleDeleteWithdrawMethod)
	r.Get("/admin-all-sellers", middleware.RequireRole(models.RoleAdmin), h.HandleAdminListSellers)
	r.Delete("/delete-seller/:id", h.HandleDeleteSeller)
}

func (h *SellerHandler) HandleCreateSeller(c *fiber.Ctx) error {
	var req services.CreateSellerInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	seller, err := h.service.CreateSeller(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Seller profile created successfully",
		"seller":  seller,
	})
}

func (h *SellerHandler) HandleProfile(c *fiber.Ctx) error {
	seller, err := h.service.Profile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Seller profile fetched successfully",
		"seller":  seller,
	})
}

func (h *SellerHandler) HandleUpdateShopProfile(c *fiber.Ctx) error {
	var req services.UpdateShopInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	seller, err := h.service.UpdateShopProfile(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Shop profile updated successfully",
		"seller":  seller,
	})
}

func (h *SellerHandler) HandleUpdateShopAvatar(c *fiber.Ctx) error {
	var req struct {
		ShopAvatar string `json:"shopAvatar"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	seller, err := h.service.UpdateShopAvatar(c.UserContext(), middleware.UserID(c), req.ShopAvatar)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Shop avatar updated successfully",
		"seller":  fiber.Map{"shopAvatar": seller.ShopAvatar},
	})
}

// HandleShopInfo takes the shop owner's account id.
func (h *SellerHandler) HandleShopInfo(c *fiber.Ctx) error {
	info, err := h.service.ShopInfo(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"message":       "Seller information fetched successfully",
		"seller":        info.Seller,
		"totalProducts": info.TotalProducts,
		"averageRating": info.AverageRating,
	})
}

func (h *SellerHandler) HandleUpdatePaymentMethod(c *fiber.Ctx) error {
	var req struct {
		WithdrawMethod *models.WithdrawMethod `json:"withdrawMethod"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	seller, err := h.service.UpdatePaymentMethod(c.UserContext(), middleware.UserID(c), req.WithdrawMethod)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment method updated successfully",
		"data":    fiber.Map{"withdrawMethod": seller.WithdrawMethod},
	})
}

func (h *SellerHandler) HandleDeleteWithdrawMethod(c *fiber.Ctx) error {
	if _, err := h.service.DeleteWithdrawMethod(c.UserContext(), middleware.UserID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment method deleted successfully",
	})
}

func (h *SellerHandler) HandleAdminListSellers(c *fiber.Ctx) error {
	sellers, err := h.service.AdminListSellers(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Sellers fetched successfully",
		"sellers": sellers,
	})
}

// HandleDeleteSeller takes the shop profile id.
func (h *SellerHandler) HandleDeleteSeller(c *fiber.Ctx) error {
	if err := h.service.DeleteSeller(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Seller and all associated data deleted successfully",
	})
}
