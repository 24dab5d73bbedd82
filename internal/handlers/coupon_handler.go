package handlers

import (
	"dukan/internal/middleware"
	"dukan/internal/services"

	"github.com/gofiber/fiber/v2"
)

type CouponHandler struct {
	service *services.CouponService
}

func NewCouponHandler(service *services.CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

func (h *CouponHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	r := router.Group("/coupon", protect)
	r.Post("/create-coupon-code", h.HandleCreateCoupon)
	r.Get("/get-coupon/:id", h.HandleGetSellerCoupons)
	r.Get("/get-coupon-value/:name", h.HandleGetCouponValue)
	r.Delete("/delete-coupon/:id", h.HandleDeleteCoupon)
}

func (h *CouponHandler) HandleCreateCoupon(c *fiber.Ctx) error {
	var req services.CreateCouponInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	coupon, err := h.service.CreateCoupon(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"message":    "Coupon code created successfully",
		"couponCode": coupon,
	})
}

func (h *CouponHandler) HandleGetSellerCoupons(c *fiber.Ctx) error {
	coupons, err := h.service.GetSellerCoupons(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "couponCodes": coupons})
}

func (h *CouponHandler) HandleGetCouponValue(c *fiber.Ctx) error {
	coupon, err := h.service.GetCouponValue(c.UserContext(), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "couponCode": coupon})
}

func (h *CouponHandler) HandleDeleteCoupon(c *fiber.Ctx) error {
	if err := h.service.DeleteCoupon(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Coupon code deleted successfully",
	})
}
