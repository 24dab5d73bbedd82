package handlers

import (
	"dukan/internal/services"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	service *services.PaymentService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	r := router.Group("/payment", protect)
	r.Get("/razorpay/key", h.HandlePublicKey)
	r.Post("/razorpay/verify", h.HandleVerifyRazorpay)
}

type razorpayVerifyRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

func (h *PaymentHandler) HandlePublicKey(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "key": h.service.PublicKey()})
}

func (h *PaymentHandler) HandleVerifyRazorpay(c *fiber.Ctx) error {
	var req razorpayVerifyRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.VerifyRazorpay(req.OrderID, req.PaymentID, req.Signature); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Payment verified successfully",
		"paymentId": req.PaymentID,
		"orderId":   req.OrderID,
	})
}
