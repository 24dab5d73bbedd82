package handlers

import (
	"dukan/internal/middleware"
	"dukan/internal/models"
	"dukan/internal/services"

	"github.com/gofiber/fiber/v2"
)

type EventHandler struct {
	service *services.EventService
}

func NewEventHandler(service *services.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	r := router.Group("/event")
	r.Get("/get-all-events", h.HandleGetAllEvents)

	r.Post("/create-event", protect, h.HandleCreateEvent)
	r.Get("/get-all-events/:id", protect, h.HandleGetShopEvents)
	r.Delete("/delete-shop-event/:id", protect, h.HandleDeleteEvent)
	r.Get("/admin-all-events", protect, middleware.RequireRole(models.RoleAdmin), h.HandleAdminListEvents)
}

func (h *EventHandler) HandleCreateEvent(c *fiber.Ctx) error {
	var req services.CreateEventInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	event, err := h.service.CreateEvent(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Event created successfully",
		"event":   event,
	})
}

func (h *EventHandler) HandleGetAllEvents(c *fiber.Ctx) error {
	events, err := h.service.GetAllEvents(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "events": events})
}

func (h *EventHandler) HandleGetShopEvents(c *fiber.Ctx) error {
	events, err := h.service.GetShopEvents(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "events": events})
}

func (h *EventHandler) HandleDeleteEvent(c *fiber.Ctx) error {
	if err := h.service.DeleteEvent(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Event deleted successfully",
	})
}

func (h *EventHandler) HandleAdminListEvents(c *fiber.Ctx) error {
	events, err := h.service.AdminListEvents(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "events": events})
}
