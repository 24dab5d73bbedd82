package handlers

import (
	"dukan/internal/middleware"
	"dukan/internal/models"
	"dukan/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the product routes. Catalog reads are public.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	r := router.Group("/product")
	r.Get("/get-all-products", h.HandleGetAllProducts)
	r.Get("/get-all-products-shop/:id", h.HandleGetShopProducts)
	r.Get("/get-product/:id", h.HandleGetProductByID)

	r.Post("/create-product", protect, h.HandleCreateProduct)
	r.Delete("/delete-shop-product/:id", protect, h.HandleDeleteProduct)
	r.Put("/create-new-review", protect, h.HandleCreateReview)
	r.Get("/admin-all-products", protect, middleware.RequireRole(models.RoleAdmin), h.HandleAdminListProducts)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req services.CreateProductInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	product, err := h.service.CreateProduct(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

func (h *ProductHandler) HandleGetAllProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}

func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"product": product,
	})
}

// HandleGetShopProducts takes the seller's account id.
func (h *ProductHandler) HandleGetShopProducts(c *fiber.Ctx) error {
	products, err := h.service.GetShopProducts(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}

func (h *ProductHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req services.ReviewInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	product, err := h.service.CreateReview(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Reviewed successfully!",
		"product": product,
	})
}

func (h *ProductHandler) HandleAdminListProducts(c *fiber.Ctx) error {
	products, err := h.service.AdminListProducts(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}
