package handlers

import (
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/arhammunir1104/ecom-sub001/internal/dualstore"
	"github.com/arhammunir1104/ecom-sub001/internal/middleware"
	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/services"
)

// CatalogHandler handles HTTP requests for products, categories, storefront
// content, and reviews.
type CatalogHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the catalog routes. Reads are public; mutation is
// admin-gated.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router, requireAuth, requireAdmin fiber.Handler) {
	products := router.Group("/products")
	products.Get("/", h.HandleListProducts)
	products.Get("/:id", h.HandleGetProduct)
	products.Post("/", requireAdmin, h.HandleSaveProduct)
	products.Put("/:id", requireAdmin, h.HandleSaveProduct)
	products.Delete("/:id", requireAdmin, h.HandleDeleteProduct)
	products.Get("/:id/reviews", h.HandleListReviews)
	products.Post("/:id/reviews", requireAuth, h.HandleAddReview)

	categories := router.Group("/categories")
	categories.Get("/", h.HandleListCategories)
	categories.Get("/:id", h.HandleGetCategory)
	categories.Post("/", requireAdmin, h.HandleSaveCategory)
	categories.Put("/:id", requireAdmin, h.HandleSaveCategory)
	categories.Delete("/:id", requireAdmin, h.HandleDeleteCategory)

	router.Get("/banners", h.HandleListBanners)
	router.Get("/testimonials", h.HandleListTestimonials)
}

// parseFilter reads the listing filter from query parameters.
func parseFilter(c *fiber.Ctx) dualstore.ProductFilter {
	filter := dualstore.ProductFilter{
		Search:   c.Query("search"),
		SaleOnly: c.QueryBool("sale"),
	}
	if raw := c.Query("category"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			cid := uint(id)
			filter.CategoryID = &cid
		}
	}
	if raw := c.Query("min_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinPrice = &v
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = &v
		}
	}
	return filter
}

// HandleListProducts lists products with optional search, category, price
// range, and sale filters.
func (h *CatalogHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), parseFilter(c))
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return fail(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves one product.
func (h *CatalogHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleSaveProduct creates or updates a product.
func (h *CatalogHandler) HandleSaveProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if key := c.Params("id"); key != "" {
		id, err := models.ParseNumericID(key)
		if err != nil {
			return fail(c, err, "Invalid product id")
		}
		product.ID = id
	}
	if err := h.validate.Struct(product); err != nil {
		return validationErrors(c, err)
	}
	if err := h.service.SaveProduct(c.UserContext(), &product); err != nil {
		log.Printf("Error saving product: %v", err)
		return fail(c, err, "Could not save product")
	}
	status := fiber.StatusOK
	if c.Method() == fiber.MethodPost {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(product)
}

// HandleDeleteProduct removes a product from both stores.
func (h *CatalogHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// HandleListCategories lists categories.
func (h *CatalogHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return fail(c, err, "Could not retrieve categories")
	}
	return c.JSON(categories)
}

// HandleGetCategory retrieves one category.
func (h *CatalogHandler) HandleGetCategory(c *fiber.Ctx) error {
	category, err := h.service.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "Could not retrieve category")
	}
	return c.JSON(category)
}

// HandleSaveCategory creates or updates a category.
func (h *CatalogHandler) HandleSaveCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := c.BodyParser(&category); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if key := c.Params("id"); key != "" {
		id, err := models.ParseNumericID(key)
		if err != nil {
			return fail(c, err, "Invalid category id")
		}
		category.ID = id
	}
	if err := h.validate.Struct(category); err != nil {
		return validationErrors(c, err)
	}
	if err := h.service.SaveCategory(c.UserContext(), &category); err != nil {
		log.Printf("Error saving category: %v", err)
		return fail(c, err, "Could not save category")
	}
	status := fiber.StatusOK
	if c.Method() == fiber.MethodPost {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(category)
}

// HandleDeleteCategory removes a category from both stores.
func (h *CatalogHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err, "Could not delete category")
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

// HandleListBanners lists the storefront hero banners.
func (h *CatalogHandler) HandleListBanners(c *fiber.Ctx) error {
	banners, err := h.service.HeroBanners(c.UserContext())
	if err != nil {
		return fail(c, err, "Could not retrieve banners")
	}
	return c.JSON(banners)
}

// HandleListTestimonials lists the storefront testimonials.
func (h *CatalogHandler) HandleListTestimonials(c *fiber.Ctx) error {
	testimonials, err := h.service.Testimonials(c.UserContext())
	if err != nil {
		return fail(c, err, "Could not retrieve testimonials")
	}
	return c.JSON(testimonials)
}

// ReviewRequest is the request body for adding a review.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

// HandleAddReview records a review by the authenticated actor.
func (h *CatalogHandler) HandleAddReview(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrors(c, err)
	}
	productID, err := models.ParseNumericID(c.Params("id"))
	if err != nil {
		return fail(c, err, "Invalid product id")
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    actor.User.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.service.AddReview(c.UserContext(), review); err != nil {
		log.Printf("Error adding review: %v", err)
		return fail(c, err, "Could not add review")
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// HandleListReviews lists the reviews for one product.
func (h *CatalogHandler) HandleListReviews(c *fiber.Ctx) error {
	reviews, err := h.service.Reviews(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "Could not retrieve reviews")
	}
	return c.JSON(reviews)
}
