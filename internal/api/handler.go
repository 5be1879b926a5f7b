package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"template-marketplace/internal/service"
	"template-marketplace/internal/store"
	"template-marketplace/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog   *service.CatalogService
	cart      *service.CartService
	checkout  *service.CheckoutService
	purchases *service.PurchaseService
	reviews   *service.ReviewService
	wishlist  *service.WishlistService
	profiles  *service.ProfileService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *service.CatalogService,
	cart *service.CartService,
	checkout *service.CheckoutService,
	purchases *service.PurchaseService,
	reviews *service.ReviewService,
	wishlist *service.WishlistService,
	profiles *service.ProfileService,
) *Handler {
	return &Handler{
		catalog:   catalog,
		cart:      cart,
		checkout:  checkout,
		purchases: purchases,
		reviews:   reviews,
		wishlist:  wishlist,
		profiles:  profiles,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/templates", h.listTemplates)
		v1.GET("/templates/:slug", h.getTemplate)
		v1.GET("/categories", h.listCategories)

		auth := v1.Group("", requireUser())
		{
			auth.GET("/cart", h.viewCart)
			auth.POST("/cart/items/:templateID", h.addToCart)
			auth.DELETE("/cart/items/:templateID", h.removeFromCart)

			auth.POST("/checkout/create-order", h.createOrder)
			auth.POST("/checkout/verify-payment", h.verifyPayment)

			auth.GET("/purchases", h.listPurchases)
			auth.GET("/purchases/:templateID/license", h.getLicense)
			auth.GET("/purchases/:templateID/download", h.download)

			auth.POST("/templates/:slug/reviews", h.addReview)
			auth.DELETE("/reviews/:reviewID", h.deleteReview)

			auth.GET("/wishlist", h.viewWishlist)
			auth.POST("/wishlist/:templateID", h.addToWishlist)
			auth.DELETE("/wishlist/:templateID", h.removeFromWishlist)

			auth.GET("/templates/:slug/analytics", h.templateAnalytics)

			auth.GET("/profile", h.getProfile)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().Unix()})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready", "time": time.Now().Unix()})
}

// listTemplates handles catalog listing with filters
func (h *Handler) listTemplates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	minRating, _ := strconv.ParseFloat(c.Query("rating"), 64)

	filter := store.TemplateFilter{
		Query:        c.Query("q"),
		CategorySlug: c.Query("category"),
		FreeOnly:     c.Query("price") == "free",
		PaidOnly:     c.Query("price") == "paid",
		MinRating:    minRating,
		Sort:         c.Query("sort"),
		Limit:        limit,
		Offset:       offset,
	}

	templates, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list templates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates, "count": len(templates)})
}

// getTemplate handles catalog detail
func (h *Handler) getTemplate(c *gin.Context) {
	viewerID := optionalUserID(c)
	detail, err := h.catalog.Get(c.Request.Context(), c.Param("slug"), viewerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// listCategories handles category listing
func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// viewCart handles cart display
func (h *Handler) viewCart(c *gin.Context) {
	view, err := h.cart.List(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// addToCart handles cart additions
func (h *Handler) addToCart(c *gin.Context) {
	templateID, ok := pathID(c, "templateID")
	if !ok {
		return
	}

	added, err := h.cart.Add(c.Request.Context(), userID(c), templateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// removeFromCart handles cart removals (idempotent)
func (h *Handler) removeFromCart(c *gin.Context) {
	templateID, ok := pathID(c, "templateID")
	if !ok {
		return
	}
	if err := h.cart.Remove(c.Request.Context(), userID(c), templateID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// createOrder opens a gateway order for the current cart
func (h *Handler) createOrder(c *gin.Context) {
	result, err := h.checkout.CreateOrder(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// verifyPaymentRequest carries the gateway callback fields
type verifyPaymentRequest struct {
	PaymentID string `json:"payment_id" form:"payment_id"`
	OrderID   string `json:"order_id" form:"order_id"`
	Signature string `json:"signature" form:"signature"`
}

// verifyPayment validates the gateway signature and finalizes the purchase
func (h *Handler) verifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "missing_data"})
		return
	}

	result, err := h.checkout.VerifyAndFinalize(c.Request.Context(), userID(c),
		req.PaymentID, req.OrderID, req.Signature)
	if err != nil {
		if errors.Is(err, service.ErrMissingVerificationData) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "missing_data"})
			return
		}
		c.JSON(statusFor(err), gin.H{"status": "failed", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "redirect": result.Redirect})
}

// listPurchases handles purchase history
func (h *Handler) listPurchases(c *gin.Context) {
	purchases, err := h.purchases.ListPaid(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list purchases"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// getLicense returns the license key for a paid purchase
func (h *Handler) getLicense(c *gin.Context) {
	templateID, ok := pathID(c, "templateID")
	if !ok {
		return
	}

	key, err := h.purchases.LicenseKey(c.Request.Context(), userID(c), templateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"license_key": key})
}

// download releases a download grant for a paid purchase
func (h *Handler) download(c *gin.Context) {
	templateID, ok := pathID(c, "templateID")
	if !ok {
		return
	}

	grant, err := h.purchases.DownloadGate(c.Request.Context(), userID(c), templateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}

// addReviewRequest carries review submission fields
type addReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// addReview creates or replaces the caller's review of a template
func (h *Handler) addReview(c *gin.Context) {
	tpl, err := h.catalog.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	var req addReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	review, err := h.reviews.AddOrUpdate(c.Request.Context(), userID(c), tpl.ID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// deleteReview removes the caller's review
func (h *Handler) deleteReview(c *gin.Context) {
	reviewID, ok := pathID(c, "reviewID")
	if !ok {
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), userID(c), reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// viewWishlist handles wishlist display
func (h *Handler) viewWishlist(c *gin.Context) {
	items, err := h.wishlist.List(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wishlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// addToWishlist handles wishlist additions
func (h *Handler) addToWishlist(c *gin.Context) {
	templateID, ok := pathID(c, "templateID")
	if !ok {
		return
	}
	added, err := h.wishlist.Add(c.Request.Context(), userID(c), templateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// removeFromWishlist handles wishlist removals (idempotent)
func (h *Handler) removeFromWishlist(c *gin.Context) {
	templateID, ok := pathID(c, "templateID")
	if !ok {
		return
	}
	if err := h.wishlist.Remove(c.Request.Context(), userID(c), templateID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// templateAnalytics returns daily counter buckets to the template's owner
func (h *Handler) templateAnalytics(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	buckets, err := h.catalog.Analytics(c.Request.Context(), c.Param("slug"), userID(c), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": buckets})
}

// getProfile returns the caller's profile with buyer stats
func (h *Handler) getProfile(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

const userIDKey = "userID"

// requireUser reads the authenticated user id set by the upstream auth proxy.
// Session handling itself is outside this service.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

func userID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

func optionalUserID(c *gin.Context) int64 {
	id, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// respondError maps the service error taxonomy onto HTTP statuses. A failure
// is never presented as a 2xx.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrMissingVerificationData),
		errors.Is(err, service.ErrSignatureInvalid),
		errors.Is(err, service.ErrInvalidRating):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAlreadyOwned):
		return http.StatusConflict
	case errors.Is(err, service.ErrPurchaseRequired),
		errors.Is(err, service.ErrNotReviewOwner),
		errors.Is(err, service.ErrNotTemplateOwner):
		return http.StatusForbidden
	case errors.Is(err, service.ErrGatewayUnavailable):
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrFinalizeFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
