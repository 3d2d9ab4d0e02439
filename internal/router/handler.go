package router

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cuong200111/baitap-sub001/internal/auth"
	"github.com/cuong200111/baitap-sub001/internal/cartsvc"
	"github.com/cuong200111/baitap-sub001/pkg/global"
	"github.com/cuong200111/baitap-sub001/pkg/models"
)

type Handler struct {
	svc          *cartsvc.Service
	jwt          *auth.JWTManager
	customers    auth.CustomerRepository
	healthChecks map[string]func(context.Context) error
}

// NewHandler wires the cart API. A nil JWT manager disables login and
// accepts user_id scopes without a token.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		svc:          deps.Service,
		jwt:          deps.JWT,
		customers:    deps.Customers,
		healthChecks: deps.HealthChecks,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	status := map[string]string{"status": "OK"}
	for name, ping := range h.healthChecks {
		if err := ping(c.Request.Context()); err != nil {
			log.Printf("Health check %s failed: %v", name, err)
			c.JSON(http.StatusServiceUnavailable, global.ErrorResponse(name+" connection failed", nil))
			return
		}
		status[name] = "Connected"
	}
	c.JSON(http.StatusOK, global.SuccessResponse(status))
}

func (h *Handler) Login(c *gin.Context) {
	if h.jwt == nil || h.customers == nil {
		c.JSON(http.StatusServiceUnavailable, global.ErrorResponse("Login is not configured", nil))
		return
	}

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "invalid_format"},
		}))
		return
	}

	customer, err := auth.Authenticate(c.Request.Context(), h.customers, req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid email or password", nil))
		return
	}
	if err != nil {
		log.Printf("Error authenticating %s: %v", auth.NormalizeEmail(req.Email), err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to log in", nil))
		return
	}

	token, expiresAt, err := h.jwt.Sign(customer.UserID)
	if err != nil {
		log.Printf("Error signing token for user %d: %v", customer.UserID, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to log in", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessMessageResponse(models.LoginData{
		Token:     token,
		UserID:    customer.UserID,
		Name:      customer.GetFullName(),
		ExpiresAt: expiresAt,
	}, "Logged in"))
}

func (h *Handler) GetCart(c *gin.Context) {
	scope, ok := h.queryScope(c)
	if !ok {
		return
	}
	cart, err := h.svc.GetCart(c.Request.Context(), scope)
	if err != nil {
		h.fail(c, err, "get cart")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

func (h *Handler) GetCartCount(c *gin.Context) {
	scope, ok := h.queryScope(c)
	if !ok {
		return
	}
	count, err := h.svc.Count(c.Request.Context(), scope)
	if err != nil {
		h.fail(c, err, "get cart count")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(models.CountData{Count: count}))
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if !bindBody(c, &req) {
		return
	}
	if !h.authorize(c, req.Scope) {
		return
	}

	data, err := h.svc.AddToCart(c.Request.Context(), req.Scope, req.ProductID, req.Quantity)
	if err != nil {
		h.fail(c, err, "add to cart")
		return
	}
	message := "Added to cart"
	if data.Action == models.CartActionUpdated {
		message = "Cart updated"
	}
	c.JSON(http.StatusOK, global.SuccessMessageResponse(data, message))
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, ok := lineID(c)
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if !bindBody(c, &req) {
		return
	}
	if req.Scope.IsZero() {
		scope, ok := h.queryScope(c)
		if !ok {
			return
		}
		req.Scope = scope
	} else if !h.authorize(c, req.Scope) {
		return
	}

	data, err := h.svc.UpdateQuantity(c.Request.Context(), req.Scope, id, *req.Quantity)
	if err != nil {
		h.fail(c, err, "update cart item")
		return
	}
	message := "Cart updated"
	if data.Action == models.CartActionRemoved {
		message = "Item removed from cart"
	}
	c.JSON(http.StatusOK, global.SuccessMessageResponse(data, message))
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	id, ok := lineID(c)
	if !ok {
		return
	}
	scope, ok := h.queryScope(c)
	if !ok {
		return
	}

	if err := h.svc.RemoveItem(c.Request.Context(), scope, id); err != nil {
		h.fail(c, err, "remove cart item")
		return
	}
	c.JSON(http.StatusOK, global.SuccessMessageResponse(nil, "Item removed from cart"))
}

func (h *Handler) ClearCart(c *gin.Context) {
	var scope models.Scope
	if c.Request.ContentLength != 0 {
		if !bindBody(c, &scope) {
			return
		}
	}
	if scope.IsZero() {
		var err error
		if scope, err = parseScope(c.Query("user_id"), c.Query("session_id")); err != nil {
			badScope(c, err)
			return
		}
	}
	if !h.authorize(c, scope) {
		return
	}

	if err := h.svc.ClearCart(c.Request.Context(), scope); err != nil {
		h.fail(c, err, "clear cart")
		return
	}
	c.JSON(http.StatusOK, global.SuccessMessageResponse(nil, "Cart cleared"))
}

// MigrateCart moves a guest cart into the authenticated user's cart. The
// session id itself is the guest's credential.
func (h *Handler) MigrateCart(c *gin.Context) {
	var req models.MigrateRequest
	if !bindBody(c, &req) {
		return
	}
	if !h.authorize(c, models.UserScope(req.UserID)) {
		return
	}

	data, err := h.svc.Migrate(c.Request.Context(), req.SessionID, req.UserID)
	if err != nil {
		h.fail(c, err, "migrate cart")
		return
	}
	message := "Cart migrated"
	if data.Migrated == 0 {
		message = "Nothing to migrate"
	}
	c.JSON(http.StatusOK, global.SuccessMessageResponse(data, message))
}

func (h *Handler) CreateBuyNowSession(c *gin.Context) {
	var req models.BuyNowRequest
	if !bindBody(c, &req) {
		return
	}
	if !h.authorize(c, req.Scope) {
		return
	}

	session, err := h.svc.CreateBuyNow(c.Request.Context(), req.Scope, req.ProductID, req.Quantity)
	if err != nil {
		h.fail(c, err, "create buy-now session")
		return
	}
	c.JSON(http.StatusOK, global.SuccessMessageResponse(session, "Buy-now session created"))
}

func (h *Handler) GetBuyNowSession(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	session, err := h.svc.GetBuyNow(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get buy-now session")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(session))
}

// authorize requires a bearer token naming the same user whenever the scope
// claims a user id.
func (h *Handler) authorize(c *gin.Context, scope models.Scope) bool {
	if scope.UserID == nil || h.jwt == nil {
		return true
	}

	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, global.ErrorResponse("Authentication required", nil))
		return false
	}
	claims, err := h.jwt.Parse(strings.TrimSpace(token))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, global.ErrorResponse("Invalid or expired token", nil))
		return false
	}
	if claims.UserID != *scope.UserID {
		c.AbortWithStatusJSON(http.StatusUnauthorized, global.ErrorResponse("Token does not match user_id", nil))
		return false
	}
	return true
}

func (h *Handler) queryScope(c *gin.Context) (models.Scope, bool) {
	scope, err := parseScope(c.Query("user_id"), c.Query("session_id"))
	if err != nil {
		badScope(c, err)
		return models.Scope{}, false
	}
	if scope.IsZero() {
		badScope(c, cartsvc.ErrScopeRequired)
		return models.Scope{}, false
	}
	if !h.authorize(c, scope) {
		return models.Scope{}, false
	}
	return scope, true
}

func (h *Handler) fail(c *gin.Context, err error, action string) {
	var stockErr *cartsvc.StockError
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusOK, models.StockResponse{
			APIResponse:  global.ErrorResponse(stockErr.Message, nil),
			StockDetails: stockErr.Details,
		})
	case errors.Is(err, cartsvc.ErrScopeRequired):
		badScope(c, err)
	case errors.Is(err, models.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Cart item not found", nil))
	case errors.Is(err, models.ErrProductNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
			{Field: "product_id", Message: "No product exists with this id", Code: "not_found"},
		}))
	case errors.Is(err, models.ErrBuyNowNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Buy-now session not found or expired", nil))
	default:
		log.Printf("Error trying to %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to "+action, nil))
	}
}

func bindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "invalid_format"},
		}))
		return false
	}
	return true
}

func lineID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid cart item id", []global.ValidationError{
			{Field: "id", Message: "Cart item id must be a positive integer", Code: "invalid_format"},
		}))
		return 0, false
	}
	return id, true
}

// parseScope reads an optional scope; both values empty yields the zero scope.
func parseScope(userID, sessionID string) (models.Scope, error) {
	userID = strings.TrimSpace(userID)
	sessionID = strings.TrimSpace(sessionID)
	if userID != "" {
		id, err := strconv.ParseInt(userID, 10, 64)
		if err != nil || id <= 0 {
			return models.Scope{}, errors.New("user_id must be a positive integer")
		}
		return models.UserScope(id), nil
	}
	return models.Scope{SessionID: sessionID}, nil
}

func badScope(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, global.ErrorResponse("Missing or invalid cart owner", []global.ValidationError{
		{Field: "user_id", Message: err.Error(), Code: "invalid_format"},
	}))
}
