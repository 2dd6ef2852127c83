package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthHandler struct {
	service *AccountService
}

func NewAuthHandler(service *AccountService) *AuthHandler {
	return &AuthHandler{service: service}
}

// CallerClaims pulls the JWT claims the middleware stored on the context.
func CallerClaims(c echo.Context) (*JWTClaims, bool) {
	claims, ok := c.Get("user").(*JWTClaims)
	return claims, ok && claims != nil
}

// CallerID resolves the authenticated account id from the request context.
func CallerID(c echo.Context) (primitive.ObjectID, bool) {
	claims, ok := CallerClaims(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.AccountID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := h.service.RegisterAccount(c.Request().Context(), req); err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Account registered successfully"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var cred Credential
	if err := c.Bind(&cred); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	token, err := h.service.Authenticate(c.Request().Context(), cred)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	id, ok := CallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	account, err := h.service.GetAccount(c.Request().Context(), id)
	if err != nil || account == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Account not found"})
	}
	return c.JSON(http.StatusOK, account)
}

func (h *AuthHandler) CreateStaff(c echo.Context) error {
	var req CreateStaffRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	account, err := h.service.CreateStaff(c.Request().Context(), req)
	if err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, account)
}

func (h *AuthHandler) ListStaff(c echo.Context) error {
	accounts, err := h.service.ListByRole(c.Request().Context(), RoleStaff)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, accounts)
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := h.service.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password reset email sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := h.service.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password successfully reset"})
}
