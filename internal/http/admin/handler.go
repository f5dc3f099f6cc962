package admin

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/prodreg/internal/account"
	"winsbygroup.com/prodreg/internal/dispatch"
	"winsbygroup.com/prodreg/internal/importer"
	"winsbygroup.com/prodreg/internal/maintenance"
	"winsbygroup.com/prodreg/internal/middleware"
	"winsbygroup.com/prodreg/internal/product"
	"winsbygroup.com/prodreg/internal/registration"
	"winsbygroup.com/prodreg/internal/sqlite"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func caller(c echo.Context) dispatch.Caller {
	return dispatch.Caller{
		Operator:      middleware.IsOperator(c),
		TokenVerified: middleware.TokenVerified(c),
	}
}

// fail maps service errors onto status codes.
func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, registration.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, account.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, maintenance.ErrConflict), sqlite.IsUniqueConstraintError(err):
		status = http.StatusConflict
	case errors.Is(err, maintenance.ErrInvalidInput),
		errors.Is(err, product.ErrInvalid),
		errors.Is(err, account.ErrInvalid),
		errors.Is(err, importer.ErrUnsupportedFile):
		status = http.StatusBadRequest
	case errors.Is(err, dispatch.ErrInvalidToken), errors.Is(err, dispatch.ErrPermissionDenied):
		status = http.StatusForbidden
	default:
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func paramID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
}

// Registrations

func (h *Handler) GetRegistrations(c echo.Context) error {
	out, err := h.svc.GetRegistrations(c.Request().Context(), caller(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetRegistration(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	out, err := h.svc.GetRegistration(c.Request().Context(), caller(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) UpdateRegistration(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}

	var req UpdateRegistrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	out, err := h.svc.UpdateRegistration(c.Request().Context(), caller(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteRegistration(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	if err := h.svc.DeleteRegistration(c.Request().Context(), caller(c), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// POST /registrations/import (multipart, field "file")
func (h *Handler) ImportSerials(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()

	out, err := h.svc.ImportSerials(c.Request().Context(), caller(c), fh.Filename, f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Products

func (h *Handler) GetProducts(c echo.Context) error {
	out, err := h.svc.GetProducts(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetProduct(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	out, err := h.svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateProduct(c echo.Context) error {
	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	out, err := h.svc.CreateProduct(c.Request().Context(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.svc.UpdateProduct(c.Request().Context(), id, &req); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	if err := h.svc.DeleteProduct(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Accounts

func (h *Handler) GetAccounts(c echo.Context) error {
	out, err := h.svc.GetAccounts(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetAccount(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	out, err := h.svc.GetAccount(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateAccount(c echo.Context) error {
	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	out, err := h.svc.CreateAccount(c.Request().Context(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) UpdateAccount(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.svc.UpdateAccount(c.Request().Context(), id, &req); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteAccount(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	if err := h.svc.DeleteAccount(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Backup

func (h *Handler) GetBackups(c echo.Context) error {
	out, err := h.svc.GetBackups()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) BackupDatabase(c echo.Context) error {
	out, err := h.svc.CreateBackup(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
