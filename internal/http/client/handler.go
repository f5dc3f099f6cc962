package client

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/prodreg/internal/claim"
	"winsbygroup.com/prodreg/internal/dispatch"
	"winsbygroup.com/prodreg/internal/middleware"
	"winsbygroup.com/prodreg/internal/proof"
	vm "winsbygroup.com/prodreg/internal/viewmodels"
	"winsbygroup.com/prodreg/internal/views"
)

// Handler serves the customer facing registration page and its AJAX calls.
type Handler struct {
	Dispatcher *dispatch.Dispatcher
}

func NewHandler(d *dispatch.Dispatcher) *Handler {
	return &Handler{Dispatcher: d}
}

type validateRequest struct {
	SerialNumber string `json:"serial_number" form:"serial_number"`
}

func caller(c echo.Context) dispatch.Caller {
	return dispatch.Caller{
		UserID:        middleware.UserID(c),
		TokenVerified: middleware.TokenVerified(c),
	}
}

// GET /
func (h *Handler) Page(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	owned, err := h.owned(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return views.Storefront(userID != 0, owned).Render(ctx, c.Response())
}

// GET /mine
func (h *Handler) Mine(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	owned, err := h.owned(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return views.OwnedList(userID != 0, owned).Render(ctx, c.Response())
}

func (h *Handler) owned(c echo.Context) ([]vm.Owned, error) {
	if middleware.UserID(c) == 0 {
		return nil, nil
	}
	out, err := h.Dispatcher.Dispatch(c.Request().Context(), caller(c), dispatch.ListMyRegistrations{})
	if err != nil {
		return nil, err
	}

	list := out.([]claim.Owned)
	owned := make([]vm.Owned, len(list))
	for i, o := range list {
		owned[i] = vm.Owned{
			ProductName:      o.ProductName,
			SerialNumber:     o.SerialNumber,
			RegistrationDate: o.RegistrationDate,
			ProofURL:         o.ProofURL,
		}
	}
	return owned, nil
}

// POST /validate
func (h *Handler) Validate(c echo.Context) error {
	var req validateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "invalid request body",
		})
	}

	out, err := h.Dispatcher.Dispatch(c.Request().Context(), caller(c), dispatch.ValidateSerial{
		SerialNumber: req.SerialNumber,
	})
	if err != nil {
		return failure(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"product": out.(*claim.ProductSummary),
	})
}

// POST /register (multipart)
func (h *Handler) Register(c echo.Context) error {
	req := dispatch.RegisterProduct{
		SerialNumber: c.FormValue("serial_number"),
	}

	// A missing or malformed id matches no row and fails the claim
	if id, err := strconv.ParseInt(strings.TrimSpace(c.FormValue("product_id")), 10, 64); err == nil {
		req.ProductID = id
	}

	fh, err := c.FormFile("purchase_proof")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			log.Printf("register: open upload: %v", err)
			break
		}
		defer f.Close()
		req.Proof = upload(fh, f)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		log.Printf("register: read upload: %v", err)
	}

	out, err := h.Dispatcher.Dispatch(c.Request().Context(), caller(c), req)
	if err != nil {
		return failure(c, err)
	}

	conf := out.(*claim.Confirmation)
	warnings := conf.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"message":  conf.Message,
		"warnings": warnings,
	})
}

func upload(fh *multipart.FileHeader, f multipart.File) *proof.Upload {
	return &proof.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Body:     f,
	}
}

// failure writes the workflow error payload. Workflow outcomes are 200 so
// the page script can show the message; gate failures use 401 or 403.
func failure(c echo.Context, err error) error {
	status := http.StatusOK
	msg := claim.Message(err)

	switch {
	case errors.Is(err, dispatch.ErrInvalidToken):
		status = http.StatusForbidden
		msg = "Security check failed. Please reload the page and try again."
	case errors.Is(err, dispatch.ErrPermissionDenied):
		status = http.StatusForbidden
		msg = "Permission denied."
	case errors.Is(err, claim.ErrAuthRequired):
		status = http.StatusUnauthorized
	case isWorkflowError(err):
	default:
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
		status = http.StatusInternalServerError
	}

	return c.JSON(status, map[string]any{
		"success": false,
		"message": msg,
	})
}

func isWorkflowError(err error) bool {
	return errors.Is(err, claim.ErrNotFound) ||
		errors.Is(err, claim.ErrAlreadyClaimed) ||
		errors.Is(err, claim.ErrProductMissing) ||
		errors.Is(err, claim.ErrRegistrationFailed)
}
