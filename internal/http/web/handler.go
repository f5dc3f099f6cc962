package web

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/prodreg/internal/dispatch"
	"winsbygroup.com/prodreg/internal/http/admin"
	"winsbygroup.com/prodreg/internal/importer"
	"winsbygroup.com/prodreg/internal/maintenance"
	"winsbygroup.com/prodreg/internal/middleware"
	"winsbygroup.com/prodreg/internal/registration"
	vm "winsbygroup.com/prodreg/internal/viewmodels"
	"winsbygroup.com/prodreg/internal/views"
)

// Handler handles web UI requests
type Handler struct {
	svc *admin.Service
}

// NewHandler creates a new web handler
func NewHandler(svc *admin.Service) *Handler {
	return &Handler{svc: svc}
}

func caller(c echo.Context) dispatch.Caller {
	return dispatch.Caller{
		Operator:      middleware.IsOperator(c),
		TokenVerified: middleware.TokenVerified(c),
	}
}

// --------------------------
// Authentication
// --------------------------

// LoginPage renders the login form
func (h *Handler) LoginPage(c echo.Context) error {
	return views.Login("").Render(c.Request().Context(), c.Response())
}

// Login handles login form submission
func (h *Handler) Login(c echo.Context) error {
	apiKey := c.FormValue("api_key")

	if !middleware.ValidateAdminKey(apiKey) {
		htmlStatus(c, http.StatusUnauthorized)
		return views.Login("Invalid API key").Render(c.Request().Context(), c.Response())
	}

	// Create a new session (does NOT store the admin key in the cookie)
	sessionID, err := middleware.CreateSession(c.Request().Context())
	if err != nil {
		log.Printf("login: %v", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
	}

	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,                    // always true behind a TLS proxy
		SameSite: http.SameSiteStrictMode, // operator-only
		MaxAge:   int(middleware.SessionTTL.Seconds()),
	}
	c.SetCookie(cookie)

	return c.Redirect(http.StatusFound, "/web/")
}

// Logout clears the session cookie and deletes the server-side session
func (h *Handler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if sessionID := cookie.Value; sessionID != "" {
			middleware.DeleteSession(c.Request().Context(), sessionID)
		}
	}

	// Overwrite cookie with expired one
	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	}
	c.SetCookie(cookie)

	return c.Redirect(http.StatusFound, "/web/login")
}

// --------------------------
// Registrations
// --------------------------

// Index renders the registrations page
func (h *Handler) Index(c echo.Context) error {
	var flash *vm.Flash
	if f, ok := flashes[c.QueryParam("flash")]; ok {
		flash = &f
	}
	return h.renderIndex(c, http.StatusOK, flash)
}

func (h *Handler) renderIndex(c echo.Context, status int, flash *vm.Flash) error {
	ctx := c.Request().Context()
	rows, err := h.svc.GetRegistrations(ctx, caller(c))
	if err != nil {
		return httpError(err)
	}

	htmlStatus(c, status)
	return views.Registrations(FromRegistrations(rows), flash).Render(ctx, c.Response())
}

func (h *Handler) EditRegistrationForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid registration ID")
	}

	reg, err := h.svc.GetRegistration(ctx, caller(c), id)
	if err != nil {
		return httpError(err)
	}

	return views.EditRegistration(FromRegistration(*reg), "").Render(ctx, c.Response())
}

func (h *Handler) UpdateRegistration(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid registration ID")
	}

	req := &admin.UpdateRegistrationRequest{
		SerialNumber: c.FormValue("serial_number"),
	}
	// an unparseable id is rejected by the edit as a non-positive product id
	req.ProductID, _ = strconv.ParseInt(strings.TrimSpace(c.FormValue("product_id")), 10, 64)

	if _, err := h.svc.UpdateRegistration(ctx, caller(c), id, req); err != nil {
		return h.renderEditFormWithError(c, id, req, err)
	}

	return c.Redirect(http.StatusSeeOther, "/web/?flash=updated")
}

// renderEditFormWithError re-renders the edit form with the entered values
func (h *Handler) renderEditFormWithError(c echo.Context, id int64, req *admin.UpdateRegistrationRequest, err error) error {
	ctx := c.Request().Context()

	var msg string
	switch {
	case errors.Is(err, maintenance.ErrConflict):
		msg = "A registration with this serial number already exists."
	case errors.Is(err, maintenance.ErrInvalidInput):
		msg = "Serial number and a positive product ID are required."
	default:
		return httpError(err)
	}

	reg, getErr := h.svc.GetRegistration(ctx, caller(c), id)
	if getErr != nil {
		return httpError(getErr)
	}
	row := FromRegistration(*reg)
	row.SerialNumber = req.SerialNumber
	row.ProductID = req.ProductID

	htmlStatus(c, http.StatusUnprocessableEntity)
	return views.EditRegistration(row, msg).Render(ctx, c.Response())
}

func (h *Handler) DeleteRegistration(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid registration ID")
	}

	if err := h.svc.DeleteRegistration(ctx, caller(c), id); err != nil {
		return httpError(err)
	}

	// Scripted callers get the refreshed table, forms go back to the page
	if c.Request().Method == http.MethodDelete {
		rows, err := h.svc.GetRegistrations(ctx, caller(c))
		if err != nil {
			return httpError(err)
		}
		return views.RegistrationsTable(FromRegistrations(rows)).Render(ctx, c.Response())
	}
	return c.Redirect(http.StatusSeeOther, "/web/?flash=deleted")
}

// --------------------------
// Import
// --------------------------

func (h *Handler) ImportSerials(c echo.Context) error {
	ctx := c.Request().Context()

	fh, err := c.FormFile("serial_numbers_file")
	if err != nil {
		return h.renderIndex(c, http.StatusBadRequest, &vm.Flash{Message: "Please choose a file to import.", Error: true})
	}
	f, err := fh.Open()
	if err != nil {
		log.Printf("import: open upload: %v", err)
		return h.renderIndex(c, http.StatusBadRequest, &vm.Flash{Message: "Could not read the uploaded file.", Error: true})
	}
	defer f.Close()

	res, err := h.svc.ImportSerials(ctx, caller(c), fh.Filename, f)
	switch {
	case errors.Is(err, importer.ErrUnsupportedFile):
		return h.renderIndex(c, http.StatusBadRequest, &vm.Flash{Message: "Unsupported file type. Upload a CSV, TXT, XLS or XLSX file.", Error: true})
	case err != nil:
		if isGateError(err) {
			return httpError(err)
		}
		log.Printf("import %s: %v", fh.Filename, err)
		return h.renderIndex(c, http.StatusInternalServerError, &vm.Flash{Message: "Import failed.", Error: true})
	}

	msg := fmt.Sprintf("Successfully imported %d serial numbers.", res.Imported)
	return h.renderIndex(c, http.StatusOK, &vm.Flash{Message: msg})
}

// --------------------------
// Helper methods
// --------------------------

func htmlStatus(c echo.Context, status int) {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
}

func isGateError(err error) bool {
	return errors.Is(err, dispatch.ErrInvalidToken) || errors.Is(err, dispatch.ErrPermissionDenied)
}

// httpError maps a service error onto an echo error
func httpError(err error) error {
	switch {
	case errors.Is(err, registration.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Registration not found")
	case isGateError(err):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
