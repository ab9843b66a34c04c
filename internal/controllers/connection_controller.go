package controllers

import (
	"fmt"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// ConnectionController exposes the OAuth connection lifecycle over HTTP.
// The browser keeps only the popup plumbing: it opens the returned auth
// URL, and the provider redirect lands on the callback handler here.
type ConnectionController struct {
	connectionManager domain.ConnectionManager
}

type ConnectionControllerDependencies struct {
	ConnectionManager domain.ConnectionManager
}

func NewConnectionController(deps ConnectionControllerDependencies) *ConnectionController {
	return &ConnectionController{
		connectionManager: deps.ConnectionManager,
	}
}

type authorizeRequest struct {
	ServiceID        string   `json:"service_id"`
	AdditionalScopes []string `json:"additional_scopes,omitempty"`
}

// Authorize starts an authorization attempt and returns the provider URL
// for the browser to open.
func (c *ConnectionController) Authorize(ctx fiber.Ctx) error {
	var req authorizeRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	attempt, err := c.connectionManager.StartAuthorization(ctx.RequestCtx(), domain.StartAuthorizationParams{
		UserID:           userID(ctx),
		ServiceID:        req.ServiceID,
		AdditionalScopes: req.AdditionalScopes,
	})
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"state":    attempt.State,
		"auth_url": attempt.AuthURL,
	})
}

// AwaitResult long-polls for the outcome of a pending attempt.
func (c *ConnectionController) AwaitResult(ctx fiber.Ctx) error {
	connection, err := c.connectionManager.Await(ctx.RequestCtx(), ctx.Params("state"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(sanitizeConnection(connection))
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Cancel settles a pending attempt with a browser-reported failure.
func (c *ConnectionController) Cancel(ctx fiber.Ctx) error {
	var req cancelRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	cause := domain.ErrUserCancelled
	if req.Reason == "popup_blocked" {
		cause = domain.ErrPopupBlocked
	}

	handled := c.connectionManager.FailAuthorization(ctx.Params("state"), cause)

	return ctx.JSON(fiber.Map{"handled": handled})
}

// OAuthCallback receives the provider redirect, feeds it into the flow and
// returns a page that notifies the opener window and closes the popup.
func (c *ConnectionController) OAuthCallback(ctx fiber.Ctx) error {
	msg := domain.CallbackMessage{
		Type: domain.CallbackMessageType,
		Data: domain.CallbackData{
			Code:  ctx.Query("code"),
			State: ctx.Query("state"),
			Error: ctx.Query("error"),
		},
	}

	handled := c.connectionManager.HandleCallback(ctx.RequestCtx(), msg)
	if !handled {
		log.Warn().Msg("Ignored oauth callback with unknown state")
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html><body><script>
if (window.opener) {
  window.opener.postMessage({ type: 'oauth_callback', data: { state: %q } }, window.location.origin);
}
window.close();
</script></body></html>`, ctx.Query("state"))

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)

	return ctx.SendString(page)
}

// Callback accepts a relayed callback message (the postMessage contract)
// as JSON. Cross-origin filtering happens in the browser adapter; messages
// with any other type are ignored here as well.
func (c *ConnectionController) Callback(ctx fiber.Ctx) error {
	var msg domain.CallbackMessage

	if err := ctx.Bind().Body(&msg); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	handled := c.connectionManager.HandleCallback(ctx.RequestCtx(), msg)

	return ctx.JSON(fiber.Map{"handled": handled})
}

func (c *ConnectionController) ListConnections(ctx fiber.Ctx) error {
	connections, err := c.connectionManager.GetConnections(ctx.RequestCtx(), userID(ctx))
	if err != nil {
		return errorResponse(ctx, err)
	}

	sanitized := make([]domain.Connection, 0, len(connections))
	for _, connection := range connections {
		sanitized = append(sanitized, sanitizeConnection(connection))
	}

	return ctx.JSON(fiber.Map{"connections": sanitized})
}

func (c *ConnectionController) GetConnection(ctx fiber.Ctx) error {
	connection, err := c.connectionManager.GetConnection(ctx.RequestCtx(), userID(ctx), ctx.Params("connectionID"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(sanitizeConnection(connection))
}

func (c *ConnectionController) ListConnectionsByService(ctx fiber.Ctx) error {
	connections, err := c.connectionManager.GetConnectionsByService(ctx.RequestCtx(), userID(ctx), ctx.Params("serviceID"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	sanitized := make([]domain.Connection, 0, len(connections))
	for _, connection := range connections {
		sanitized = append(sanitized, sanitizeConnection(connection))
	}

	return ctx.JSON(fiber.Map{"connections": sanitized})
}

func (c *ConnectionController) Disconnect(ctx fiber.Ctx) error {
	if err := c.connectionManager.Disconnect(ctx.RequestCtx(), userID(ctx), ctx.Params("connectionID")); err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{"success": true})
}

func (c *ConnectionController) Refresh(ctx fiber.Ctx) error {
	connection, err := c.connectionManager.RefreshConnection(ctx.RequestCtx(), userID(ctx), ctx.Params("connectionID"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(sanitizeConnection(connection))
}

func (c *ConnectionController) IsExpired(ctx fiber.Ctx) error {
	expired, err := c.connectionManager.IsConnectionExpired(ctx.RequestCtx(), userID(ctx), ctx.Params("connectionID"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{"expired": expired})
}

// ListServices returns the configured service descriptors without their
// client secrets.
func (c *ConnectionController) ListServices(ctx fiber.Ctx) error {
	services := c.connectionManager.GetServices()

	type serviceView struct {
		ID              string   `json:"id"`
		Name            string   `json:"name"`
		Icon            string   `json:"icon,omitempty"`
		Color           string   `json:"color,omitempty"`
		Scopes          []string `json:"scopes"`
		RequiresRefresh bool     `json:"requires_refresh"`
		Configured      bool     `json:"configured"`
	}

	views := make([]serviceView, 0, len(services))
	for _, service := range services {
		views = append(views, serviceView{
			ID:              service.ID,
			Name:            service.Name,
			Icon:            service.Icon,
			Color:           service.Color,
			Scopes:          service.Scopes,
			RequiresRefresh: service.RequiresRefresh,
			Configured:      service.ClientID != "",
		})
	}

	return ctx.JSON(fiber.Map{"services": views})
}

func sanitizeConnection(connection domain.Connection) domain.Connection {
	connection.RefreshToken = ""
	return connection
}

// userID resolves the caller identity. Tenancy is caller-supplied, as in
// the rest of the platform.
func userID(ctx fiber.Ctx) string {
	if id := ctx.Get("X-User-ID"); id != "" {
		return id
	}

	return "anonymous"
}
