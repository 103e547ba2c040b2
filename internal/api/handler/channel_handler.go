package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/tubehub/api/internal/core/ports"
)

type ChannelHandler struct {
	accountService ports.AccountService
}

func NewChannelHandler(accountService ports.AccountService) *ChannelHandler {
	return &ChannelHandler{accountService: accountService}
}

// GetChannel returns the public profile of a channel.
//
// @Summary      Get channel
// @Tags         channels
// @Produce      json
// @Param        username  path      string  true  "Channel username"
// @Success      200       {object}  ApiResponse
// @Failure      404       {object}  ErrorResponse
// @Router       /channels/{username} [get]
func (h *ChannelHandler) GetChannel(c echo.Context) error {
	channel, err := h.accountService.GetChannel(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, channel, "Channel fetched successfully")
}

// UpdateChannel edits the caller's channel description, tags and links.
//
// @Summary      Update channel
// @Tags         channels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateChannelRequest  true  "Fields to change"
// @Success      200   {object}  ApiResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /channels/update [patch]
func (h *ChannelHandler) UpdateChannel(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	var req updateChannelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.accountService.UpdateChannel(c.Request().Context(), user.ID, req.toUpdate())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, updated, "Channel updated successfully")
}

// UpdateNotificationSettings toggles the caller's notification preferences.
//
// @Summary      Update notification settings
// @Tags         channels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      notificationSettingsRequest  true  "Flags to change"
// @Success      200   {object}  ApiResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /channels/notification-settings [patch]
func (h *ChannelHandler) UpdateNotificationSettings(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	var req notificationSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	settings, err := h.accountService.UpdateNotificationSettings(c.Request().Context(), user.ID, req.toUpdate())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, settings, "Notification settings updated successfully")
}

// ShareLink builds a shareable URL for an existing channel.
//
// @Summary      Channel share link
// @Tags         channels
// @Produce      json
// @Param        username  path      string  true  "Channel username"
// @Success      200       {object}  ApiResponse
// @Failure      404       {object}  ErrorResponse
// @Router       /channels/{username}/share [get]
func (h *ChannelHandler) ShareLink(c echo.Context) error {
	channel, err := h.accountService.GetChannel(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}

	link := url.URL{
		Scheme: c.Scheme(),
		Host:   c.Request().Host,
		Path:   "/api/v1/channels/" + channel.Username,
	}
	return respond(c, http.StatusOK, shareLinkResponse{ShareLink: link.String()}, "Channel share generated successfully")
}
