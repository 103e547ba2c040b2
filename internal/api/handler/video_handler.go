package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tubehub/api/internal/api/middleware"
	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
)

type VideoHandler struct {
	videoService ports.VideoService
}

func NewVideoHandler(videoService ports.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// Publish stores a new video for the caller.
//
// @Summary      Publish video
// @Tags         videos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      publishVideoRequest  true  "Video metadata and media references"
// @Success      201   {object}  ApiResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /videos [post]
func (h *VideoHandler) Publish(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	var req publishVideoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	video, err := h.videoService.Publish(c.Request().Context(), user.ID, req.toInput())
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, video, "Video published successfully")
}

// List returns a page of published videos.
//
// @Summary      List videos
// @Tags         videos
// @Produce      json
// @Param        page      query     int     false  "Page number (1-based)"
// @Param        limit     query     int     false  "Page size, at most 100"
// @Param        query     query     string  false  "Search in title, description and tags"
// @Param        sortBy    query     string  false  "Sort field"
// @Param        sortType  query     string  false  "asc or desc"
// @Param        userId    query     string  false  "Owner id"
// @Success      200       {object}  ApiResponse
// @Failure      400       {object}  ErrorResponse
// @Router       /videos [get]
func (h *VideoHandler) List(c echo.Context) error {
	filter, err := listFilter(c)
	if err != nil {
		return err
	}

	page, err := h.videoService.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, videoListResponse{
		Videos:       page.Videos,
		TotalResults: page.Total,
		CurrentPage:  page.CurrentPage,
		TotalPages:   page.TotalPages,
	}, "Videos fetched successfully")
}

// Watch returns a video, counts the view and records it in the caller's
// watch history.
//
// @Summary      Get video
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        videoId  path      string  true  "Video id"
// @Success      200      {object}  ApiResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /videos/{videoId} [get]
func (h *VideoHandler) Watch(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	video, err := h.videoService.Watch(c.Request().Context(), c.Param("videoId"), user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, video, "Video fetched successfully")
}

// Update edits the caller's own video.
//
// @Summary      Update video
// @Tags         videos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        videoId  path      string              true  "Video id"
// @Param        body     body      updateVideoRequest  true  "Fields to change"
// @Success      200      {object}  ApiResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /videos/{videoId} [patch]
func (h *VideoHandler) Update(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	var req updateVideoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	video, err := h.videoService.Update(c.Request().Context(), c.Param("videoId"), user.ID, req.toUpdate())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, video, "Video updated successfully")
}

// Delete removes the caller's own video.
//
// @Summary      Delete video
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        videoId  path      string  true  "Video id"
// @Success      200      {object}  ApiResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /videos/{videoId} [delete]
func (h *VideoHandler) Delete(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	if err := h.videoService.Delete(c.Request().Context(), c.Param("videoId"), user.ID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Video deleted successfully")
}

// TogglePublish flips the published flag of the caller's own video.
//
// @Summary      Toggle publish status
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        videoId  path      string  true  "Video id"
// @Success      200      {object}  ApiResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /videos/toggle-publish/{videoId} [patch]
func (h *VideoHandler) TogglePublish(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}

	video, err := h.videoService.TogglePublish(c.Request().Context(), c.Param("videoId"), user.ID)
	if err != nil {
		return err
	}

	message := "Video unpublished successfully"
	if video.IsPublished {
		message = "Video published successfully"
	}
	return respond(c, http.StatusOK, video, message)
}

// Share returns share links for a published video.
//
// @Summary      Video share links
// @Tags         videos
// @Produce      json
// @Param        videoId   path      string  true   "Video id"
// @Param        platform  query     string  false  "facebook, twitter, whatsapp, linkedin, telegram, reddit or general"
// @Success      200       {object}  ApiResponse
// @Failure      404       {object}  ErrorResponse
// @Router       /videos/{videoId}/share [get]
func (h *VideoHandler) Share(c echo.Context) error {
	baseURL := c.Scheme() + "://" + c.Request().Host
	share, err := h.videoService.Share(c.Request().Context(), c.Param("videoId"), baseURL, c.QueryParam("platform"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, share, "Video share links generated successfully")
}

// ChannelVideos lists a channel's videos. The owner also sees drafts.
//
// @Summary      Channel videos
// @Tags         channels
// @Produce      json
// @Param        username  path      string  true   "Channel username"
// @Param        page      query     int     false  "Page number (1-based)"
// @Param        limit     query     int     false  "Page size, at most 100"
// @Param        sortBy    query     string  false  "Sort field"
// @Param        sortType  query     string  false  "asc or desc"
// @Success      200       {object}  ApiResponse
// @Failure      404       {object}  ErrorResponse
// @Router       /channels/{username}/videos [get]
func (h *VideoHandler) ChannelVideos(c echo.Context) error {
	filter, err := listFilter(c)
	if err != nil {
		return err
	}

	page, err := h.videoService.ChannelVideos(c.Request().Context(), c.Param("username"), middleware.SubjectID(c), filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, channelVideosResponse{
		Videos:      page.Videos,
		TotalVideos: page.Total,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
	}, "Channel videos fetched successfully")
}

func listFilter(c echo.Context) (ports.ListVideosFilter, error) {
	var (
		filter   ports.ListVideosFilter
		sortType string
	)
	err := echo.QueryParamsBinder(c).
		Int("page", &filter.Page).
		Int("limit", &filter.Limit).
		String("query", &filter.Query).
		String("sortBy", &filter.SortBy).
		String("sortType", &sortType).
		String("userId", &filter.OwnerID).
		BindError()
	if err != nil {
		return filter, domain.Validation("Invalid query parameters")
	}
	filter.Ascending = strings.EqualFold(sortType, "asc")
	return filter, nil
}
