package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/service"
	"github.com/roamio-app/roamio-backend/internal/util"
)

type UserHandler struct {
	users *service.UserService
}

func RegisterUsers(e *echo.Echo, auth *service.AuthService, users *service.UserService) {
	handler := &UserHandler{users: users}

	me := e.Group("/api/v1/me", RequireAuth(auth))
	me.GET("", handler.me)
	me.PATCH("/nickname", handler.updateNickname)
	me.PUT("/avatar", handler.updateAvatar)

	for path, kind := range map[string]domain.PlaceKind{
		"/saved/attractions": domain.PlaceKindAttraction,
		"/saved/restaurants": domain.PlaceKindRestaurant,
	} {
		kind := kind
		me.GET(path, func(c echo.Context) error { return handler.listSaved(c, kind) })
		me.POST(path+"/:place_id", func(c echo.Context) error { return handler.save(c, kind) })
		me.DELETE(path+"/:place_id", func(c echo.Context) error { return handler.unsave(c, kind) })
	}
}

// me handles GET /api/v1/me
func (h *UserHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	return c.JSON(http.StatusOK, util.Data("user", toUserResponse(user)))
}

// updateNickname handles PATCH /api/v1/me/nickname
func (h *UserHandler) updateNickname(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	updated, err := h.users.UpdateNickname(c.Request().Context(), user.ID, req.Nickname)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to update nickname"))
		}
	}
	return c.JSON(http.StatusOK, util.Data("user", toUserResponse(updated)))
}

// updateAvatar handles PUT /api/v1/me/avatar
func (h *UserHandler) updateAvatar(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	if err := c.Request().ParseMultipartForm(16 << 20); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}

	uploads, closers, err := buildPhotoUploads(c.Request().MultipartForm, "avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read avatar upload"))
	}
	defer closeAll(closers)
	if len(uploads) != 1 {
		return c.JSON(http.StatusBadRequest, util.Error("exactly one avatar file required"))
	}

	updated, err := h.users.UpdateAvatar(c.Request().Context(), user.ID, uploads[0])
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhotoValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to update avatar"))
		}
	}
	return c.JSON(http.StatusOK, util.Data("user", toUserResponse(updated)))
}

// listSaved handles GET /api/v1/me/saved/{attractions|restaurants}
func (h *UserHandler) listSaved(c echo.Context, kind domain.PlaceKind) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	items, err := h.users.ListSavedPlaces(c.Request().Context(), user.ID, kind)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list saved places"))
	}
	return c.JSON(http.StatusOK, util.Data("saved", items))
}

// save handles POST /api/v1/me/saved/{attractions|restaurants}/{place_id}
func (h *UserHandler) save(c echo.Context, kind domain.PlaceKind) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	ref, err := reviewPlaceRef(c, kind)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}

	if err := h.users.SavePlace(c.Request().Context(), user.ID, ref); err != nil {
		if errors.Is(err, service.ErrPlaceNotFound) {
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to save place"))
	}
	return c.JSON(http.StatusCreated, util.Success())
}

// unsave handles DELETE /api/v1/me/saved/{attractions|restaurants}/{place_id}
func (h *UserHandler) unsave(c echo.Context, kind domain.PlaceKind) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	ref, err := reviewPlaceRef(c, kind)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}

	if err := h.users.UnsavePlace(c.Request().Context(), user.ID, ref); err != nil {
		if errors.Is(err, service.ErrSavedPlaceNotFound) {
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to remove saved place"))
	}
	return c.JSON(http.StatusOK, util.Success())
}
