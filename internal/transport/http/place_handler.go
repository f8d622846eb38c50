package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/service"
	"github.com/roamio-app/roamio-backend/internal/util"
)

type PlaceHandler struct {
	kind   domain.PlaceKind
	places *service.PlaceService
}

// RegisterPlaces mounts the attraction and restaurant resources. Both share
// one handler parameterized by kind; the URL decides which table is hit.
func RegisterPlaces(e *echo.Echo, auth *service.AuthService, places *service.PlaceService) {
	for path, kind := range map[string]domain.PlaceKind{
		"/api/v1/attractions": domain.PlaceKindAttraction,
		"/api/v1/restaurants": domain.PlaceKindRestaurant,
	} {
		handler := &PlaceHandler{kind: kind, places: places}

		public := e.Group(path)
		public.GET("", handler.list)
		public.GET("/search", handler.search)
		public.GET("/:id", handler.get)

		protected := e.Group(path, RequireAuth(auth))
		protected.POST("", handler.create)
		protected.PUT("/:id", handler.update)
		protected.DELETE("/:id", handler.remove)
		protected.POST("/:id/photos", handler.attachPhotos)
	}
}

// list handles GET /api/v1/{attractions|restaurants}
func (h *PlaceHandler) list(c echo.Context) error {
	opts, err := parsePlaceListOptions(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	result, err := h.places.List(c.Request().Context(), h.kind, opts)
	if err != nil {
		if errors.Is(err, service.ErrPlaceValidation) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list places"))
	}
	return c.JSON(http.StatusOK, result)
}

// search handles GET /api/v1/{attractions|restaurants}/search
func (h *PlaceHandler) search(c echo.Context) error {
	keyword := c.QueryParam("q")

	origin, err := parseOrigin(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	maxDistance, err := parseFloatParam(c, "max_distance")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	places, err := h.places.Search(c.Request().Context(), h.kind, keyword, origin, maxDistance)
	if err != nil {
		if errors.Is(err, service.ErrPlaceValidation) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to search places"))
	}
	return c.JSON(http.StatusOK, util.Data("data", places))
}

// get handles GET /api/v1/{attractions|restaurants}/{id}
func (h *PlaceHandler) get(c echo.Context) error {
	ref, err := h.refFromParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}

	place, err := h.places.Get(c.Request().Context(), ref)
	if err != nil {
		if errors.Is(err, service.ErrPlaceNotFound) {
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load place"))
	}
	return c.JSON(http.StatusOK, place)
}

// create handles POST /api/v1/{attractions|restaurants}
func (h *PlaceHandler) create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}

	input, err := parsePlaceCreateForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	uploads, closers, err := buildPhotoUploads(c.Request().MultipartForm, "photos")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read photo uploads"))
	}
	defer closeAll(closers)
	input.Photos = uploads

	place, err := h.places.Create(c.Request().Context(), h.kind, user.ID, *input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlaceValidation), errors.Is(err, service.ErrPhotoValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to create place"))
		}
	}
	return c.JSON(http.StatusCreated, place)
}

// update handles PUT /api/v1/{attractions|restaurants}/{id}
func (h *PlaceHandler) update(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	ref, err := h.refFromParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}

	var req placeUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	place, err := h.places.Update(c.Request().Context(), ref, user.ID, user.IsAdmin(), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlaceNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		case errors.Is(err, service.ErrPlaceForbidden):
			return c.JSON(http.StatusForbidden, util.Error(err.Error()))
		case errors.Is(err, service.ErrPlaceValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to update place"))
		}
	}
	return c.JSON(http.StatusOK, place)
}

// remove handles DELETE /api/v1/{attractions|restaurants}/{id}
func (h *PlaceHandler) remove(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	ref, err := h.refFromParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}

	if err := h.places.Delete(c.Request().Context(), ref, user.ID, user.IsAdmin()); err != nil {
		switch {
		case errors.Is(err, service.ErrPlaceNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		case errors.Is(err, service.ErrPlaceForbidden):
			return c.JSON(http.StatusForbidden, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to delete place"))
		}
	}
	return c.JSON(http.StatusOK, util.Success())
}

// attachPhotos handles POST /api/v1/{attractions|restaurants}/{id}/photos
func (h *PlaceHandler) attachPhotos(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	ref, err := h.refFromParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}
	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}

	uploads, closers, err := buildPhotoUploads(c.Request().MultipartForm, "photos")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read photo uploads"))
	}
	defer closeAll(closers)
	if len(uploads) == 0 {
		return c.JSON(http.StatusBadRequest, util.Error("no photos provided"))
	}

	photos, err := h.places.AttachPhotos(c.Request().Context(), ref, user.ID, user.IsAdmin(), uploads)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlaceNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		case errors.Is(err, service.ErrPlaceForbidden):
			return c.JSON(http.StatusForbidden, util.Error(err.Error()))
		case errors.Is(err, service.ErrPhotoValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to attach photos"))
		}
	}
	return c.JSON(http.StatusCreated, util.Data("photos", photos))
}

func (h *PlaceHandler) refFromParam(c echo.Context) (domain.PlaceRef, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domain.PlaceRef{}, err
	}
	return domain.PlaceRef{Kind: h.kind, ID: id}, nil
}

type placeUpdateRequest struct {
	Name         *string           `json:"name"`
	Description  *string           `json:"description"`
	Website      *string           `json:"website"`
	ContactEmail *string           `json:"contact_email"`
	ContactPhone *string           `json:"contact_phone"`
	OpenHours    *domain.OpenHours `json:"open_hours"`
	Address      *domain.Address   `json:"address"`
	Tags         []string          `json:"tags"`
	Cost         *int              `json:"cost"`
}

func (r placeUpdateRequest) toInput() service.PlaceUpdateInput {
	return service.PlaceUpdateInput{
		Name:         r.Name,
		Description:  r.Description,
		Website:      r.Website,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		OpenHours:    r.OpenHours,
		Address:      r.Address,
		Tags:         r.Tags,
		Cost:         r.Cost,
	}
}

func parsePlaceCreateForm(c echo.Context) (*service.PlaceCreateInput, error) {
	input := &service.PlaceCreateInput{
		Name:         c.FormValue("name"),
		Description:  optionalString(c.FormValue("description")),
		Website:      optionalString(c.FormValue("website")),
		ContactEmail: optionalString(c.FormValue("contact_email")),
		ContactPhone: optionalString(c.FormValue("contact_phone")),
		Tags:         splitCSV(c.FormValue("tags")),
	}

	if costStr := strings.TrimSpace(c.FormValue("cost")); costStr != "" {
		cost, err := strconv.Atoi(costStr)
		if err != nil {
			return nil, errors.New("cost must be an integer")
		}
		input.Cost = cost
	}
	if raw := strings.TrimSpace(c.FormValue("open_hours")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.OpenHours); err != nil {
			return nil, errors.New("open_hours must be a JSON schedule")
		}
	}
	if raw := strings.TrimSpace(c.FormValue("address")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Address); err != nil {
			return nil, errors.New("address must be a JSON object")
		}
	}
	return input, nil
}

func parsePlaceListOptions(c echo.Context) (domain.PlaceListOptions, error) {
	opts := domain.PlaceListOptions{}

	sort, err := domain.ParsePlaceSort(c.QueryParam("sort"))
	if err != nil {
		return opts, err
	}
	opts.Sort = sort

	if limitStr := strings.TrimSpace(c.QueryParam("limit")); limitStr != "" {
		limit, convErr := strconv.Atoi(limitStr)
		if convErr != nil {
			return opts, errors.New("limit must be an integer")
		}
		opts.Limit = limit
	}
	if skipStr := strings.TrimSpace(c.QueryParam("skip")); skipStr != "" {
		skip, convErr := strconv.Atoi(skipStr)
		if convErr != nil {
			return opts, errors.New("skip must be an integer")
		}
		opts.Skip = skip
	}

	opts.Filter.Tags = splitCSV(c.QueryParam("tags"))

	if costStr := strings.TrimSpace(c.QueryParam("max_cost")); costStr != "" {
		cost, convErr := strconv.Atoi(costStr)
		if convErr != nil {
			return opts, errors.New("max_cost must be an integer")
		}
		opts.Filter.MaxCost = &cost
	}
	if ratingStr := strings.TrimSpace(c.QueryParam("min_rating")); ratingStr != "" {
		rating, convErr := strconv.ParseFloat(ratingStr, 64)
		if convErr != nil {
			return opts, errors.New("min_rating must be a number")
		}
		opts.Filter.MinRating = &rating
	}

	if openNow := strings.TrimSpace(c.QueryParam("open_now")); openNow == "true" || openNow == "1" {
		opts.Filter.IsOpenNow = true
		opts.Filter.CurrentTime = time.Now()
		if atStr := strings.TrimSpace(c.QueryParam("current_time")); atStr != "" {
			at, convErr := time.Parse(time.RFC3339, atStr)
			if convErr != nil {
				return opts, errors.New("current_time must be an RFC3339 timestamp")
			}
			opts.Filter.CurrentTime = at
		}
	}

	origin, err := parseOrigin(c)
	if err != nil {
		return opts, err
	}
	opts.Filter.Origin = origin
	maxDistance, err := parseFloatParam(c, "max_distance")
	if err != nil {
		return opts, err
	}
	opts.Filter.MaxDistance = maxDistance

	return opts, nil
}

// parseOrigin reads the lat/lng query pair. Both or neither must be present.
func parseOrigin(c echo.Context) (*domain.GeoPoint, error) {
	latStr := strings.TrimSpace(c.QueryParam("lat"))
	lngStr := strings.TrimSpace(c.QueryParam("lng"))
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, errors.New("lat and lng must be provided together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, errors.New("lat must be a latitude in [-90,90]")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, errors.New("lng must be a longitude in [-180,180]")
	}
	return &domain.GeoPoint{Latitude: lat, Longitude: lng}, nil
}

func parseFloatParam(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New(name + " must be a number")
	}
	return &value, nil
}
