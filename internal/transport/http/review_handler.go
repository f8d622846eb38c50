package http

import (
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

type ReviewHandler struct {
	reviews *service.ReviewService
}

type reviewPhotoResponse struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	Alt      string    `json:"alt,omitempty"`
	Ordering int       `json:"ordering"`
}

type reviewResponse struct {
	ID             uuid.UUID             `json:"id"`
	PlaceID        uuid.UUID             `json:"place_id"`
	PlaceType      domain.PlaceKind      `json:"place_type"`
	Title          string                `json:"title"`
	Description    string                `json:"description,omitempty"`
	Rating         int                   `json:"rating"`
	AuthorID       uuid.UUID             `json:"author_id"`
	AuthorNickname *string               `json:"author_nickname,omitempty"`
	AuthorAvatar   *string               `json:"author_avatar_url,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Photos         []reviewPhotoResponse `json:"photos,omitempty"`
}

func RegisterReviews(e *echo.Echo, auth *service.AuthService, reviews *service.ReviewService) {
	handler := &ReviewHandler{reviews: reviews}

	for path, kind := range map[string]domain.PlaceKind{
		"/api/v1/attractions/:place_id/reviews": domain.PlaceKindAttraction,
		"/api/v1/restaurants/:place_id/reviews": domain.PlaceKindRestaurant,
	} {
		kind := kind
		e.GET(path, func(c echo.Context) error { return handler.list(c, kind) })
		e.POST(path, func(c echo.Context) error { return handler.create(c, kind) }, RequireAuth(auth))
	}

	mutator := e.Group("/api/v1/reviews", RequireAuth(auth))
	mutator.PUT("/:id", handler.update)
	mutator.DELETE("/:id", handler.remove)
}

// list handles GET /api/v1/{attractions|restaurants}/{place_id}/reviews
func (h *ReviewHandler) list(c echo.Context, kind domain.PlaceKind) error {
	ref, err := reviewPlaceRef(c, kind)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}

	filter := domain.ReviewListFilter{}
	if limitStr := strings.TrimSpace(c.QueryParam("limit")); limitStr != "" {
		limit, convErr := strconv.Atoi(limitStr)
		if convErr != nil {
			return c.JSON(http.StatusBadRequest, util.Error("limit must be an integer"))
		}
		filter.Limit = limit
	}
	if offsetStr := strings.TrimSpace(c.QueryParam("offset")); offsetStr != "" {
		offset, convErr := strconv.Atoi(offsetStr)
		if convErr != nil {
			return c.JSON(http.StatusBadRequest, util.Error("offset must be an integer"))
		}
		filter.Offset = offset
	}

	reviews, err := h.reviews.ListPlaceReviews(c.Request().Context(), ref, filter)
	if err != nil {
		if errors.Is(err, service.ErrPlaceNotFound) {
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list reviews"))
	}

	out := make([]reviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, toReviewResponse(review))
	}
	return c.JSON(http.StatusOK, util.Data("reviews", out))
}

// create handles POST /api/v1/{attractions|restaurants}/{place_id}/reviews
func (h *ReviewHandler) create(c echo.Context, kind domain.PlaceKind) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	ref, err := reviewPlaceRef(c, kind)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}
	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}

	ratingStr := strings.TrimSpace(c.FormValue("rating"))
	if ratingStr == "" {
		return c.JSON(http.StatusBadRequest, util.Error("rating required"))
	}
	rating, err := strconv.Atoi(ratingStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("rating must be an integer"))
	}

	uploads, closers, err := buildPhotoUploads(c.Request().MultipartForm, "photos")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read photo uploads"))
	}
	defer closeAll(closers)

	review, err := h.reviews.CreateReview(c.Request().Context(), user.ID, ref, service.ReviewCreateInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Rating:      rating,
		Photos:      uploads,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewValidation), errors.Is(err, service.ErrPhotoValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrPlaceNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to create review"))
		}
	}
	return c.JSON(http.StatusCreated, toReviewResponse(*review))
}

// update handles PUT /api/v1/reviews/{id}
func (h *ReviewHandler) update(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid review id"))
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Rating      *int    `json:"rating"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	review, err := h.reviews.UpdateReview(c.Request().Context(), reviewID, user.ID, service.ReviewUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Rating:      req.Rating,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		case errors.Is(err, service.ErrReviewForbidden):
			return c.JSON(http.StatusForbidden, util.Error(err.Error()))
		case errors.Is(err, service.ErrReviewValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to update review"))
		}
	}
	return c.JSON(http.StatusOK, toReviewResponse(*review))
}

// remove handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) remove(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid review id"))
	}

	if err := h.reviews.DeleteReview(c.Request().Context(), reviewID, user.ID, user.IsAdmin()); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		case errors.Is(err, service.ErrReviewForbidden):
			return c.JSON(http.StatusForbidden, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to delete review"))
		}
	}
	return c.JSON(http.StatusOK, util.Success())
}

func reviewPlaceRef(c echo.Context, kind domain.PlaceKind) (domain.PlaceRef, error) {
	id, err := uuid.Parse(c.Param("place_id"))
	if err != nil {
		return domain.PlaceRef{}, err
	}
	return domain.PlaceRef{Kind: kind, ID: id}, nil
}

func toReviewResponse(review domain.Review) reviewResponse {
	photos := make([]reviewPhotoResponse, 0, len(review.Photos))
	for _, photo := range review.Photos {
		photos = append(photos, reviewPhotoResponse{
			ID:       photo.ID,
			URL:      photo.ImageURL,
			Alt:      photo.ImageAlt,
			Ordering: photo.Ordering,
		})
	}
	return reviewResponse{
		ID:             review.ID,
		PlaceID:        review.PlaceID,
		PlaceType:      review.PlaceType,
		Title:          review.Title,
		Description:    review.Description,
		Rating:         review.Rating,
		AuthorID:       review.UserID,
		AuthorNickname: review.AuthorNickname,
		AuthorAvatar:   review.AuthorAvatar,
		CreatedAt:      review.CreatedAt,
		UpdatedAt:      review.UpdatedAt,
		Photos:         photos,
	}
}
