package graphql

import (
	"context"
	"strings"

	"github.com/graphql-go/handler"
	"github.com/labstack/echo/v4"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/service"
)

type contextKey string

const userContextKey contextKey = "graphql.user"

// UserFromContext extracts the authenticated user placed there by the
// /graphql mount. Resolvers that mutate require it; queries work without.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok && user != nil
}

// Register mounts the GraphQL endpoint at /graphql with GraphiQL enabled.
// A bearer token is honored when present but never required, so public
// queries stay public.
func Register(e *echo.Echo, auth *service.AuthService, resolvers *Resolvers) error {
	schema, err := NewSchema(resolvers)
	if err != nil {
		return err
	}

	h := handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: true,
	})

	e.Any("/graphql", func(c echo.Context) error {
		req := c.Request()
		if user := authenticateOptional(c, auth); user != nil {
			req = req.WithContext(context.WithValue(req.Context(), userContextKey, user))
		}
		h.ServeHTTP(c.Response(), req)
		return nil
	})
	return nil
}

func authenticateOptional(c echo.Context, auth *service.AuthService) *domain.User {
	header := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil
	}
	user, err := auth.Authenticate(c.Request().Context(), strings.TrimSpace(parts[1]))
	if err != nil {
		return nil
	}
	return user
}
