package http

import (
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/roamio-app/roamio-backend/internal/util"
)

// RegisterSwagger serves the Swagger UI under /swagger. The spec is kept as
// YAML on disk and converted to JSON once, on first request.
func RegisterSwagger(e *echo.Echo) {
	var (
		once     sync.Once
		jsonSpec []byte
		loadErr  error
	)

	e.GET("/swagger/doc.json", func(c echo.Context) error {
		once.Do(func() {
			data, err := os.ReadFile(filepath.Join("docs", "swagger.yaml"))
			if err != nil {
				loadErr = err
				return
			}
			jsonSpec, loadErr = yaml.YAMLToJSON(data)
		})
		if loadErr != nil {
			c.Logger().Errorf("load swagger spec: %v", loadErr)
			return c.JSON(http.StatusInternalServerError, util.Error("unable to load swagger spec"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, jsonSpec)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
