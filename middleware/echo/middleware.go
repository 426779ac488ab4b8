package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	forman "github.com/formanlab/forman"
	"github.com/formanlab/forman/middleware"
)

// ValidateJSON checks the request body against fields, stores the Result in
// the request context on success, and replies 400 for malformed JSON or 422
// when validation reports issues.
func ValidateJSON(fields []forman.Field, opt forman.ValidateOpt) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			doc, err := middleware.DecodeBody(c.Request().Body)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			}
			res, err := forman.Validate(c.Request().Context(), doc, fields, opt)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
			}
			if !res.Valid {
				return c.JSON(http.StatusUnprocessableEntity, middleware.ErrorPayload(res.Errors))
			}
			ctx := middleware.ContextWithResult(c.Request().Context(), res)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetResult fetches the validation Result from echo.Context.
func GetResult(c echo.Context) (*forman.Result, bool) {
	return middleware.ResultFromContext(c.Request().Context())
}
