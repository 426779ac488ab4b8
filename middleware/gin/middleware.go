package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	forman "github.com/formanlab/forman"
	"github.com/formanlab/forman/middleware"
)

// ValidateJSON checks the request body against fields, stores the Result in
// the request context, and aborts with 400 for malformed JSON or 422 when
// validation reports issues.
func ValidateJSON(fields []forman.Field, opt forman.ValidateOpt) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := middleware.DecodeBody(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		res, err := forman.Validate(c.Request.Context(), doc, fields, opt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		if !res.Valid {
			c.JSON(http.StatusUnprocessableEntity, middleware.ErrorPayload(res.Errors))
			c.Abort()
			return
		}
		// keep the result reachable from downstream handlers
		c.Request = c.Request.WithContext(middleware.ContextWithResult(c.Request.Context(), res))
		c.Next()
	}
}

// GetResult fetches the validation Result from gin.Context.
func GetResult(c *gin.Context) (*forman.Result, bool) {
	return middleware.ResultFromContext(c.Request.Context())
}
