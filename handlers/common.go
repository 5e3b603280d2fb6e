package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"devconnect/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report binding failures under the JSON field name.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// respondError writes err as the API error body. It is the only place an
// error becomes a status code.
func respondError(c *gin.Context, err error) {
	code := models.CodeOf(err)
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}

	switch code {
	case models.CodeValidation:
		fields := appErr.Fields
		if len(fields) == 0 {
			fields = []models.FieldError{{Msg: appErr.Message}}
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": fields})
	case models.CodeUserExists, models.CodeInvalidCredentials:
		c.JSON(http.StatusBadRequest, gin.H{"errors": []models.FieldError{{Msg: appErr.Message}}})
	case models.CodeAlreadyLiked, models.CodeNotLiked:
		c.JSON(http.StatusBadRequest, gin.H{"msg": appErr.Message})
	case models.CodeForbidden:
		c.JSON(http.StatusUnauthorized, gin.H{"msg": appErr.Message})
	case models.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"msg": appErr.Message})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
	}
}

// bindJSON decodes the body into req and writes a 400 on failure. An empty
// body leaves req zeroed so the service reports the missing fields.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewValidationError(models.FieldError{Msg: "Invalid request body"})
	}
	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{Msg: fieldMessage(fe), Param: fe.Field()})
	}
	return models.NewValidationError(fields...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "url":
		return fe.Field() + " must be a valid URL"
	default:
		return fe.Field() + " is invalid"
	}
}
