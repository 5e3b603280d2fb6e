// Package service holds the account, profile and post operations. Handlers
// call into it; it talks to storage only through the repository interfaces.
package service

import (
	"errors"
	"strings"
	"time"

	"devconnect/models"
	"devconnect/repository"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New()

// parseID treats a malformed id the same as a missing document.
func parseID(hex, notFound string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, models.NewNotFoundError(notFound)
	}
	return id, nil
}

// storeError converts a repository error into an AppError.
func storeError(err error, notFound string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError(notFound)
	}
	return models.NewInternalError(err)
}

func required(value, param, msg string) *models.FieldError {
	if strings.TrimSpace(value) == "" {
		return &models.FieldError{Msg: msg, Param: param}
	}
	return nil
}

// collect drops nil entries and returns a validation error when any remain.
func collect(checks ...*models.FieldError) error {
	var fields []models.FieldError
	for _, c := range checks {
		if c != nil {
			fields = append(fields, *c)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return models.NewValidationError(fields...)
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// parseDate accepts a plain calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
