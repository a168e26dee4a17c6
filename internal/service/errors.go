package service

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// lookupError maps a repository failure on a single entity to NotFound or UpstreamFailure.
func lookupError(err error, kind, id, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.NotFound(kind, id)
	}
	return appErrors.Upstream(err, op)
}

func validationError(err error, message string) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return appErrors.Validation(message, "field", fieldErrs[0].Field(), "rule", fieldErrs[0].Tag())
	}
	return appErrors.Validation(message)
}

func parseDate(raw, field string) (time.Time, error) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Validation("invalid "+field, "field", field)
	}
	return date, nil
}

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// observe records the duration of a repository call started at start.
func observe(m queryObserver, label string, start time.Time) {
	if m == nil {
		return
	}
	m.ObserveDBQuery(label, time.Since(start))
}
