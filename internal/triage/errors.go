package triage

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrCitizenNotFound = errors.New("citizen not found")
	ErrReportNotFound  = errors.New("report not found")
	ErrForbidden       = errors.New("actor may not perform this transition")
	ErrInvalidStatus   = errors.New("unknown report status")
	ErrStoreFailure    = errors.New("store failure")
)

// storeErr wraps a persistence error so callers can match ErrStoreFailure and the cause.
func storeErr(err error) error {
	if err == nil || isDomainErr(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}

func isDomainErr(err error) bool {
	return errors.Is(err, ErrCitizenNotFound) ||
		errors.Is(err, ErrReportNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrStoreFailure)
}

// parseID canonicalizes a citizen or report id. Ids are uuid columns, so anything that does
// not parse cannot name an existing row.
func parseID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
