package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"todo-core/internal/apperr"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// fail passes domain errors through and logs anything else as an internal fault.
func fail(logger *log.Logger, op string, err error, keyvals ...any) error {
	if apperr.IsDomain(err) {
		return err
	}
	logger.Error(op, append(keyvals, "err", err)...)
	return apperr.Internal(op, err)
}

// stamp returns a UTC timestamp strictly after prev at microsecond precision,
// which is the finest resolution every backend keeps.
func stamp(now, prev time.Time) time.Time {
	now = now.UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return now
}

func checkLength(field, value string, lo, hi int) error {
	n := utf8.RuneCountInString(value)
	if n < lo || n > hi {
		if lo == 0 {
			return apperr.Validation(field, fmt.Sprintf("must be at most %d characters", hi))
		}
		return apperr.Validation(field, fmt.Sprintf("must be %d to %d characters", lo, hi))
	}
	return nil
}

func checkOptionalLength(field string, value *string, hi int) error {
	if value == nil {
		return nil
	}
	return checkLength(field, *value, 0, hi)
}

func checkColor(color string) error {
	if !colorPattern.MatchString(color) {
		return apperr.Validation("color", "must look like #RRGGBB")
	}
	return nil
}

func checkEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.Validation("email", "must be a valid email address")
	}
	return nil
}
