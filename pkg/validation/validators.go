// Package validation provides format checks for Graph API identifiers and
// request fields, so malformed input fails before a network call.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/metapub/go-meta-api-wrapper/pkg/types"
)

var (
	// graphIDRegex matches numeric Graph object ids (pages, medias,
	// containers, comments). Compound ids like "pageid_postid" also appear
	// on published page posts.
	graphIDRegex = regexp.MustCompile(`^[0-9]+(_[0-9]+)?$`)

	// usernameRegex matches Instagram usernames (1-30 chars, alphanumeric
	// plus period and underscore).
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)

	// metricRegex matches insight metric names such as "reach" or
	// "days_28" aggregations.
	metricRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// IsValidGraphID checks if a string is a well-formed Graph object id.
func IsValidGraphID(s string) bool {
	return s != "" && graphIDRegex.MatchString(s)
}

// IsValidUsername checks if a string is a well-formed Instagram username.
func IsValidUsername(s string) bool {
	return usernameRegex.MatchString(s)
}

// IsValidMetric checks if a string is a well-formed insight metric name.
func IsValidMetric(s string) bool {
	return metricRegex.MatchString(s)
}

// ValidateUserTag checks a single photo tag: the username must be present and
// well formed, and the coordinates must fall inside the unit square.
func ValidateUserTag(tag types.UserTag) error {
	var errs []error

	if tag.Username == "" {
		errs = append(errs, fmt.Errorf("Username is required"))
	} else if !IsValidUsername(tag.Username) {
		errs = append(errs, fmt.Errorf("Username has invalid format: %s", tag.Username))
	}

	if tag.X < 0 || tag.X > 1 {
		errs = append(errs, fmt.Errorf("X must be between 0 and 1, got %f", tag.X))
	}
	if tag.Y < 0 || tag.Y > 1 {
		errs = append(errs, fmt.Errorf("Y must be between 0 and 1, got %f", tag.Y))
	}

	if len(errs) > 0 {
		return fmt.Errorf("user tag validation failed: %w", joinValidationErrors(errs))
	}
	return nil
}

// ValidateUserTags validates every tag in a photo tag list.
func ValidateUserTags(tags []types.UserTag) error {
	var errs []error
	for i, tag := range tags {
		if err := ValidateUserTag(tag); err != nil {
			errs = append(errs, fmt.Errorf("tag at index %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return joinValidationErrors(errs)
	}
	return nil
}

// ValidateMetrics validates every metric name in an insights query.
func ValidateMetrics(metrics []string) error {
	var errs []error
	for _, m := range metrics {
		if !IsValidMetric(m) {
			errs = append(errs, fmt.Errorf("metric has invalid format: %q", m))
		}
	}
	if len(errs) > 0 {
		return joinValidationErrors(errs)
	}
	return nil
}

// joinValidationErrors combines multiple errors into a single error message
func joinValidationErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
