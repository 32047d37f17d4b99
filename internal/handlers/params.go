package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/errors"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/services"
)

const dateLayout = "2006-01-02"

// queryError maps a service error onto the HTTP error taxonomy. Validation
// failures become 400s; anything else is a server fault.
func queryError(err error) *errors.AppError {
	if services.IsValidationError(err) {
		return errors.BadRequestWrap(err, err.Error())
	}
	return errors.InternalWrap(err, "query failed")
}

// dateParam parses an optional YYYY-MM-DD query parameter. Absent means an
// open bound.
func dateParam(r *http.Request, name string) (*time.Time, *errors.AppError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, errors.ValidationWrap(err, fmt.Sprintf("parameter %q must be a YYYY-MM-DD date", name))
	}
	return &t, nil
}

func intParam(r *http.Request, name string, defaultValue int) (int, *errors.AppError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.ValidationWrap(err, fmt.Sprintf("parameter %q must be an integer", name))
	}
	return v, nil
}

// yearParam resolves the year parameter, defaulting to the most recent year
// in the dataset.
func yearParam(r *http.Request, analytics *services.Analytics) (int, *errors.AppError) {
	raw := r.URL.Query().Get("year")
	if raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return 0, errors.ValidationWrap(err, "parameter \"year\" must be an integer")
		}
		return year, nil
	}

	years := analytics.Years()
	if len(years) == 0 {
		return 0, errors.ServiceUnavailable("no sales data loaded")
	}
	return years[len(years)-1], nil
}

// listParam collects a repeatable query parameter. Values may also be
// comma-separated inside a single occurrence. The bool reports whether the
// parameter appeared at all, so callers can tell "absent" from "empty".
func listParam(r *http.Request, name string) ([]string, bool) {
	q := r.URL.Query()
	if !q.Has(name) {
		return nil, false
	}

	var out []string
	for _, v := range q[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out, true
}
