package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kopinusa/storefront/internal/core/listing"
)

// bind decodes the request into req and runs the echo validator on it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// bindValues decodes a JSON object of form fields. Numbers and booleans are
// accepted and turned into their form text.
func bindValues(c echo.Context) (listing.Values, error) {
	var raw map[string]any
	if err := c.Bind(&raw); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	values := make(listing.Values, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			values[k] = ""
		case string:
			values[k] = t
		case float64:
			values[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			values[k] = strconv.FormatBool(t)
		default:
			return nil, echo.NewHTTPError(http.StatusBadRequest, "field "+k+" must be a string, number or boolean")
		}
	}
	return values, nil
}
