package service

import (
	"strconv"
	"strings"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/listing"
	"github.com/kopinusa/storefront/internal/core/validation"
)

func value(v listing.Values, key string) string {
	return strings.TrimSpace(v[key])
}

func requireField(errs *validation.Errors, v listing.Values, key string) string {
	s := value(v, key)
	if s == "" {
		errs.Add(key, "is required")
	}
	return s
}

// parseFlag reads a checkbox value; anything unparsable counts as false.
func parseFlag(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}

func parseAmount(errs *validation.Errors, v listing.Values, key string, allowZero bool) float64 {
	s := requireField(errs, v, key)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	switch {
	case err != nil:
		errs.Add(key, "must be a number")
	case n < 0 || (!allowZero && n == 0):
		if allowZero {
			errs.Add(key, "must not be negative")
		} else {
			errs.Add(key, "must be greater than 0")
		}
	}
	return n
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ── Users ────────────────────────────────────────────────────────────────────

type userForm struct{}

func (userForm) Defaults() listing.Values {
	return listing.Values{"role": string(domain.RoleUser), "is_active": "true"}
}

func (userForm) FromItem(u domain.User) listing.Values {
	return listing.Values{
		"name":         u.Name,
		"email":        u.Email,
		"phone_number": u.PhoneNumber,
		"role":         string(u.Role),
		"is_active":    strconv.FormatBool(u.IsActive),
		"password":     "",
	}
}

// Validate applies the account rules. In edit mode a blank password means
// "unchanged"; a non-blank one must meet the same rules as on create.
func (userForm) Validate(mode listing.Mode, v listing.Values, items []domain.User, editingID string) *validation.Errors {
	errs := &validation.Errors{}

	requireField(errs, v, "name")

	if email := requireField(errs, v, "email"); email != "" {
		switch {
		case !validation.IsEmail(email):
			errs.Add("email", "must be a valid email")
		case validation.EmailTaken(items, email, editingID,
			func(u domain.User) string { return u.Email },
			func(u domain.User) string { return u.ID }):
			errs.Add("email", "is already registered")
		}
	}

	if phone := requireField(errs, v, "phone_number"); phone != "" && !validation.IsPhone(phone) {
		errs.Add("phone_number", "must start with +62 or 0 followed by 8-12 digits")
	}

	if _, ok := domain.ParseRole(v["role"]); !ok {
		errs.Add("role", "must be USER or ADMIN")
	}

	password := v["password"]
	switch {
	case mode == listing.ModeCreate && password == "":
		errs.Add("password", "is required")
	case password != "":
		if msg := validation.PasswordProblem(password); msg != "" {
			errs.Add("password", msg)
		}
	}

	if errs.Empty() {
		return nil
	}
	return errs
}

func (userForm) Payload(mode listing.Mode, v listing.Values) any {
	role, _ := domain.ParseRole(v["role"])
	payload := map[string]any{
		"name":         value(v, "name"),
		"email":        value(v, "email"),
		"phone_number": value(v, "phone_number"),
		"role":         string(role),
		"is_active":    parseFlag(v["is_active"]),
	}
	if pw := v["password"]; pw != "" {
		payload["password"] = pw
	}
	return payload
}

// ── Menu items ───────────────────────────────────────────────────────────────

type menuForm struct{}

func (menuForm) Defaults() listing.Values {
	return listing.Values{"is_available": "true"}
}

func (menuForm) FromItem(m domain.MenuItem) listing.Values {
	return listing.Values{
		"name":         m.Name,
		"description":  m.Description,
		"category":     m.Category,
		"price":        formatAmount(m.Price),
		"image_url":    m.ImageURL,
		"is_available": strconv.FormatBool(m.IsAvailable),
	}
}

func (menuForm) Validate(_ listing.Mode, v listing.Values, _ []domain.MenuItem, _ string) *validation.Errors {
	errs := &validation.Errors{}
	requireField(errs, v, "name")
	requireField(errs, v, "category")
	parseAmount(errs, v, "price", false)
	if errs.Empty() {
		return nil
	}
	return errs
}

func (menuForm) Payload(_ listing.Mode, v listing.Values) any {
	price, _ := strconv.ParseFloat(value(v, "price"), 64)
	return map[string]any{
		"name":         value(v, "name"),
		"description":  value(v, "description"),
		"category":     value(v, "category"),
		"price":        price,
		"image_url":    value(v, "image_url"),
		"is_available": parseFlag(v["is_available"]),
	}
}

// ── Variants ─────────────────────────────────────────────────────────────────

type variantForm struct{}

func (variantForm) Defaults() listing.Values {
	return listing.Values{"extra_price": "0", "is_available": "true"}
}

func (variantForm) FromItem(vr domain.Variant) listing.Values {
	return listing.Values{
		"name":         vr.Name,
		"type":         vr.Type,
		"extra_price":  formatAmount(vr.ExtraPrice),
		"is_available": strconv.FormatBool(vr.IsAvailable),
	}
}

func (variantForm) Validate(_ listing.Mode, v listing.Values, _ []domain.Variant, _ string) *validation.Errors {
	errs := &validation.Errors{}
	requireField(errs, v, "name")
	requireField(errs, v, "type")
	parseAmount(errs, v, "extra_price", true)
	if errs.Empty() {
		return nil
	}
	return errs
}

func (variantForm) Payload(_ listing.Mode, v listing.Values) any {
	extra, _ := strconv.ParseFloat(value(v, "extra_price"), 64)
	return map[string]any{
		"name":         value(v, "name"),
		"type":         value(v, "type"),
		"extra_price":  extra,
		"is_available": parseFlag(v["is_available"]),
	}
}

// ── Orders ───────────────────────────────────────────────────────────────────

// orderForm edits the status fields of a placed order; orders are created
// only by checkout.
type orderForm struct{}

var (
	orderStatuses   = []domain.OrderStatus{domain.OrderPending, domain.OrderProcessing, domain.OrderCompleted, domain.OrderCancelled}
	paymentStatuses = []domain.PaymentStatus{domain.PaymentUnpaid, domain.PaymentPending, domain.PaymentPaid, domain.PaymentFailed, domain.PaymentRefunded}
)

func (orderForm) Defaults() listing.Values {
	return listing.Values{"status": string(domain.OrderPending), "payment_status": string(domain.PaymentUnpaid)}
}

func (orderForm) FromItem(o domain.Order) listing.Values {
	return listing.Values{
		"status":         string(o.Status),
		"payment_status": string(o.PaymentStatus),
	}
}

func (orderForm) Validate(_ listing.Mode, v listing.Values, _ []domain.Order, _ string) *validation.Errors {
	errs := &validation.Errors{}
	if !oneOf(value(v, "status"), orderStatuses) {
		errs.Add("status", "must be one of: pending processing completed cancelled")
	}
	if !oneOf(value(v, "payment_status"), paymentStatuses) {
		errs.Add("payment_status", "must be one of: unpaid pending paid failed refunded")
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

func (orderForm) Payload(_ listing.Mode, v listing.Values) any {
	return map[string]string{
		"status":         strings.ToLower(value(v, "status")),
		"payment_status": strings.ToLower(value(v, "payment_status")),
	}
}

func oneOf[S ~string](s string, allowed []S) bool {
	for _, a := range allowed {
		if strings.EqualFold(s, string(a)) {
			return true
		}
	}
	return false
}
