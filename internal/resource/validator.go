package resource

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// ValidationFailedCode is the status returned for a rejected batch.
	// Existing admin clients key off 500 here, so it is not a 4xx.
	ValidationFailedCode = http.StatusInternalServerError

	batchAcceptedMessage = "Requested successfully!"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RawRecord is one submission of a bulk create, as decoded from JSON.
// Values may be strings or JSON numbers; null counts as absent.
type RawRecord map[string]any

// Get returns the value stored under key as a string and whether it is present.
func (r RawRecord) Get(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprint(t), true
	}
}

// BatchResult is the outcome of validating (and possibly storing) a batch.
type BatchResult struct {
	Status  string
	Code    int
	Message string
}

// OK reports whether the batch was accepted.
func (r BatchResult) OK() bool {
	return r.Status == StatusSuccess
}

func batchAccepted() BatchResult {
	return BatchResult{Status: StatusSuccess, Code: http.StatusOK, Message: batchAcceptedMessage}
}

func batchRejected(format string, args ...any) BatchResult {
	return BatchResult{Status: StatusError, Code: ValidationFailedCode, Message: fmt.Sprintf(format, args...)}
}

// ValidateBatch checks every record in order and stops at the first rule a
// record breaks. Nothing is written by this function; callers persist the
// batch only when the result is OK.
func ValidateBatch(records []RawRecord) BatchResult {
	for _, rec := range records {
		if res, ok := validateRecord(rec); !ok {
			return res
		}
	}
	return batchAccepted()
}

func validateRecord(rec RawRecord) (BatchResult, bool) {
	// 1. resource
	// Checked in stored form: "https://www." normalizes to nothing.
	if v, ok := rec.Get("resource"); !ok || NormalizeResourceURL(v) == "" {
		return batchRejected("resource field is required"), false
	}

	// 2-3. main_category
	mainCategory, ok := rec.Get("main_category")
	if !ok || mainCategory == "" {
		return batchRejected("main_category field is required"), false
	}
	if !IsValidCategory(mainCategory) {
		return batchRejected("main_category %s is not valid", mainCategory), false
	}

	// 4. other_categories
	if other, ok := rec.Get("other_categories"); ok && other != "" {
		if bad, valid := ValidCategories(other); !valid {
			return batchRejected("other_categories %s is not valid", bad), false
		}
	}

	// 5. email
	email, _ := rec.Get("email")
	if !IsValidEmail(email) {
		return batchRejected("email %s is missing or not valid", email), false
	}

	// 6. price
	price, ok := rec.Get("price")
	if !ok || !IsNumeric(price) {
		return batchRejected("price %s is missing or not valid", price), false
	}

	// 7-9. optional prices
	for _, key := range []string{"casino_price", "cbd_price", "adult_price"} {
		if v, ok := rec.Get(key); ok && !IsNumeric(v) {
			return batchRejected("%s %s is not valid", key, v), false
		}
	}

	return BatchResult{}, true
}

// IsValidEmail reports whether s is a syntactically valid email address.
func IsValidEmail(s string) bool {
	if s == "" {
		return false
	}
	return validate.Var(s, "email") == nil
}

// IsNumeric reports whether s holds a finite decimal number.
// Surrounding spaces are ignored; hex notation, NaN and Inf are rejected.
func IsNumeric(s string) bool {
	_, ok := parseDecimal(s)
	return ok
}

func parseDecimal(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" || strings.ContainsAny(t, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseInteger(s string) (int64, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(t, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeResourceURL reduces a site URL to its host part as stored in the
// catalog: surrounding spaces, the http(s) scheme and a leading "www." are removed.
func NormalizeResourceURL(url string) string {
	s := strings.TrimSpace(url)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	return s
}
