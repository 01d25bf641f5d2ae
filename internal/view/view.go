// Package view builds the HTML template set the handlers render through gin.
package view

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"time"

	"github.com/eaglebank/ledger-service/web"
	"github.com/shopspring/decimal"
)

const (
	DateLayout      = "2006-01-02"
	DateInputLayout = "2006-01-02T15:04"
)

func Funcs() template.FuncMap {
	return template.FuncMap{
		"money":     Money,
		"date":      Date,
		"dateInput": DateInput,
	}
}

// Load parses every embedded template; each is addressed by its file name,
// e.g. "transaction.tmpl".
func Load() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(Funcs()).ParseFS(web.Templates, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// Money renders an amount with exactly two decimals.
func Money(amount float64) string {
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return strconv.FormatFloat(amount, 'f', 2, 64)
	}
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// DateInput formats t for a datetime-local input.
func DateInput(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateInputLayout)
}
