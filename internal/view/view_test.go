package view

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/eaglebank/ledger-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "4.50", Money(4.5))
	assert.Equal(t, "1000.00", Money(1000))
	assert.Equal(t, "-12.35", Money(-12.345))
	assert.Equal(t, "0.30", Money(0.1+0.2))
}

func TestMoneyNonFinite(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, "+Inf", Money(math.Inf(1)))
		assert.Equal(t, "-Inf", Money(math.Inf(-1)))
		assert.Equal(t, "NaN", Money(math.NaN()))
	})
}

func TestDates(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-09", Date(ts))
	assert.Equal(t, "2024-03-09T14:05", DateInput(ts))
	assert.Empty(t, Date(time.Time{}))
	assert.Empty(t, DateInput(time.Time{}))
}

func TestLoadParsesEveryPage(t *testing.T) {
	tmpl, err := Load()
	require.NoError(t, err)

	for _, name := range []string{
		"transaction.tmpl",
		"newTransaction.tmpl",
		"editTransaction.tmpl",
		"groupByCategory.tmpl",
		"login.tmpl",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestRenderTransactionList(t *testing.T) {
	tmpl, err := Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "transaction.tmpl", map[string]any{
		"loggedIn": true,
		"transactions": []models.Transaction{
			{ID: "abc", Description: "Coffee", Amount: 4.5, Category: "Food", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		},
	})
	require.NoError(t, err)

	body := buf.String()
	assert.Contains(t, body, "Coffee")
	assert.Contains(t, body, "4.50")
	assert.Contains(t, body, "2024-01-02")
	assert.Contains(t, body, "/transactions/edit/abc")
	assert.Contains(t, body, "/transactions/delete/abc")
}

func TestRenderGroupSummary(t *testing.T) {
	tmpl, err := Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "groupByCategory.tmpl", map[string]any{
		"loggedIn": true,
		"results": []models.CategoryGroup{
			{Category: "Food", TotalAmount: 14.5, Transactions: []models.Transaction{{Description: "Coffee"}, {Description: "Lunch"}}},
		},
	})
	require.NoError(t, err)

	body := buf.String()
	assert.Contains(t, body, "Food")
	assert.Contains(t, body, "14.50")
	assert.Contains(t, body, "Lunch")
}
