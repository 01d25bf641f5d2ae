package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eaglebank/ledger-service/internal/cqrs"
	"github.com/eaglebank/ledger-service/internal/middleware"
	"github.com/eaglebank/ledger-service/internal/models"
	"github.com/eaglebank/ledger-service/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
)

// ListPath is where every successful write, and every anonymous request,
// ends up.
const ListPath = "/transaction"

// TransactionCommander defines the write-side operations used by TransactionHandler.
type TransactionCommander interface {
	CreateTransaction(context.Context, cqrs.CreateTransactionCommand) (*models.Transaction, error)
	UpdateTransaction(context.Context, cqrs.UpdateTransactionCommand) error
	DeleteTransaction(context.Context, cqrs.DeleteTransactionCommand) error
}

// TransactionQuerier defines the read-side operations used by TransactionHandler.
type TransactionQuerier interface {
	GetTransaction(context.Context, cqrs.GetTransactionQuery) (*models.Transaction, error)
	ListTransactions(context.Context, cqrs.ListTransactionsQuery) ([]models.Transaction, error)
	GroupByCategory(context.Context, cqrs.GroupByCategoryQuery) ([]models.CategoryGroup, error)
}

type TransactionHandler struct {
	commands TransactionCommander
	queries  TransactionQuerier
}

// TransactionRequest is bound from either a submitted form or a JSON body.
type TransactionRequest struct {
	Description string      `form:"description" json:"description" validate:"required,max=200"`
	Amount      json.Number `form:"amount" json:"amount" validate:"required,numeric"`
	Category    string      `form:"category" json:"category" validate:"required,max=100"`
	Date        string      `form:"date" json:"date"`
}

// transactionForm is what the create and edit templates display.
type transactionForm struct {
	ID          string
	Description string
	Amount      string
	Category    string
	Date        string
}

var dateLayouts = []string{time.RFC3339, view.DateInputLayout, view.DateLayout}

// maxAmount bounds amounts so they survive the float64 round trip to the
// stores and can still be summed per category.
var maxAmount = decimal.New(1, 15)

func NewTransactionHandler(commands TransactionCommander, queries TransactionQuerier) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries}
}

// ToInput validates the request and converts it into a store payload.
func (r TransactionRequest) ToInput() (models.TransactionInput, []middleware.ValidationError) {
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.Amount = json.Number(strings.TrimSpace(string(r.Amount)))
	r.Date = strings.TrimSpace(r.Date)

	if validationErrors := middleware.ValidateRequest(r); validationErrors != nil {
		return models.TransactionInput{}, validationErrors
	}

	amount, err := decimal.NewFromString(string(r.Amount))
	if err != nil {
		return models.TransactionInput{}, []middleware.ValidationError{{Field: "amount", Message: "Must be a number", Type: "numeric"}}
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return models.TransactionInput{}, []middleware.ValidationError{{Field: "amount", Message: "Amount is out of range", Type: "range"}}
	}

	in := models.TransactionInput{
		Description: r.Description,
		Amount:      amount.InexactFloat64(),
		Category:    r.Category,
	}
	if r.Date != "" {
		date, ok := parseDate(r.Date)
		if !ok {
			return models.TransactionInput{}, []middleware.ValidationError{{Field: "date", Message: "Invalid date", Type: "datetime"}}
		}
		in.Date = &date
	}
	return in, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	h.renderList(c, models.SortNone)
}

// SortTransactions lists transactions ordered by the sortBy query parameter.
// Unknown keys fall back to the store's natural order.
func (h *TransactionHandler) SortTransactions(c *gin.Context) {
	h.renderList(c, models.ParseSortKey(c.Query("sortBy")))
}

func (h *TransactionHandler) renderList(c *gin.Context, sortBy models.SortKey) {
	transactions, err := h.queries.ListTransactions(c.Request.Context(), cqrs.ListTransactionsQuery{SortBy: sortBy})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	render(c, http.StatusOK, "transaction.tmpl", gin.H{
		"title":        "Transactions",
		"transactions": transactions,
		"sortBy":       string(sortBy),
	})
}

func (h *TransactionHandler) NewTransactionForm(c *gin.Context) {
	renderForm(c, http.StatusOK, "newTransaction.tmpl", transactionForm{}, nil)
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	in, validationErrors := req.ToInput()
	if validationErrors != nil {
		respondInvalid(c, "newTransaction.tmpl", formFromRequest("", req), validationErrors)
		return
	}

	if _, err := h.commands.CreateTransaction(c.Request.Context(), cqrs.CreateTransactionCommand{Input: in}); err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Redirect(http.StatusFound, ListPath)
}

func (h *TransactionHandler) EditTransactionForm(c *gin.Context) {
	transaction, err := h.queries.GetTransaction(c.Request.Context(), cqrs.GetTransactionQuery{
		TransactionID: c.Param("id"),
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	renderForm(c, http.StatusOK, "editTransaction.tmpl", formFromTransaction(transaction), nil)
}

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	transactionID := c.Param("id")

	var req TransactionRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	in, validationErrors := req.ToInput()
	if validationErrors != nil {
		respondInvalid(c, "editTransaction.tmpl", formFromRequest(transactionID, req), validationErrors)
		return
	}

	err := h.commands.UpdateTransaction(c.Request.Context(), cqrs.UpdateTransactionCommand{
		TransactionID: transactionID,
		Input:         in,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Redirect(http.StatusFound, ListPath)
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	err := h.commands.DeleteTransaction(c.Request.Context(), cqrs.DeleteTransactionCommand{
		TransactionID: c.Param("id"),
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Redirect(http.StatusFound, ListPath)
}

// GroupByCategory leaves failures to middleware.ErrorHandler.
func (h *TransactionHandler) GroupByCategory(c *gin.Context) {
	results, err := h.queries.GroupByCategory(c.Request.Context(), cqrs.GroupByCategoryQuery{})
	if err != nil {
		_ = c.Error(err)
		return
	}

	render(c, http.StatusOK, "groupByCategory.tmpl", gin.H{
		"title":   "By category",
		"results": results,
	})
}

func formFromRequest(id string, req TransactionRequest) transactionForm {
	return transactionForm{
		ID:          id,
		Description: req.Description,
		Amount:      string(req.Amount),
		Category:    req.Category,
		Date:        req.Date,
	}
}

func formFromTransaction(t *models.Transaction) transactionForm {
	return transactionForm{
		ID:          t.ID,
		Description: t.Description,
		Amount:      strconv.FormatFloat(t.Amount, 'f', -1, 64),
		Category:    t.Category,
		Date:        view.DateInput(t.Date),
	}
}

// respondInvalid answers JSON clients with the validation details and
// browsers with the form they submitted.
func respondInvalid(c *gin.Context, name string, form transactionForm, validationErrors []middleware.ValidationError) {
	if wantsJSON(c) {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	renderForm(c, http.StatusBadRequest, name, form, validationErrors)
}

func wantsJSON(c *gin.Context) bool {
	return c.ContentType() == binding.MIMEJSON
}

func renderForm(c *gin.Context, status int, name string, form transactionForm, validationErrors []middleware.ValidationError) {
	errs := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errs[e.Field] = e.Message
	}
	title := "New transaction"
	if form.ID != "" {
		title = "Edit transaction"
	}
	render(c, status, name, gin.H{
		"title":  title,
		"form":   form,
		"errors": errs,
	})
}

// render adds the request's login state to every page.
func render(c *gin.Context, status int, name string, data gin.H) {
	data["loggedIn"] = middleware.LoggedIn(c)
	if username, ok := middleware.GetUsername(c); ok {
		data["username"] = username
	}
	c.HTML(status, name, data)
}
