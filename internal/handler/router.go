package handler

import (
	"html/template"
	"net/http"

	"github.com/eaglebank/ledger-service/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Logger        zerolog.Logger
	Templates     *template.Template
	Authenticator middleware.Authenticator
	Transactions  *TransactionHandler
	Auth          *AuthHandler
}

// NewRouter wires the middleware chain and every route. Transaction routes
// sit behind the login gate; /health and the login pages do not.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(cfg.Templates)
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(cfg.Logger),
		middleware.ErrorHandler(),
		middleware.Authenticate(cfg.Authenticator),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/login", cfg.Auth.LoginForm)
	router.POST("/login", cfg.Auth.Login)
	router.GET("/logout", cfg.Auth.Logout)

	protected := router.Group("", middleware.RequireLogin(ListPath, cfg.Auth.LoginForm))
	{
		protected.GET(ListPath, cfg.Transactions.ListTransactions)
		protected.GET("/transactions", cfg.Transactions.SortTransactions)
		protected.GET("/transactions/new", cfg.Transactions.NewTransactionForm)
		protected.POST("/transactions/new", cfg.Transactions.CreateTransaction)
		protected.GET("/transactions/edit/:id", cfg.Transactions.EditTransactionForm)
		protected.POST("/transactions/edit/:id", cfg.Transactions.UpdateTransaction)
		protected.GET("/transactions/delete/:id", cfg.Transactions.DeleteTransaction)
		protected.GET("/transactions/groupByCategory", cfg.Transactions.GroupByCategory)
	}

	return router
}
