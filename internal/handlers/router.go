package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"finance-service/internal/clients"
	"finance-service/internal/config"
	"finance-service/internal/repositories"
	"finance-service/internal/services"
)

// Dependencies collects everything the HTTP layer needs.
type Dependencies struct {
	Config              *config.Config
	Logger              *zap.Logger
	Sessions            clients.SessionClient
	Pricing             clients.PricingClient
	ShareRepo           repositories.ShareRepository
	AccountService      *services.AccountService
	CategoryService     *services.CategoryService
	TransactionService  *services.TransactionService
	BillService         *services.BillService
	DebtService         *services.DebtService
	ReceivableService   *services.ReceivableService
	AssetService        *services.AssetService
	BudgetService       *services.BudgetService
	ImportService       *services.ImportService
	NotificationService *services.NotificationService
}

func SetupRouter(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	// cron endpoints authenticate with a shared token, not a user session
	cron := NewCronHandler(deps.Config.CronToken, deps.NotificationService)
	router.HandleFunc("/cron/notifications", cron.RunNotifications).Methods(http.MethodPost)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware(deps.Logger))
	api.Use(jsonContentTypeMiddleware)
	api.Use(authMiddleware(deps.Sessions))

	scopes := newScopeResolver(deps.ShareRepo)

	accounts := NewAccountHandler(deps.AccountService, deps.BillService, scopes)
	api.HandleFunc("/accounts", accounts.Create).Methods(http.MethodPost)
	api.HandleFunc("/accounts", accounts.List).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}", accounts.Get).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}", accounts.Update).Methods(http.MethodPut)
	api.HandleFunc("/accounts/{id}", accounts.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/accounts/{id}/bills", accounts.ListBills).Methods(http.MethodGet)

	categories := NewCategoryHandler(deps.CategoryService, scopes)
	api.HandleFunc("/categories", categories.Create).Methods(http.MethodPost)
	api.HandleFunc("/categories", categories.List).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", categories.Get).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", categories.Update).Methods(http.MethodPut)
	api.HandleFunc("/categories/{id}", categories.Delete).Methods(http.MethodDelete)

	transactions := NewTransactionHandler(deps.TransactionService, scopes)
	api.HandleFunc("/transactions", transactions.Create).Methods(http.MethodPost)
	api.HandleFunc("/transactions", transactions.List).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", transactions.Get).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", transactions.Update).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", transactions.Delete).Methods(http.MethodDelete)

	bills := NewBillHandler(deps.BillService, scopes)
	api.HandleFunc("/credit-card-bills", bills.Open).Methods(http.MethodPost)
	api.HandleFunc("/credit-card-bills/{id}", bills.Get).Methods(http.MethodGet)
	api.HandleFunc("/credit-card-bills/{id}", bills.Action).Methods(http.MethodPost)

	debts := NewDebtHandler(deps.DebtService, scopes)
	api.HandleFunc("/debts", debts.Create).Methods(http.MethodPost)
	api.HandleFunc("/debts", debts.List).Methods(http.MethodGet)
	api.HandleFunc("/debts/{id}", debts.Get).Methods(http.MethodGet)
	api.HandleFunc("/debts/{id}", debts.Update).Methods(http.MethodPut)
	api.HandleFunc("/debts/{id}", debts.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/debts/{id}/payments", debts.AddPayment).Methods(http.MethodPost)
	api.HandleFunc("/debts/{id}/payments", debts.ListPayments).Methods(http.MethodGet)

	receivables := NewReceivableHandler(deps.ReceivableService, scopes)
	api.HandleFunc("/receivables", receivables.Create).Methods(http.MethodPost)
	api.HandleFunc("/receivables", receivables.List).Methods(http.MethodGet)
	api.HandleFunc("/receivables/{id}", receivables.Get).Methods(http.MethodGet)
	api.HandleFunc("/receivables/{id}", receivables.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/receivables/{id}/payments", receivables.AddPayment).Methods(http.MethodPost)
	api.HandleFunc("/receivables/{id}/payments", receivables.ListPayments).Methods(http.MethodGet)

	assets := NewAssetHandler(deps.AssetService, scopes)
	api.HandleFunc("/assets", assets.Create).Methods(http.MethodPost)
	api.HandleFunc("/assets", assets.List).Methods(http.MethodGet)
	api.HandleFunc("/assets/{id}", assets.Get).Methods(http.MethodGet)
	api.HandleFunc("/assets/{id}", assets.Update).Methods(http.MethodPut)
	api.HandleFunc("/assets/{id}", assets.Delete).Methods(http.MethodDelete)

	budgets := NewBudgetHandler(deps.BudgetService, scopes)
	api.HandleFunc("/budgets", budgets.Set).Methods(http.MethodPut)
	api.HandleFunc("/budgets", budgets.List).Methods(http.MethodGet)
	api.HandleFunc("/budgets/{id}", budgets.Delete).Methods(http.MethodDelete)

	shares := NewShareHandler(deps.ShareRepo, scopes)
	api.HandleFunc("/shares", shares.Create).Methods(http.MethodPost)
	api.HandleFunc("/shares", shares.List).Methods(http.MethodGet)
	api.HandleFunc("/shares/{id}", shares.UpdateStatus).Methods(http.MethodPut)

	imports := NewImportHandler(deps.ImportService, scopes)
	api.HandleFunc("/import/csv", imports.ImportCSV).Methods(http.MethodPost)

	rules := NewNotificationRuleHandler(deps.NotificationService, scopes)
	api.HandleFunc("/notification-rules", rules.Create).Methods(http.MethodPost)
	api.HandleFunc("/notification-rules", rules.List).Methods(http.MethodGet)
	api.HandleFunc("/notification-rules/{id}", rules.Update).Methods(http.MethodPut)
	api.HandleFunc("/notification-rules/{id}", rules.Delete).Methods(http.MethodDelete)

	billing := NewBillingHandler(deps.Pricing)
	api.HandleFunc("/billing/price", billing.GetPrice).Methods(http.MethodGet)

	return router
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
