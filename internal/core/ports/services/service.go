package services

// ServiceContainer holds instances of all the application services. It is
// constructed once in main and handed to the handlers.
type ServiceContainer struct {
	Currency CurrencySvcFacade
	Rates    RateSvcFacade
	Ledger   LedgerSvcFacade
	User     UserSvcFacade
}
