// Package logger builds configured slog loggers for the platform.
//
// It wraps the standard library's log/slog with a small factory that selects
// output format and level per environment, attaches static service attributes,
// and injects request-scoped attributes (request ID, tenant ID) from context
// via ContextExtractor functions registered at construction time.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "shopgrid"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor(), tenant.LoggerExtractor()),
//	)
package logger
