// Package logger builds slog loggers with consistent defaults and
// context-aware attribute injection.
//
// The factory returns a *slog.Logger whose handler is decorated with context
// extractors: functions that pull request-scoped values (tenant id, user id)
// out of the context at log time. Data-layer code logs with plain
// InfoContext/ErrorContext calls and the tenant attribution happens
// automatically.
//
//	log := logger.New(
//		logger.WithJSONFormatter(),
//		logger.WithContextExtractors(tenant.LoggerExtractor(), principal.LoggerExtractor()),
//	)
package logger
