package tenant

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Middleware brackets each request with tenant resolution: extract the
// identifier, load the tenant (cache first), validate it, and attach it to
// the request context. Requests without an identifier pass through with no
// tenant set — downstream layers fail closed on their own.
func Middleware(resolver Resolver, provider Provider, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		cache:         NewInMemoryCache(),
		cacheTTL:      5 * time.Minute,
		errorHandler:  defaultErrorHandler,
		requireActive: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			identifier, err := resolver.Resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if identifier == "" {
				next.ServeHTTP(w, r)
				return
			}

			if cached, ok := cfg.cache.Get(r.Context(), identifier); ok {
				if cfg.requireActive && !cached.Active {
					cfg.errorHandler(w, r, ErrInactiveTenant)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), cached)))
				return
			}

			t, err := provider.GetByIdentifier(r.Context(), identifier)
			if err != nil {
				if cfg.logger != nil {
					cfg.logger.ErrorContext(r.Context(), "tenant resolution failed",
						slog.String("identifier", identifier), slog.Any("error", err))
				}
				cfg.errorHandler(w, r, err)
				return
			}
			if cfg.requireActive && !t.Active {
				cfg.errorHandler(w, r, ErrInactiveTenant)
				return
			}

			cfg.cache.Set(r.Context(), identifier, t, cfg.cacheTTL)
			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}

// RequireTenant rejects requests that reach it without a tenant in context.
// Mount it after Middleware on routes that are tenant-scoped.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
