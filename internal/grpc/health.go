package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/Belphemur/titlovi/internal/apperrors"
	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/models"
	"github.com/Belphemur/titlovi/internal/provider"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// CatalogService is the health service name reflecting catalog authentication
const CatalogService = "titlovi.catalog"

// TokenSource hands out a valid catalog token
type TokenSource interface {
	EnsureToken(ctx context.Context) (models.Token, error)
}

// HealthReporter maps the state of the engine onto gRPC health statuses.
// Providers report under "titlovi.<content type>".
type HealthReporter struct {
	server   *health.Server
	tokens   TokenSource
	services []string
}

// NewHealthReporter creates a reporter for the providers of registry
func NewHealthReporter(registry *provider.Registry, tokens TokenSource) *HealthReporter {
	services := []string{CatalogService}
	for _, p := range registry.Providers() {
		services = append(services, ServiceName(p))
	}
	return &HealthReporter{
		server:   newHealthServer(services),
		tokens:   tokens,
		services: services,
	}
}

// ServiceName returns the health service name of p
func ServiceName(p provider.Provider) string {
	return "titlovi." + strings.ToLower(p.ContentType().String())
}

// Services lists the reported service names, catalog first
func (r *HealthReporter) Services() []string {
	out := make([]string, len(r.services))
	copy(out, r.services)
	return out
}

// Check makes sure a token can be obtained. Rejected or missing credentials
// mark every service NOT_SERVING; transport failures leave the status as is
// since the catalog may recover on its own.
func (r *HealthReporter) Check(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	logger := config.GetLogger()

	_, err := r.tokens.EnsureToken(ctx)
	switch {
	case err == nil:
		r.set(grpc_health_v1.HealthCheckResponse_SERVING)
		return grpc_health_v1.HealthCheckResponse_SERVING
	case errors.Is(err, apperrors.ErrMissingCredentials),
		errors.Is(err, &apperrors.ErrAuthentication{}) && !isServerSide(err):
		logger.Error().Err(err).Msg("Catalog authentication failed, reporting NOT_SERVING")
		r.set(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		return grpc_health_v1.HealthCheckResponse_NOT_SERVING
	default:
		logger.Warn().Err(err).Msg("Health check could not reach the catalog, keeping status")
		return r.current()
	}
}

// Shutdown marks every service NOT_SERVING ahead of a graceful stop
func (r *HealthReporter) Shutdown() {
	r.server.Shutdown()
}

func (r *HealthReporter) set(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	r.server.SetServingStatus("", status)
	for _, service := range r.services {
		r.server.SetServingStatus(service, status)
	}
}

func (r *HealthReporter) current() grpc_health_v1.HealthCheckResponse_ServingStatus {
	resp, err := r.server.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: CatalogService})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN
	}
	return resp.GetStatus()
}

// isServerSide reports whether an authentication failure was caused by the
// catalog being unreachable rather than by the credentials
func isServerSide(err error) bool {
	var transportErr *apperrors.ErrTransport
	if !errors.As(err, &transportErr) {
		return false
	}
	return transportErr.StatusCode == 0 || transportErr.StatusCode >= 500
}
