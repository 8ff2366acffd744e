package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	reservationsCreated metric.Int64Counter
	bookingsCreated     metric.Int64Counter
	authzDenied         metric.Int64Counter
	moduleDenied        metric.Int64Counter
	invoicesRendered    metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "routewise"
	}
	meter := provider.Meter(name)

	reservationsCreated, err := meter.Int64Counter("routewise_reservations_created_total")
	if err != nil {
		return nil, err
	}
	bookingsCreated, err := meter.Int64Counter("routewise_bookings_created_total")
	if err != nil {
		return nil, err
	}
	authzDenied, err := meter.Int64Counter("routewise_authorization_denied_total")
	if err != nil {
		return nil, err
	}
	moduleDenied, err := meter.Int64Counter("routewise_module_denied_total")
	if err != nil {
		return nil, err
	}
	invoicesRendered, err := meter.Int64Counter("routewise_invoices_rendered_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		reservationsCreated: reservationsCreated,
		bookingsCreated:     bookingsCreated,
		authzDenied:         authzDenied,
		moduleDenied:        moduleDenied,
		invoicesRendered:    invoicesRendered,
	}, nil
}

// RecordReservationCreated increments the reservation counter.
func (m *Metrics) RecordReservationCreated(ctx context.Context, tenantID string) {
	if m == nil {
		return
	}
	m.reservationsCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tenant_id", strings.TrimSpace(tenantID)),
	))
}

// RecordBookingCreated increments booking counts per product line.
func (m *Metrics) RecordBookingCreated(ctx context.Context, tenantID, line string) {
	if m == nil {
		return
	}
	m.bookingsCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tenant_id", strings.TrimSpace(tenantID)),
		attribute.String("line", strings.TrimSpace(line)),
	))
}

// RecordAuthorizationDenied increments the denied-check counter.
func (m *Metrics) RecordAuthorizationDenied(ctx context.Context, tenantID, object, action string) {
	if m == nil {
		return
	}
	m.authzDenied.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tenant_id", strings.TrimSpace(tenantID)),
		attribute.String("object", strings.TrimSpace(object)),
		attribute.String("action", strings.TrimSpace(action)),
	))
}

// RecordModuleDenied increments the module-gate denial counter.
func (m *Metrics) RecordModuleDenied(ctx context.Context, tenantID, module string) {
	if m == nil {
		return
	}
	m.moduleDenied.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tenant_id", strings.TrimSpace(tenantID)),
		attribute.String("module", strings.TrimSpace(module)),
	))
}

// RecordInvoiceRendered increments the PDF render counter.
func (m *Metrics) RecordInvoiceRendered(ctx context.Context, tenantID string) {
	if m == nil {
		return
	}
	m.invoicesRendered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tenant_id", strings.TrimSpace(tenantID)),
	))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}
