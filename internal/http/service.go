package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/crm-backend/internal/config"
	"github.com/tuanvumaihuynh/crm-backend/internal/http/metric"
	"github.com/tuanvumaihuynh/crm-backend/internal/http/middleware"
	"github.com/tuanvumaihuynh/crm-backend/internal/http/swagger"
	"github.com/tuanvumaihuynh/crm-backend/internal/service"
	"github.com/tuanvumaihuynh/crm-backend/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	customerSvc service.CustomerService
	productSvc  service.ProductService
	orderSvc    service.OrderService
	reportSvc   service.ReportService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	customerSvc service.CustomerService,
	productSvc service.ProductService,
	orderSvc service.OrderService,
	reportSvc service.ReportService,
) *Service {
	return &Service{
		cfg:         cfg,
		logger:      log.With(slog.String("service", "http")),
		metrics:     metric.New(),
		customerSvc: customerSvc,
		productSvc:  productSvc,
		orderSvc:    orderSvc,
		reportSvc:   reportSvc,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	if err := s.RegisterHandlers(r); err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) error {
	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("create validator: %w", err)
	}

	rsp := &responder{logger: s.logger}
	customerHdl := newCustomerHandler(s.customerSvc, v, rsp)
	productHdl := newProductHandler(s.productSvc, v, rsp)
	orderHdl := newOrderHandler(s.orderSvc, v, rsp)
	reportHdl := newReportHandler(s.reportSvc, rsp)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Post("/", customerHdl.CreateCustomer)
			r.Post("/bulk", customerHdl.BulkCreateCustomers)
			r.Get("/", customerHdl.ListCustomers)
			r.Get("/{customerId}", customerHdl.GetCustomer)
		})
		r.Route("/products", func(r chi.Router) {
			r.Post("/", productHdl.CreateProduct)
			r.Post("/restock", productHdl.RestockProducts)
			r.Get("/", productHdl.ListProducts)
			r.Get("/{productId}", productHdl.GetProduct)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHdl.CreateOrder)
			r.Get("/", orderHdl.ListOrders)
		})
		r.Get("/report", reportHdl.GetReport)
	})

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	return nil
}
