package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/crm-backend/internal/apperr"
	"github.com/tuanvumaihuynh/crm-backend/internal/model"
	"github.com/tuanvumaihuynh/crm-backend/internal/repository"
	"github.com/tuanvumaihuynh/crm-backend/internal/service"
	"github.com/tuanvumaihuynh/crm-backend/pkg/validator"
)

type fakeCustomerSvc struct {
	createResult service.CreateCustomerResult
	createErr    error
	bulkResult   service.BulkCreateCustomersResult
	bulkErr      error
	customer     model.Customer
	getErr       error
	customers    []model.Customer
	listErr      error
	lastList     repository.ListCustomersParams
}

func (f *fakeCustomerSvc) CreateCustomer(_ context.Context, _ service.CreateCustomerParams) (service.CreateCustomerResult, error) {
	return f.createResult, f.createErr
}

func (f *fakeCustomerSvc) BulkCreateCustomers(_ context.Context, _ []service.CreateCustomerParams) (service.BulkCreateCustomersResult, error) {
	return f.bulkResult, f.bulkErr
}

func (f *fakeCustomerSvc) GetCustomer(_ context.Context, _ uuid.UUID) (model.Customer, error) {
	return f.customer, f.getErr
}

func (f *fakeCustomerSvc) ListCustomers(_ context.Context, params repository.ListCustomersParams) ([]model.Customer, error) {
	f.lastList = params
	return f.customers, f.listErr
}

type fakeProductSvc struct {
	product       model.Product
	createErr     error
	getErr        error
	products      []model.Product
	listErr       error
	restockResult service.RestockResult
	restockErr    error
}

func (f *fakeProductSvc) CreateProduct(_ context.Context, _ service.CreateProductParams) (model.Product, error) {
	return f.product, f.createErr
}

func (f *fakeProductSvc) GetProduct(_ context.Context, _ uuid.UUID) (model.Product, error) {
	return f.product, f.getErr
}

func (f *fakeProductSvc) ListProducts(_ context.Context, _ repository.ListProductsParams) ([]model.Product, error) {
	return f.products, f.listErr
}

func (f *fakeProductSvc) UpdateLowStockProducts(_ context.Context) (service.RestockResult, error) {
	return f.restockResult, f.restockErr
}

type fakeOrderSvc struct {
	order     model.Order
	createErr error
	orders    []model.Order
	listErr   error
	lastList  repository.ListOrdersParams
}

func (f *fakeOrderSvc) CreateOrder(_ context.Context, _ service.CreateOrderParams) (model.Order, error) {
	return f.order, f.createErr
}

func (f *fakeOrderSvc) ListOrders(_ context.Context, params repository.ListOrdersParams) ([]model.Order, error) {
	f.lastList = params
	return f.orders, f.listErr
}

type fakeReportSvc struct {
	report model.Report
	err    error
}

func (f *fakeReportSvc) GenerateReport(_ context.Context) (model.Report, error) {
	return f.report, f.err
}

type handlerEnv struct {
	router      chi.Router
	customerSvc *fakeCustomerSvc
	productSvc  *fakeProductSvc
	orderSvc    *fakeOrderSvc
	reportSvc   *fakeReportSvc
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	rsp := &responder{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	env := &handlerEnv{
		router:      chi.NewRouter(),
		customerSvc: &fakeCustomerSvc{},
		productSvc:  &fakeProductSvc{},
		orderSvc:    &fakeOrderSvc{},
		reportSvc:   &fakeReportSvc{},
	}

	customerHdl := newCustomerHandler(env.customerSvc, v, rsp)
	productHdl := newProductHandler(env.productSvc, v, rsp)
	orderHdl := newOrderHandler(env.orderSvc, v, rsp)
	reportHdl := newReportHandler(env.reportSvc, rsp)

	env.router.Route("/api/v1", func(r chi.Router) {
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

	return env
}

func (env *handlerEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestCreateCustomerRoute(t *testing.T) {
	t.Run("Should create customer successfully", func(t *testing.T) {
		env := newHandlerEnv(t)
		customer := model.Customer{
			ID:        uuid.New(),
			Name:      "Alice",
			Email:     "alice@example.com",
			CreatedAt: time.Now().UTC(),
		}
		env.customerSvc.createResult = service.CreateCustomerResult{
			Customer: customer,
			Message:  "Customer created successfully",
		}

		resp := env.do(http.MethodPost, "/api/v1/customers", `{"name":"Alice","email":"alice@example.com"}`)

		require.Equal(t, http.StatusCreated, resp.Code)
		var body createCustomerResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, customer.ID, body.Customer.Id)
		assert.Equal(t, "Customer created successfully", body.Message)
	})

	t.Run("Should reject missing name", func(t *testing.T) {
		env := newHandlerEnv(t)

		resp := env.do(http.MethodPost, "/api/v1/customers", `{"email":"alice@example.com"}`)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "validationError")
	})

	t.Run("Should map duplicate email to 409", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.customerSvc.createErr = apperr.CustomerEmailExistsErr

		resp := env.do(http.MethodPost, "/api/v1/customers", `{"name":"Alice","email":"alice@example.com"}`)

		require.Equal(t, http.StatusConflict, resp.Code)
		assert.Contains(t, resp.Body.String(), "Email already exists")
	})

	t.Run("Should map validation failure to 400", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.customerSvc.createErr = apperr.CustomerInvalidEmailErr

		resp := env.do(http.MethodPost, "/api/v1/customers", `{"name":"Alice","email":"bogus"}`)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "Invalid email format")
	})
}

func TestBulkCreateCustomersRoute(t *testing.T) {
	t.Run("Should report partial failures", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.customerSvc.bulkResult = service.BulkCreateCustomersResult{
			Customers: []model.Customer{{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}},
			Errors:    []string{"[1] Invalid email format"},
		}

		resp := env.do(http.MethodPost, "/api/v1/customers/bulk",
			`{"customers":[{"name":"Alice","email":"alice@example.com"},{"name":"Bob","email":"bogus"}]}`)

		require.Equal(t, http.StatusCreated, resp.Code)
		var body bulkCreateCustomersResponse
		decodeBody(t, resp, &body)
		assert.Len(t, body.Customers, 1)
		assert.Equal(t, []string{"[1] Invalid email format"}, body.Errors)
	})

	t.Run("Should reject empty batch", func(t *testing.T) {
		env := newHandlerEnv(t)

		resp := env.do(http.MethodPost, "/api/v1/customers/bulk", `{"customers":[]}`)

		require.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestGetCustomerRoute(t *testing.T) {
	t.Run("Should reject malformed id", func(t *testing.T) {
		env := newHandlerEnv(t)

		resp := env.do(http.MethodGet, "/api/v1/customers/not-a-uuid", "")

		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should map unknown customer to 404", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.customerSvc.getErr = apperr.CustomerNotFoundErr

		resp := env.do(http.MethodGet, "/api/v1/customers/"+uuid.NewString(), "")

		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Contains(t, resp.Body.String(), "Invalid customer ID")
	})
}

func TestListCustomersRoute(t *testing.T) {
	t.Run("Should pass filters through", func(t *testing.T) {
		env := newHandlerEnv(t)

		resp := env.do(http.MethodGet, "/api/v1/customers?name=ali&email=example&orderBy=email&order=desc", "")

		require.Equal(t, http.StatusOK, resp.Code)
		require.NotNil(t, env.customerSvc.lastList.Filter.NameContains)
		assert.Equal(t, "ali", *env.customerSvc.lastList.Filter.NameContains)
		require.NotNil(t, env.customerSvc.lastList.Filter.EmailContains)
		assert.Equal(t, "example", *env.customerSvc.lastList.Filter.EmailContains)
		assert.Equal(t, "email", env.customerSvc.lastList.OrderBy)
		assert.Equal(t, repository.SortDesc, env.customerSvc.lastList.Order)
	})

	t.Run("Should reject unknown order by column", func(t *testing.T) {
		env := newHandlerEnv(t)

		resp := env.do(http.MethodGet, "/api/v1/customers?orderBy=phone", "")

		require.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestCreateProductRoute(t *testing.T) {
	t.Run("Should create product successfully", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.productSvc.product = model.Product{ID: uuid.New(), Name: "Laptop", Price: 999.99, Stock: 5}

		resp := env.do(http.MethodPost, "/api/v1/products", `{"name":"Laptop","price":999.99,"stock":5}`)

		require.Equal(t, http.StatusCreated, resp.Code)
		var body productResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "Laptop", body.Name)
		assert.Equal(t, 999.99, body.Price)
	})

	t.Run("Should map non positive price to 400", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.productSvc.createErr = apperr.ProductInvalidPriceErr

		resp := env.do(http.MethodPost, "/api/v1/products", `{"name":"Laptop","price":0}`)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "Price must be positive")
	})
}

func TestRestockProductsRoute(t *testing.T) {
	env := newHandlerEnv(t)
	env.productSvc.restockResult = service.RestockResult{
		Products: []model.Product{{ID: uuid.New(), Name: "Mouse", Stock: 18}},
		Message:  "1 products restocked successfully",
	}

	resp := env.do(http.MethodPost, "/api/v1/products/restock", "")

	require.Equal(t, http.StatusOK, resp.Code)
	var body restockProductsResponse
	decodeBody(t, resp, &body)
	require.Len(t, body.Products, 1)
	assert.Equal(t, 18, body.Products[0].Stock)
	assert.Equal(t, "1 products restocked successfully", body.Message)
}

func TestCreateOrderRoute(t *testing.T) {
	t.Run("Should create order successfully", func(t *testing.T) {
		env := newHandlerEnv(t)
		order := model.Order{
			ID:          uuid.New(),
			CustomerID:  uuid.New(),
			Products:    []model.Product{{ID: uuid.New(), Name: "Laptop", Price: 10}},
			TotalAmount: 10,
			OrderDate:   time.Now().UTC(),
		}
		env.orderSvc.order = order

		body := fmt.Sprintf(`{"customerId":%q,"productIds":[%q]}`, order.CustomerID, order.Products[0].ID)
		resp := env.do(http.MethodPost, "/api/v1/orders", body)

		require.Equal(t, http.StatusCreated, resp.Code)
		var res orderResponse
		decodeBody(t, resp, &res)
		assert.Equal(t, order.ID, res.Id)
		assert.Equal(t, 10.0, res.TotalAmount)
	})

	t.Run("Should map unresolved product to 404", func(t *testing.T) {
		env := newHandlerEnv(t)
		missingID := uuid.New()
		env.orderSvc.createErr = apperr.OrderInvalidProductErr(missingID)

		body := fmt.Sprintf(`{"customerId":%q,"productIds":[%q]}`, uuid.New(), missingID)
		resp := env.do(http.MethodPost, "/api/v1/orders", body)

		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Contains(t, resp.Body.String(), "Invalid product ID: "+missingID.String())
	})

	t.Run("Should map empty product list to 400", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.orderSvc.createErr = apperr.OrderNoProductsErr

		body := fmt.Sprintf(`{"customerId":%q,"productIds":[]}`, uuid.New())
		resp := env.do(http.MethodPost, "/api/v1/orders", body)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "At least one product is required")
	})
}

func TestListOrdersRoute(t *testing.T) {
	env := newHandlerEnv(t)

	resp := env.do(http.MethodGet, "/api/v1/orders?totalAmountGte=10.5&customerName=ali&orderBy=total_amount", "")

	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, env.orderSvc.lastList.Filter.TotalAmountGte)
	assert.Equal(t, 10.5, *env.orderSvc.lastList.Filter.TotalAmountGte)
	require.NotNil(t, env.orderSvc.lastList.Filter.CustomerNameContains)
	assert.Equal(t, "ali", *env.orderSvc.lastList.Filter.CustomerNameContains)
	assert.Equal(t, "total_amount", env.orderSvc.lastList.OrderBy)
}

func TestGetReportRoute(t *testing.T) {
	env := newHandlerEnv(t)
	env.reportSvc.report = model.Report{TotalCustomers: 3, TotalOrders: 5, TotalRevenue: 120.5}

	resp := env.do(http.MethodGet, "/api/v1/report", "")

	require.Equal(t, http.StatusOK, resp.Code)
	var body reportResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(3), body.TotalCustomers)
	assert.Equal(t, int64(5), body.TotalOrders)
	assert.Equal(t, 120.5, body.TotalRevenue)
}
