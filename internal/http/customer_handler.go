package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/crm-backend/internal/model"
	"github.com/tuanvumaihuynh/crm-backend/internal/repository"
	"github.com/tuanvumaihuynh/crm-backend/internal/service"
	"github.com/tuanvumaihuynh/crm-backend/pkg/validator"
)

type customerHandler struct {
	customerSvc service.CustomerService
	validator   validator.Validator
	*responder
}

func newCustomerHandler(customerSvc service.CustomerService, v validator.Validator, rsp *responder) *customerHandler {
	return &customerHandler{
		customerSvc: customerSvc,
		validator:   v,
		responder:   rsp,
	}
}

type createCustomerRequest struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Email string  `json:"email" validate:"required"`
	Phone *string `json:"phone"`
}

type customerResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type createCustomerResponse struct {
	Customer customerResponse `json:"customer"`
	Message  string           `json:"message"`
}

type bulkCreateCustomersRequest struct {
	Customers []createCustomerRequest `json:"customers" validate:"required,min=1,dive"`
}

type bulkCreateCustomersResponse struct {
	Customers []customerResponse `json:"customers"`
	Errors    []string           `json:"errors"`
}

func (h *customerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.customerSvc.CreateCustomer(r.Context(), service.CreateCustomerParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, createCustomerResponse{
		Customer: toCustomerResponse(result.Customer),
		Message:  result.Message,
	})
}

func (h *customerHandler) BulkCreateCustomers(w http.ResponseWriter, r *http.Request) {
	var req bulkCreateCustomersRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	params := make([]service.CreateCustomerParams, 0, len(req.Customers))
	for _, c := range req.Customers {
		params = append(params, service.CreateCustomerParams{
			Name:  c.Name,
			Email: c.Email,
			Phone: c.Phone,
		})
	}

	result, err := h.customerSvc.BulkCreateCustomers(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res := bulkCreateCustomersResponse{
		Customers: make([]customerResponse, 0, len(result.Customers)),
		Errors:    result.Errors,
	}
	for _, customer := range result.Customers {
		res.Customers = append(res.Customers, toCustomerResponse(customer))
	}
	if res.Errors == nil {
		res.Errors = []string{}
	}

	h.writeJSON(w, r, http.StatusCreated, res)
}

func (h *customerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(chi.URLParam(r, "customerId"), "customer id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	customer, err := h.customerSvc.GetCustomer(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toCustomerResponse(customer))
}

type listCustomersQuery struct {
	OrderBy string `validate:"omitempty,oneof=name email created_at"`
	Order   string `validate:"omitempty,oneof=asc desc"`
}

func (h *customerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := listCustomersQuery{
		OrderBy: r.URL.Query().Get("orderBy"),
		Order:   r.URL.Query().Get("order"),
	}
	if err := h.validator.Validate(q); err != nil {
		h.writeError(w, r, err)
		return
	}

	createdAtGte, err := queryTime(r, "createdAtGte")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	createdAtLte, err := queryTime(r, "createdAtLte")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	customers, err := h.customerSvc.ListCustomers(r.Context(), repository.ListCustomersParams{
		Filter: repository.CustomerFilter{
			NameContains:   queryString(r, "name"),
			EmailContains:  queryString(r, "email"),
			CreatedAtGte:   createdAtGte,
			CreatedAtLte:   createdAtLte,
			PhoneHasPrefix: queryString(r, "phonePrefix"),
		},
		OrderBy: q.OrderBy,
		Order:   repository.SortOrder(q.Order),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]customerResponse, 0, len(customers))
	for _, customer := range customers {
		items = append(items, toCustomerResponse(customer))
	}

	h.writeJSON(w, r, http.StatusOK, items)
}

func toCustomerResponse(customer model.Customer) customerResponse {
	return customerResponse{
		Id:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		Phone:     customer.Phone,
		CreatedAt: customer.CreatedAt,
	}
}
