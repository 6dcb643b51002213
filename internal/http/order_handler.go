package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/crm-backend/internal/model"
	"github.com/tuanvumaihuynh/crm-backend/internal/repository"
	"github.com/tuanvumaihuynh/crm-backend/internal/service"
	"github.com/tuanvumaihuynh/crm-backend/pkg/validator"
)

type orderHandler struct {
	orderSvc  service.OrderService
	validator validator.Validator
	*responder
}

func newOrderHandler(orderSvc service.OrderService, v validator.Validator, rsp *responder) *orderHandler {
	return &orderHandler{
		orderSvc:  orderSvc,
		validator: v,
		responder: rsp,
	}
}

type createOrderRequest struct {
	CustomerId uuid.UUID   `json:"customerId" validate:"required"`
	ProductIds []uuid.UUID `json:"productIds"`
}

type orderResponse struct {
	Id          uuid.UUID         `json:"id"`
	CustomerId  uuid.UUID         `json:"customerId"`
	Products    []productResponse `json:"products"`
	TotalAmount float64           `json:"totalAmount"`
	OrderDate   time.Time         `json:"orderDate"`
}

func (h *orderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.orderSvc.CreateOrder(r.Context(), service.CreateOrderParams{
		CustomerID: req.CustomerId,
		ProductIDs: req.ProductIds,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, toOrderResponse(order))
}

type listOrdersQuery struct {
	OrderBy string `validate:"omitempty,oneof=total_amount order_date"`
	Order   string `validate:"omitempty,oneof=asc desc"`
}

func (h *orderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := listOrdersQuery{
		OrderBy: r.URL.Query().Get("orderBy"),
		Order:   r.URL.Query().Get("order"),
	}
	if err := h.validator.Validate(q); err != nil {
		h.writeError(w, r, err)
		return
	}

	totalAmountGte, err := queryFloat(r, "totalAmountGte")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	totalAmountLte, err := queryFloat(r, "totalAmountLte")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	orderDateGte, err := queryTime(r, "orderDateGte")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	orderDateLte, err := queryTime(r, "orderDateLte")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	productID, err := queryUUID(r, "productId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	orders, err := h.orderSvc.ListOrders(r.Context(), repository.ListOrdersParams{
		Filter: repository.OrderFilter{
			TotalAmountGte:       totalAmountGte,
			TotalAmountLte:       totalAmountLte,
			OrderDateGte:         orderDateGte,
			OrderDateLte:         orderDateLte,
			CustomerNameContains: queryString(r, "customerName"),
			ProductNameContains:  queryString(r, "productName"),
			ProductID:            productID,
		},
		OrderBy: q.OrderBy,
		Order:   repository.SortOrder(q.Order),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, toOrderResponse(order))
	}

	h.writeJSON(w, r, http.StatusOK, items)
}

func toOrderResponse(order model.Order) orderResponse {
	products := make([]productResponse, 0, len(order.Products))
	for _, product := range order.Products {
		products = append(products, toProductResponse(product))
	}

	return orderResponse{
		Id:          order.ID,
		CustomerId:  order.CustomerID,
		Products:    products,
		TotalAmount: order.TotalAmount,
		OrderDate:   order.OrderDate,
	}
}
