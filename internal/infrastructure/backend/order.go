package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/delivery/storefront/internal/domain/order"
	"github.com/delivery/storefront/internal/infrastructure/serviceclient"
)

// OrderAPI talks to the order service
type OrderAPI struct {
	client *serviceclient.Client
}

// NewOrderAPI creates a new OrderAPI
func NewOrderAPI(client *serviceclient.Client) *OrderAPI {
	return &OrderAPI{client: client}
}

type orderItemRequest struct {
	DishID   int64  `json:"dishId"`
	Quantity int    `json:"quantity"`
	Price    Amount `json:"price"`
}

type orderRequest struct {
	RestaurantID  int64              `json:"restaurantId"`
	OrderItems    []orderItemRequest `json:"orderItems"`
	PaymentMethod string             `json:"paymentMethod"`
}

type orderItemResponse struct {
	ID       int64  `json:"id"`
	DishID   int64  `json:"dishId"`
	Quantity int    `json:"quantity"`
	Price    Amount `json:"price"`
}

type paymentResponse struct {
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Amount  Amount `json:"amount"`
	Status  string `json:"status"`
	OrderID int64  `json:"orderId"`
}

type orderResponse struct {
	ID           int64               `json:"id"`
	Status       string              `json:"status"`
	OrderDate    string              `json:"orderDate"`
	UserID       int64               `json:"userId"`
	RestaurantID int64               `json:"restaurantId"`
	TotalPrice   Amount              `json:"totalPrice"`
	OrderItems   []orderItemResponse `json:"orderItems"`
	Payment      *paymentResponse    `json:"payment"`
}

func (o orderResponse) toDomain() order.Order {
	items := make([]order.Item, 0, len(o.OrderItems))
	for _, it := range o.OrderItems {
		items = append(items, order.Item{ID: it.ID, DishID: it.DishID, Quantity: it.Quantity, Price: it.Price.Decimal})
	}
	out := order.Order{
		ID:           o.ID,
		Status:       order.Status(o.Status),
		OrderDate:    o.OrderDate,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		TotalPrice:   o.TotalPrice.Decimal,
		Items:        items,
	}
	if o.Payment != nil {
		out.Payment = &order.Payment{
			ID:      o.Payment.ID,
			Method:  order.PaymentMethod(o.Payment.Method),
			Amount:  o.Payment.Amount.Decimal,
			Status:  o.Payment.Status,
			OrderID: o.Payment.OrderID,
		}
	}
	return out
}

func decodeOrders(resp *serviceclient.Response) ([]order.Order, error) {
	page, err := serviceclient.DecodePage[orderResponse](resp)
	if err != nil {
		return nil, err
	}
	orders := make([]order.Order, 0, len(page.Items))
	for _, o := range page.Items {
		orders = append(orders, o.toDomain())
	}
	return orders, nil
}

// Create submits one order
func (a *OrderAPI) Create(ctx context.Context, s *order.Submission) (order.Order, error) {
	lines := s.Lines()
	req := orderRequest{
		RestaurantID:  s.RestaurantID(),
		OrderItems:    make([]orderItemRequest, 0, len(lines)),
		PaymentMethod: string(s.PaymentMethod()),
	}
	for _, l := range lines {
		req.OrderItems = append(req.OrderItems, orderItemRequest{
			DishID:   l.DishID,
			Quantity: l.Quantity,
			Price:    NewAmount(l.UnitPrice),
		})
	}

	resp, err := a.client.Post(ctx, "/orders", req)
	if err != nil {
		return order.Order{}, err
	}
	out, err := serviceclient.DecodeJSON[orderResponse](resp)
	if err != nil {
		return order.Order{}, err
	}
	return out.toDomain(), nil
}

// Mine returns the orders of the session's user
func (a *OrderAPI) Mine(ctx context.Context) ([]order.Order, error) {
	resp, err := a.client.Get(ctx, "/orders", nil)
	if err != nil {
		return nil, err
	}
	return decodeOrders(resp)
}

// ByUser returns the orders of a user (admin)
func (a *OrderAPI) ByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	resp, err := a.client.Get(ctx, "/orders/user/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		return nil, err
	}
	return decodeOrders(resp)
}

// UpdateStatus moves an order to a new status (admin)
func (a *OrderAPI) UpdateStatus(ctx context.Context, orderID int64, status order.Status) error {
	_, err := a.client.Patch(ctx, "/orders/"+strconv.FormatInt(orderID, 10)+"/status",
		url.Values{"status": {string(status)}}, nil)
	return err
}
