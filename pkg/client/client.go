// Package client предоставляет Go клиент для API витрины.
// Используется смежными сервисами и интеграционными тестами.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultTimeout = 10 * time.Second

// Client — HTTP клиент API заказов витрины.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option — функциональная опция для настройки Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client (таймауты, транспорт, тесты).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken устанавливает Bearer токен для аутентифицированных запросов.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New создаёт клиент API витрины.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetToken обновляет Bearer токен (после повторного входа).
func (c *Client) SetToken(token string) {
	c.token = token
}

// === Типы API ===

// OrderItem — позиция заказа в формате API.
type OrderItem struct {
	Product string          `json:"product"`
	Name    string          `json:"name"`
	Qty     int32           `json:"qty"`
	Price   decimal.Decimal `json:"price"`
	Image   string          `json:"image,omitempty"`
}

// ShippingAddress — адрес доставки.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CreateOrderInput — данные для оформления заказа.
// Суммы клиент не передаёт: сервер рассчитывает их сам.
type CreateOrderInput struct {
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

// PaymentConfirmation — платёжное подтверждение провайдера.
type PaymentConfirmation struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	UpdateTime string          `json:"update_time,omitempty"`
	Payer      Payer           `json:"payer"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency,omitempty"`
}

// Payer — данные плательщика.
type Payer struct {
	EmailAddress string `json:"email_address,omitempty"`
}

// PaymentResult — сохранённый результат платежа.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
}

// Order — заказ в ответе API.
type Order struct {
	ID              string          `json:"id"`
	User            string          `json:"user"`
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`

	ItemsPrice    decimal.Decimal `json:"itemsPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	TaxPrice      decimal.Decimal `json:"taxPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`

	Status        string         `json:"status"`
	IsPaid        bool           `json:"isPaid"`
	PaidAt        *time.Time     `json:"paidAt,omitempty"`
	PaymentResult *PaymentResult `json:"paymentResult,omitempty"`
	IsDelivered   bool           `json:"isDelivered"`
	DeliveredAt   *time.Time     `json:"deliveredAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// APIError — ошибка API витрины.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// === Методы API ===

// CreateOrder оформляет новый заказ.
// POST /api/orders
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", input, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Order возвращает заказ по ID.
// GET /api/orders/:id
func (c *Client) Order(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+orderID, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// MyOrders возвращает заказы текущего пользователя.
// GET /api/orders/myorders
func (c *Client) MyOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/myorders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// AllOrders возвращает все заказы. Требует токен администратора.
// GET /api/orders
func (c *Client) AllOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// PayOrder передаёт платёжное подтверждение и возвращает оплаченный заказ.
// PUT /api/orders/:id/pay
func (c *Client) PayOrder(ctx context.Context, orderID string, conf PaymentConfirmation) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+orderID+"/pay", conf, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// DeliverOrder отмечает заказ доставленным. Требует токен администратора.
// PUT /api/orders/:id/deliver
func (c *Client) DeliverOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+orderID+"/deliver", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// PayPalClientID возвращает публичный client ID платёжного провайдера.
// GET /api/config/paypal
func (c *Client) PayPalClientID(ctx context.Context) (string, error) {
	var resp struct {
		ClientID string `json:"clientId"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/config/paypal", nil, &resp); err != nil {
		return "", err
	}
	return resp.ClientID, nil
}

// do выполняет запрос и декодирует ответ.
// Ответы с кодом >= 400 возвращаются как *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr := json.NewDecoder(resp.Body).Decode(apiErr); decodeErr != nil {
			apiErr.Code = "unknown"
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка декодирования ответа: %w", err)
	}

	return nil
}
