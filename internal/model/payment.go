package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentStatus описывает статус платежа.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

// Valid сообщает, является ли статус допустимым.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// Payment описывает оплату заказа пользователем.
// Статус платежа не связан со статусом заказа автоматически.
type Payment struct {
	id      string
	orderID string
	userID  string
	amount  decimal.Decimal
	method  string
	status  PaymentStatus
}

// NewPayment создаёт платёж в статусе Pending.
func NewPayment(id, orderID, userID string, amount decimal.Decimal, method string) *Payment {
	return &Payment{
		id:      id,
		orderID: orderID,
		userID:  userID,
		amount:  amount,
		method:  method,
		status:  PaymentStatusPending,
	}
}

// ID возвращает идентификатор платежа.
func (p *Payment) ID() string { return p.id }

// OrderID возвращает идентификатор оплаченного заказа.
func (p *Payment) OrderID() string { return p.orderID }

// UserID возвращает идентификатор плательщика.
func (p *Payment) UserID() string { return p.userID }

// Amount возвращает сумму платежа.
func (p *Payment) Amount() decimal.Decimal { return p.amount }

// Method возвращает способ оплаты, указанный пользователем.
func (p *Payment) Method() string { return p.method }

// Status возвращает текущий статус платежа.
func (p *Payment) Status() PaymentStatus { return p.status }

// SetStatus устанавливает статус платежа.
func (p *Payment) SetStatus(status PaymentStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: invalid payment status %q", ErrValidation, status)
	}
	p.status = status
	return nil
}

// DisplayDetails возвращает многострочное описание платежа.
func (p *Payment) DisplayDetails() string {
	return fmt.Sprintf("Payment ID: %s\nOrder ID: %s\nUser ID: %s\nAmount: %s\nPayment Method: %s\nStatus: %s",
		p.id, p.orderID, p.userID, p.amount.StringFixed(2), p.method, p.status)
}

// Clone возвращает копию платежа.
func (p *Payment) Clone() *Payment {
	c := *p
	return &c
}

type paymentJSON struct {
	ID      string          `json:"id"`
	OrderID string          `json:"order_id"`
	UserID  string          `json:"user_id"`
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
	Status  PaymentStatus   `json:"status"`
}

// MarshalJSON реализует json.Marshaler.
func (p *Payment) MarshalJSON() ([]byte, error) {
	return json.Marshal(paymentJSON{
		ID:      p.id,
		OrderID: p.orderID,
		UserID:  p.userID,
		Amount:  p.amount,
		Method:  p.method,
		Status:  p.status,
	})
}

// UnmarshalJSON реализует json.Unmarshaler.
func (p *Payment) UnmarshalJSON(data []byte) error {
	var raw paymentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Status.Valid() {
		return fmt.Errorf("%w: invalid payment status %q", ErrValidation, raw.Status)
	}
	*p = Payment{
		id:      raw.ID,
		orderID: raw.OrderID,
		userID:  raw.UserID,
		amount:  raw.Amount,
		method:  raw.Method,
		status:  raw.Status,
	}
	return nil
}
