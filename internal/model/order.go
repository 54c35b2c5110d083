package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/themepark/internal/validation"
)

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Valid сообщает, является ли статус допустимым.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCancelled:
		return true
	}
	return false
}

// Order описывает покупку одного или нескольких билетов пользователем.
// Количество N билетов одного вида хранится как N копий билета.
type Order struct {
	id        string
	userID    string
	tickets   []Ticket
	createdAt time.Time
	visitDate time.Time
	status    OrderStatus
}

// NewOrder создаёт заказ в статусе Pending с текущим временем создания.
// Билеты копируются, поэтому последующие правки каталога не меняют заказ.
func NewOrder(id, userID string, tickets []Ticket) *Order {
	return &Order{
		id:        id,
		userID:    userID,
		tickets:   append([]Ticket{}, tickets...),
		createdAt: time.Now().UTC(),
		status:    OrderStatusPending,
	}
}

// NextOrderID возвращает идентификатор, следующий за lastID.
// Пустой lastID означает, что заказов ещё нет, и возвращается ORD001.
func NextOrderID(lastID string) (string, error) {
	if lastID == "" {
		return validation.OrderIDPrefix + "001", nil
	}
	n, ok := validation.ParseOrderSequence(lastID)
	if !ok {
		return "", fmt.Errorf("%w: malformed order id %q", ErrValidation, lastID)
	}
	return fmt.Sprintf("%s%03d", validation.OrderIDPrefix, n+1), nil
}

// ParseVisitDate разбирает дату посещения в формате YYYY-MM-DD.
// Пустая строка означает, что дата не выбрана, и даёт нулевое время.
func ParseVisitDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: visit date must be in YYYY-MM-DD format", ErrValidation)
	}
	return d, nil
}

// ID возвращает идентификатор заказа.
func (o *Order) ID() string { return o.id }

// UserID возвращает идентификатор владельца заказа.
func (o *Order) UserID() string { return o.userID }

// Tickets возвращает копию списка билетов заказа.
func (o *Order) Tickets() []Ticket { return append([]Ticket{}, o.tickets...) }

// CreatedAt возвращает время создания заказа.
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// VisitDate возвращает дату посещения парка. Нулевое значение означает, что дата не выбрана.
func (o *Order) VisitDate() time.Time { return o.visitDate }

// SetVisitDate задаёт дату посещения, отбрасывая время суток.
// Дата раньше дня оформления заказа отклоняется, нулевое значение снимает дату.
func (o *Order) SetVisitDate(d time.Time) error {
	if d.IsZero() {
		o.visitDate = time.Time{}
		return nil
	}
	day := dateOf(d)
	if day.Before(dateOf(o.createdAt)) {
		return fmt.Errorf("%w: visit date %s is before the order date", ErrValidation, day.Format(time.DateOnly))
	}
	o.visitDate = day
	return nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Status возвращает текущий статус заказа.
func (o *Order) Status() OrderStatus { return o.status }

// SetStatus устанавливает статус. Недопустимое значение не меняет заказ.
func (o *Order) SetStatus(status OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: invalid order status %q", ErrValidation, status)
	}
	o.status = status
	return nil
}

// TotalPrice возвращает сумму цен билетов с учётом скидок.
func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range o.tickets {
		total = total.Add(o.tickets[i].DiscountedPrice())
	}
	return total
}

// DisplayDetails возвращает многострочное описание заказа.
func (o *Order) DisplayDetails() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order ID: %s\n", o.id)
	fmt.Fprintf(&b, "User ID: %s\n", o.userID)
	fmt.Fprintf(&b, "Order Date: %s\n", o.createdAt.Format(time.DateTime))
	if !o.visitDate.IsZero() {
		fmt.Fprintf(&b, "Visit Date: %s\n", o.visitDate.Format(time.DateOnly))
	}
	fmt.Fprintf(&b, "Status: %s\n", o.status)
	b.WriteString("Tickets:\n")
	for i := range o.tickets {
		fmt.Fprintf(&b, "Ticket Type: %s, Price: %s\n", o.tickets[i].Type(), o.tickets[i].DiscountedPrice().StringFixed(2))
	}
	fmt.Fprintf(&b, "Total Price: %s", o.TotalPrice().StringFixed(2))
	return b.String()
}

// Clone возвращает независимую копию заказа.
func (o *Order) Clone() *Order {
	c := *o
	c.tickets = append([]Ticket{}, o.tickets...)
	return &c
}

type orderJSON struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Tickets   []Ticket    `json:"tickets"`
	CreatedAt time.Time   `json:"created_at"`
	VisitDate string      `json:"visit_date,omitempty"`
	Status    OrderStatus `json:"status"`
}

// MarshalJSON реализует json.Marshaler.
func (o *Order) MarshalJSON() ([]byte, error) {
	raw := orderJSON{
		ID:        o.id,
		UserID:    o.userID,
		Tickets:   o.tickets,
		CreatedAt: o.createdAt,
		Status:    o.status,
	}
	if !o.visitDate.IsZero() {
		raw.VisitDate = o.visitDate.Format(time.DateOnly)
	}
	return json.Marshal(raw)
}

// UnmarshalJSON реализует json.Unmarshaler.
func (o *Order) UnmarshalJSON(data []byte) error {
	var raw orderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Status.Valid() {
		return fmt.Errorf("%w: invalid order status %q", ErrValidation, raw.Status)
	}
	visitDate, err := ParseVisitDate(raw.VisitDate)
	if err != nil {
		return err
	}
	*o = Order{
		id:        raw.ID,
		userID:    raw.UserID,
		tickets:   raw.Tickets,
		createdAt: raw.CreatedAt,
		visitDate: visitDate,
		status:    raw.Status,
	}
	if o.tickets == nil {
		o.tickets = []Ticket{}
	}
	return nil
}
