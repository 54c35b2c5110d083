package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Ticket описывает вид билета в каталоге парка.
type Ticket struct {
	ticketType   string
	price        decimal.Decimal
	validity     string
	description  string
	restrictions string
	discount     decimal.Decimal
}

// NewTicket создаёт билет, проверяя цену и скидку.
func NewTicket(ticketType string, price decimal.Decimal, validity, description, restrictions string, discount decimal.Decimal) (*Ticket, error) {
	t := &Ticket{
		ticketType:   ticketType,
		validity:     validity,
		description:  description,
		restrictions: restrictions,
	}
	if err := t.SetPrice(price); err != nil {
		return nil, err
	}
	if err := t.SetDiscount(discount); err != nil {
		return nil, err
	}
	return t, nil
}

// Type возвращает название вида билета, оно же ключ в каталоге.
func (t *Ticket) Type() string { return t.ticketType }

// Price возвращает базовую цену билета.
func (t *Ticket) Price() decimal.Decimal { return t.price }

// Validity возвращает срок действия билета.
func (t *Ticket) Validity() string { return t.validity }

// Description возвращает описание билета.
func (t *Ticket) Description() string { return t.description }

// Restrictions возвращает ограничения на использование билета.
func (t *Ticket) Restrictions() string { return t.restrictions }

// Discount возвращает скидку в процентах.
func (t *Ticket) Discount() decimal.Decimal { return t.discount }

// SetType меняет название вида билета.
func (t *Ticket) SetType(ticketType string) { t.ticketType = ticketType }

// SetPrice устанавливает цену. Отрицательная цена недопустима.
func (t *Ticket) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	t.price = price
	return nil
}

// SetValidity устанавливает срок действия.
func (t *Ticket) SetValidity(validity string) { t.validity = validity }

// SetDescription устанавливает описание.
func (t *Ticket) SetDescription(description string) { t.description = description }

// SetRestrictions устанавливает ограничения.
func (t *Ticket) SetRestrictions(restrictions string) { t.restrictions = restrictions }

// SetDiscount устанавливает скидку, допустимый диапазон от 0 до 100 включительно.
func (t *Ticket) SetDiscount(discount decimal.Decimal) error {
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrValidation)
	}
	t.discount = discount
	return nil
}

// DiscountedPrice возвращает цену с учётом скидки: price × (1 − discount/100).
func (t *Ticket) DiscountedPrice() decimal.Decimal {
	return t.price.Mul(decimal.NewFromInt(1).Sub(t.discount.Div(hundred)))
}

// Clone возвращает независимую копию билета.
func (t *Ticket) Clone() *Ticket {
	c := *t
	return &c
}

// TicketUpdate перечисляет изменяемые поля билета. Пустые указатели не меняют поле.
type TicketUpdate struct {
	Price        *decimal.Decimal
	Discount     *decimal.Decimal
	Validity     *string
	Description  *string
	Restrictions *string
}

// Apply применяет изменения к копии билета и возвращает её.
// При ошибке валидации исходный билет не меняется.
func (u TicketUpdate) Apply(t *Ticket) (*Ticket, error) {
	c := t.Clone()
	if u.Price != nil {
		if err := c.SetPrice(*u.Price); err != nil {
			return nil, err
		}
	}
	if u.Discount != nil {
		if err := c.SetDiscount(*u.Discount); err != nil {
			return nil, err
		}
	}
	if u.Validity != nil {
		c.SetValidity(*u.Validity)
	}
	if u.Description != nil {
		c.SetDescription(*u.Description)
	}
	if u.Restrictions != nil {
		c.SetRestrictions(*u.Restrictions)
	}
	return c, nil
}

type ticketJSON struct {
	Type         string          `json:"type"`
	Price        decimal.Decimal `json:"price"`
	Validity     string          `json:"validity"`
	Description  string          `json:"description"`
	Restrictions string          `json:"restrictions"`
	Discount     decimal.Decimal `json:"discount"`
}

// MarshalJSON реализует json.Marshaler.
func (t Ticket) MarshalJSON() ([]byte, error) {
	return json.Marshal(ticketJSON{
		Type:         t.ticketType,
		Price:        t.price,
		Validity:     t.validity,
		Description:  t.description,
		Restrictions: t.restrictions,
		Discount:     t.discount,
	})
}

// UnmarshalJSON реализует json.Unmarshaler и повторно проверяет цену и скидку.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	var raw ticketJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewTicket(raw.Type, raw.Price, raw.Validity, raw.Description, raw.Restrictions, raw.Discount)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

// DefaultTickets возвращает каталог по умолчанию, которым заполняется пустое хранилище.
func DefaultTickets() []*Ticket {
	defaults := []struct {
		name, validity, description, restrictions string
		price, discount                           int64
	}{
		{"Single-Day Pass", "1 day", "Access to the park for one day", "Valid only on selected date", 275, 0},
		{"Two-Day Pass", "2 days", "Access to the park for two consecutive days", "Cannot be split over multiple trips", 480, 0},
		{"Annual Membership", "1 year", "Unlimited access for one year", "Must be used by the same person", 1840, 10},
		{"Child Ticket", "1 day", "Discounted ticket for children (ages 3-12)", "Valid only on selected date, must be accompanied by an adult", 185, 15},
		{"Group Ticket (10+)", "1 day", "Special rate for groups of 10 or more", "Must be booked in advance, 20% off for groups of 10 or more", 220, 20},
		{"VIP Experience Pass", "1 day", "Includes expedited access and reserved seating for shows", "Limited availability, must be purchased in advance", 550, 5},
	}

	tickets := make([]*Ticket, 0, len(defaults))
	for _, d := range defaults {
		tickets = append(tickets, &Ticket{
			ticketType:   d.name,
			price:        decimal.NewFromInt(d.price),
			validity:     d.validity,
			description:  d.description,
			restrictions: d.restrictions,
			discount:     decimal.NewFromInt(d.discount),
		})
	}
	return tickets
}
