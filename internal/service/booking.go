package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/themepark/internal/model"
)

const paymentIDPrefix = "PAY-"

// BookTickets оформляет заказ на quantity билетов одного вида для владельца сессии.
// Нулевой visitDate оставляет дату посещения невыбранной.
func (s *Service) BookTickets(ctx context.Context, session *model.Session, ticketName string, quantity int, visitDate time.Time) (*model.Order, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: you must be logged in to book tickets", model.ErrPermission)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets.Get(ticketName)
	if !ok {
		return nil, fmt.Errorf("%w: ticket %q", model.ErrNotFound, ticketName)
	}

	id, err := s.nextOrderID()
	if err != nil {
		return nil, err
	}

	tickets := make([]model.Ticket, quantity)
	for i := range tickets {
		tickets[i] = *t
	}

	o := model.NewOrder(id, session.UserID, tickets)
	if err := o.SetVisitDate(visitDate); err != nil {
		return nil, err
	}
	if err := s.createOrder(ctx, o); err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// PayForOrder оплачивает заказ владельца сессии, находящийся в статусе Pending.
// Создаёт платёж на сумму заказа и переводит заказ в Confirmed. Если второй шаг не удалось
// сохранить, созданный платёж убирается. Без платёжного процессора платёж сразу получает статус Completed.
func (s *Service) PayForOrder(ctx context.Context, session *model.Session, orderID, method string) (*model.Payment, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: you must be logged in to pay for an order", model.ErrPermission)
	}
	if method == "" {
		return nil, fmt.Errorf("%w: payment method is required", model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.ownedOrder(session, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status() != model.OrderStatusPending {
		return nil, fmt.Errorf("%w: you can only pay for orders with a status of 'Pending'", model.ErrValidation)
	}

	p, err := s.createPayment(ctx, paymentIDPrefix+uuid.NewString(), o.ID(), session.UserID, o.TotalPrice(), method)
	if err != nil {
		return nil, err
	}

	if _, err := s.updateOrderStatus(ctx, o.ID(), model.OrderStatusConfirmed); err != nil {
		s.discardPayment(ctx, p.ID())
		return nil, err
	}

	if s.processor == nil {
		if err := s.updatePaymentStatus(ctx, p.ID(), model.PaymentStatusCompleted); err != nil {
			s.discardPayment(ctx, p.ID())
			s.restoreOrder(ctx, o)
			return nil, err
		}
	}

	res, _ := s.payments.Get(p.ID())
	return res.Clone(), nil
}

// discardPayment убирает платёж, созданный в рамках неудавшейся оплаты.
func (s *Service) discardPayment(ctx context.Context, id string) {
	if _, err := s.payments.Remove(ctx, id); err != nil {
		s.logger.Error("failed to discard payment", zap.String("paymentID", id), zap.Error(err))
	}
}

// restoreOrder возвращает в журнал заказ в состоянии до неудавшейся оплаты.
func (s *Service) restoreOrder(ctx context.Context, o *model.Order) {
	if err := s.orders.Upsert(ctx, o); err != nil {
		s.logger.Error("failed to restore order", zap.String("orderID", o.ID()), zap.Error(err))
	}
}

// CancelOrder отменяет заказ владельца сессии.
func (s *Service) CancelOrder(ctx context.Context, session *model.Session, orderID string) (*model.Order, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: you must be logged in to cancel an order", model.ErrPermission)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.ownedOrder(session, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status() == model.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: order %s is already cancelled", model.ErrValidation, orderID)
	}

	cancelled, err := s.updateOrderStatus(ctx, orderID, model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled", zap.String("orderID", orderID), zap.String("userID", session.UserID))
	return cancelled.Clone(), nil
}

// ownedOrder находит заказ и проверяет, что он принадлежит владельцу сессии.
// Чужой заказ выглядит для вызывающего как отсутствующий.
func (s *Service) ownedOrder(session *model.Session, orderID string) (*model.Order, error) {
	o, err := s.order(orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID() != session.UserID {
		return nil, fmt.Errorf("%w: order %s", model.ErrNotFound, orderID)
	}
	return o, nil
}
