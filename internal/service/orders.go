package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/themepark/internal/model"
)

// CreateOrder сохраняет новый заказ в статусе Pending.
// Занятый идентификатор возвращает model.ErrDuplicate.
func (s *Service) CreateOrder(ctx context.Context, id, userID string, tickets []model.Ticket) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := model.NewOrder(id, userID, tickets)
	if err := s.createOrder(ctx, o); err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

func (s *Service) createOrder(ctx context.Context, o *model.Order) error {
	if s.orders.Has(o.ID()) {
		return fmt.Errorf("%w: order %s", model.ErrDuplicate, o.ID())
	}

	if err := s.orders.Upsert(ctx, o); err != nil {
		return err
	}

	s.logger.Info("order created",
		zap.String("orderID", o.ID()),
		zap.String("userID", o.UserID()),
		zap.Int("tickets", len(o.Tickets())),
		zap.String("total", o.TotalPrice().StringFixed(2)),
	)
	return nil
}

// Order возвращает копию заказа.
func (s *Service) Order(_ context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.order(id)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

func (s *Service) order(id string) (*model.Order, error) {
	o, ok := s.orders.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: order %s", model.ErrNotFound, id)
	}
	return o, nil
}

// UpdateOrderStatus устанавливает статус заказа.
// Недопустимый статус возвращает model.ErrValidation и не меняет заказ.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.updateOrderStatus(ctx, id, status)
	return err
}

// updateOrderStatus заменяет заказ в журнале изменённой копией и возвращает её.
func (s *Service) updateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	o, err := s.order(id)
	if err != nil {
		return nil, err
	}

	updated := o.Clone()
	if err := updated.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.orders.Upsert(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.String("orderID", id),
		zap.String("from", string(o.Status())),
		zap.String("to", string(status)),
	)
	return updated, nil
}

// NextOrderID вычисляет идентификатор следующего заказа по последнему созданному.
// Счётчик не глобальный: два процесса над одним хранилищем могут выдать одинаковые идентификаторы.
func (s *Service) NextOrderID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nextOrderID()
}

func (s *Service) nextOrderID() (string, error) {
	last, ok := s.orders.Last()
	if !ok {
		return model.NextOrderID("")
	}
	return model.NextOrderID(last.ID())
}

// OrdersByUser возвращает заказы пользователя в порядке создания.
func (s *Service) OrdersByUser(_ context.Context, userID string) []*model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterOrders(func(o *model.Order) bool {
		return o.UserID() == userID
	})
}

// OrderHistory возвращает подтверждённые заказы пользователя.
func (s *Service) OrderHistory(_ context.Context, userID string) []*model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterOrders(func(o *model.Order) bool {
		return o.UserID() == userID && o.Status() == model.OrderStatusConfirmed
	})
}

func (s *Service) filterOrders(keep func(*model.Order) bool) []*model.Order {
	var res []*model.Order
	for _, o := range s.orders.All() {
		if keep(o) {
			res = append(res, o.Clone())
		}
	}
	return res
}
