package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/themepark/internal/model"
)

// CreatePayment сохраняет новый платёж в статусе Pending.
// Статус связанного заказа не меняется.
func (s *Service) CreatePayment(ctx context.Context, id, orderID, userID string, amount decimal.Decimal, method string) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.createPayment(ctx, id, orderID, userID, amount, method)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

func (s *Service) createPayment(ctx context.Context, id, orderID, userID string, amount decimal.Decimal, method string) (*model.Payment, error) {
	if s.payments.Has(id) {
		return nil, fmt.Errorf("%w: payment %s", model.ErrDuplicate, id)
	}

	p := model.NewPayment(id, orderID, userID, amount, method)
	if err := s.payments.Upsert(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("payment created",
		zap.String("paymentID", id),
		zap.String("orderID", orderID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("method", method),
	)
	return p, nil
}

// Payment возвращает копию платежа.
func (s *Service) Payment(_ context.Context, id string) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: payment %s", model.ErrNotFound, id)
	}
	return p.Clone(), nil
}

// UpdatePaymentStatus устанавливает статус платежа.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updatePaymentStatus(ctx, id, status)
}

func (s *Service) updatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	p, ok := s.payments.Get(id)
	if !ok {
		return fmt.Errorf("%w: payment %s", model.ErrNotFound, id)
	}
	updated := p.Clone()
	if err := updated.SetStatus(status); err != nil {
		return err
	}
	if err := s.payments.Upsert(ctx, updated); err != nil {
		return err
	}

	s.logger.Info("payment status changed", zap.String("paymentID", id), zap.String("status", string(status)))
	return nil
}

// PaymentsByUser возвращает платежи пользователя в порядке создания.
func (s *Service) PaymentsByUser(_ context.Context, userID string) []*model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*model.Payment
	for _, p := range s.payments.All() {
		if p.UserID() == userID {
			res = append(res, p.Clone())
		}
	}
	return res
}

// TotalRevenue суммирует все платежи независимо от статуса, включая Pending и Failed.
func (s *Service) TotalRevenue(_ context.Context) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, p := range s.payments.All() {
		total = total.Add(p.Amount())
	}
	return total
}
