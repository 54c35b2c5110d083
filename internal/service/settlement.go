package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/themepark/internal/model"
	"github.com/mmeshcher/themepark/internal/processor"
)

const settlementBatchSize = 100

// StartPaymentSettlement запускает фоновую сверку платежей в статусе Pending
// с платёжным процессором. Без процессора ничего не делает.
func (s *Service) StartPaymentSettlement(ctx context.Context) {
	if s.processor == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.settleBatch(ctx)
			}
		}
	}()
}

func (s *Service) pendingPaymentIDs(limit int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, p := range s.payments.All() {
		if p.Status() != model.PaymentStatusPending {
			continue
		}
		ids = append(ids, p.ID())
		if len(ids) == limit {
			break
		}
	}
	return ids
}

// settleBatch опрашивает процессор без блокировки сервиса и применяет результаты по одному.
func (s *Service) settleBatch(ctx context.Context) {
	for _, id := range s.pendingPaymentIDs(settlementBatchSize) {
		res, err := s.processor.PaymentStatus(ctx, id)

		var throttled *processor.ThrottledError
		switch {
		case errors.As(err, &throttled):
			s.logger.Debug("payment processor throttled", zap.Duration("retryAfter", throttled.RetryAfter))
			if !sleepCtx(ctx, throttled.RetryAfter) {
				return
			}
			continue
		case errors.Is(err, processor.ErrUnregistered):
			continue
		case err != nil:
			s.logger.Warn("payment processor request failed", zap.String("paymentID", id), zap.Error(err))
			continue
		}

		var status model.PaymentStatus
		switch res.Decision {
		case processor.DecisionApproved:
			status = model.PaymentStatusCompleted
		case processor.DecisionDeclined:
			status = model.PaymentStatusFailed
			s.logger.Info("payment declined", zap.String("paymentID", id), zap.String("reason", res.Reason))
		default:
			continue
		}

		s.mu.Lock()
		err = s.updatePaymentStatus(ctx, id, status)
		s.mu.Unlock()
		if err != nil {
			s.logger.Error("update payment status", zap.String("paymentID", id), zap.Error(err))
		}
	}
}

// sleepCtx ждёт d и возвращает false, если контекст отменён раньше.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
