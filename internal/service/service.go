// Package service реализует бизнес-логику системы бронирования билетов парка.
package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mmeshcher/themepark/internal/ledger"
	"github.com/mmeshcher/themepark/internal/model"
	"github.com/mmeshcher/themepark/internal/processor"
)

// Имена журналов в хранилище.
const (
	usersLedger    = "users"
	ordersLedger   = "orders"
	paymentsLedger = "payments"
	ticketsLedger  = "tickets"
)

// Store описывает хранилище журналов, используемое сервисом.
type Store interface {
	ledger.Store
	Close() error
}

// PaymentProcessor описывает внешний процессор, подтверждающий платежи.
type PaymentProcessor interface {
	PaymentStatus(ctx context.Context, paymentID string) (*processor.Result, error)
}

// Service содержит бизнес-логику: справочник пользователей, каталог билетов,
// журналы заказов и платежей. Каждая изменяющая операция сохраняет свой журнал
// до возврата управления.
type Service struct {
	// mu сериализует операции HTTP-оболочки и фоновой сверки платежей.
	mu sync.Mutex

	store     Store
	processor PaymentProcessor
	logger    *zap.Logger

	users    *ledger.Ledger[*model.User]
	orders   *ledger.Ledger[*model.Order]
	payments *ledger.Ledger[*model.Payment]
	tickets  *ledger.Ledger[*model.Ticket]
}

// NewService создаёт сервис поверх хранилища. processor может быть nil,
// тогда платежи подтверждаются сразу при оплате.
func NewService(store Store, processor PaymentProcessor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		processor: processor,
		logger:    logger,
		users:     ledger.New(usersLedger, store, (*model.User).ID),
		orders:    ledger.New(ordersLedger, store, (*model.Order).ID),
		payments:  ledger.New(paymentsLedger, store, (*model.Payment).ID),
		tickets:   ledger.New(ticketsLedger, store, (*model.Ticket).Type),
	}
}

// Load загружает все журналы. Пустой каталог заполняется билетами по умолчанию и сохраняется.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range []interface{ Load(context.Context) error }{s.users, s.orders, s.payments, s.tickets} {
		if err := l.Load(ctx); err != nil {
			return err
		}
	}

	if s.tickets.Len() == 0 {
		for _, t := range model.DefaultTickets() {
			s.tickets.Put(t)
		}
		if err := s.tickets.Save(ctx); err != nil {
			return err
		}
		s.logger.Info("ticket catalog seeded with defaults", zap.Int("tickets", s.tickets.Len()))
	}

	s.logger.Info("ledgers loaded",
		zap.Int("users", s.users.Len()),
		zap.Int("orders", s.orders.Len()),
		zap.Int("payments", s.payments.Len()),
		zap.Int("tickets", s.tickets.Len()),
	)
	return nil
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
