package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/themepark/internal/model"
)

// Tickets возвращает копии билетов каталога в порядке добавления.
func (s *Service) Tickets(_ context.Context) []*model.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.tickets.All()
	res := make([]*model.Ticket, 0, len(all))
	for _, t := range all {
		res = append(res, t.Clone())
	}
	return res
}

// Ticket возвращает копию билета по названию вида.
func (s *Service) Ticket(_ context.Context, name string) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: ticket %q", model.ErrNotFound, name)
	}
	return t.Clone(), nil
}

// UpdateTicket меняет цену, скидку или описание билета. Доступно только администратору.
// Уже оформленные заказы хранят свои копии билетов и не меняются.
func (s *Service) UpdateTicket(ctx context.Context, session *model.Session, name string, upd model.TicketUpdate) (*model.Ticket, error) {
	if !session.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can change tickets", model.ErrPermission)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: ticket %q", model.ErrNotFound, name)
	}

	updated, err := upd.Apply(t)
	if err != nil {
		return nil, err
	}

	if err := s.tickets.Upsert(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info("ticket updated",
		zap.String("ticket", name),
		zap.String("price", updated.Price().String()),
		zap.String("discount", updated.Discount().String()),
	)
	return updated.Clone(), nil
}
