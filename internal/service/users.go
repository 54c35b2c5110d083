package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/themepark/internal/model"
)

// CreateUser регистрирует пользователя с правами по умолчанию для роли.
// Занятый идентификатор возвращает model.ErrDuplicate, справочник при этом не меняется.
func (s *Service) CreateUser(ctx context.Context, id, name, email string, role model.Role, password string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.users.Has(id) {
		return nil, fmt.Errorf("%w: user %s", model.ErrDuplicate, id)
	}

	u, err := model.NewUser(id, name, email, role, password)
	if err != nil {
		return nil, err
	}

	if err := s.users.Upsert(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("userID", id), zap.String("role", string(role)))
	return u.Clone(), nil
}

// Login проверяет идентификатор и пароль и открывает сессию.
// Вызывающий получает model.ErrInvalidCredentials в обоих случаях отказа.
func (s *Service) Login(ctx context.Context, id, password string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.Get(id)
	if !ok {
		s.logger.Debug("login failed: user not found", zap.String("userID", id))
		return nil, model.ErrInvalidCredentials
	}
	if !u.CheckPassword(password) {
		s.logger.Debug("login failed: invalid password", zap.String("userID", id))
		return nil, model.ErrInvalidCredentials
	}

	s.logger.Info("user logged in", zap.String("userID", id))
	return model.NewSession(u), nil
}

// Logout завершает сессию. Без сессии возвращает model.ErrNoSession.
func (s *Service) Logout(_ context.Context, session *model.Session) error {
	if session == nil {
		return model.ErrNoSession
	}
	s.logger.Info("user logged out", zap.String("userID", session.UserID))
	return nil
}

// Resume восстанавливает сессию по идентификатору пользователя с актуальной ролью.
func (s *Service) Resume(_ context.Context, userID string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.Get(userID)
	if !ok {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, userID)
	}
	return model.NewSession(u), nil
}

// User возвращает копию записи пользователя.
func (s *Service) User(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}
	return u.Clone(), nil
}

// Users возвращает копии всех пользователей в порядке регистрации.
func (s *Service) Users(_ context.Context) []*model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.users.All()
	res := make([]*model.User, 0, len(all))
	for _, u := range all {
		res = append(res, u.Clone())
	}
	return res
}

// DisplayAll возвращает строки с данными всех пользователей.
func (s *Service) DisplayAll(ctx context.Context) []string {
	users := s.Users(ctx)
	lines := make([]string, 0, len(users))
	for _, u := range users {
		lines = append(lines, u.DisplayInfo())
	}
	return lines
}

// DeleteUser удаляет пользователя. Доступно только администратору.
// Заказы и платежи удалённого пользователя остаются в журналах.
func (s *Service) DeleteUser(ctx context.Context, session *model.Session, id string) error {
	if session == nil {
		return fmt.Errorf("%w: you must be logged in to delete a user", model.ErrPermission)
	}
	if !session.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete users", model.ErrPermission)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.users.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}

	s.logger.Info("user deleted", zap.String("userID", id), zap.String("by", session.UserID))
	return nil
}

// UpdateUser изменяет собственную учётную запись владельца сессии.
// Если хотя бы одно поле не проходит проверку, запись не меняется.
// Сменить роль может только администратор.
func (s *Service) UpdateUser(ctx context.Context, session *model.Session, id string, upd model.UserUpdate) (*model.User, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: you must be logged in to update your account", model.ErrPermission)
	}
	if session.UserID != id {
		return nil, fmt.Errorf("%w: you can only update your own account", model.ErrPermission)
	}
	if upd.Role != nil && !session.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can change account roles", model.ErrPermission)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}

	updated, err := upd.Apply(u)
	if err != nil {
		return nil, err
	}

	if err := s.users.Upsert(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("userID", id))
	return updated.Clone(), nil
}
