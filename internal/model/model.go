// Package model содержит доменные сущности системы бронирования билетов парка.
package model

import (
	"errors"
	"time"
)

// Ошибки доменного уровня. Конкретные ошибки оборачивают их через fmt.Errorf("%w: ...").
var (
	// ErrValidation возвращается при некорректном значении поля.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound возвращается, если запись с указанным идентификатором отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrPermission возвращается, если у активной сессии нет нужной роли или прав владельца.
	ErrPermission = errors.New("permission denied")
	// ErrDuplicate возвращается при создании записи с уже занятым идентификатором.
	ErrDuplicate = errors.New("already exists")
	// ErrInvalidCredentials возвращается при неудачной попытке входа.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoSession возвращается, если операция требует активной сессии.
	ErrNoSession = errors.New("no active session")
)

// Session описывает активную сессию пользователя.
// Создаётся при входе и отбрасывается при выходе.
type Session struct {
	UserID    string
	Role      Role
	StartedAt time.Time
}

// NewSession создаёт сессию для указанного пользователя.
func NewSession(u *User) *Session {
	return &Session{
		UserID:    u.ID(),
		Role:      u.Role(),
		StartedAt: time.Now().UTC(),
	}
}

// IsAdmin сообщает, принадлежит ли сессия администратору.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
