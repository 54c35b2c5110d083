// Package ledger реализует хранение записей одного вида в памяти
// с полной перезаписью в хранилище при каждом сохранении.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Store описывает хранилище сериализованных журналов.
// Load возвращает nil без ошибки, если журнал ещё не сохранялся.
type Store interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
}

// Ledger хранит записи по естественному идентификатору в порядке добавления.
// Ledger не потокобезопасен, синхронизация остаётся на вызывающей стороне.
type Ledger[T any] struct {
	name  string
	store Store
	key   func(T) string

	ids   []string
	items map[string]T
}

// New создаёт пустой журнал с именем name. key извлекает идентификатор записи.
func New[T any](name string, store Store, key func(T) string) *Ledger[T] {
	return &Ledger[T]{
		name:  name,
		store: store,
		key:   key,
		items: make(map[string]T),
	}
}

// Name возвращает имя журнала в хранилище.
func (l *Ledger[T]) Name() string { return l.name }

// Load заменяет содержимое журнала сохранённым состоянием.
// Отсутствующий или пустой журнал не считается ошибкой.
func (l *Ledger[T]) Load(ctx context.Context) error {
	data, err := l.store.Load(ctx, l.name)
	if err != nil {
		return fmt.Errorf("load ledger %s: %w", l.name, err)
	}

	l.ids = nil
	l.items = make(map[string]T)

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode ledger %s: %w", l.name, err)
	}
	for _, r := range records {
		l.Put(r)
	}
	return nil
}

// Save сериализует весь журнал и перезаписывает его в хранилище.
func (l *Ledger[T]) Save(ctx context.Context) error {
	data, err := json.Marshal(l.All())
	if err != nil {
		return fmt.Errorf("encode ledger %s: %w", l.name, err)
	}
	if err := l.store.Save(ctx, l.name, data); err != nil {
		return fmt.Errorf("save ledger %s: %w", l.name, err)
	}
	return nil
}

// Upsert добавляет или заменяет запись и сохраняет журнал.
// Если сохранение не удалось, журнал в памяти остаётся прежним.
func (l *Ledger[T]) Upsert(ctx context.Context, v T) error {
	return l.commit(ctx, func() { l.Put(v) })
}

// Remove удаляет запись и сохраняет журнал. Отсутствующая запись даёт false без обращения к хранилищу.
// Если сохранение не удалось, запись остаётся на прежнем месте.
func (l *Ledger[T]) Remove(ctx context.Context, id string) (bool, error) {
	if !l.Has(id) {
		return false, nil
	}
	if err := l.commit(ctx, func() { l.Delete(id) }); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Ledger[T]) commit(ctx context.Context, change func()) error {
	ids, items := slices.Clone(l.ids), maps.Clone(l.items)
	change()
	if err := l.Save(ctx); err != nil {
		l.ids, l.items = ids, items
		return err
	}
	return nil
}

// Get возвращает запись по идентификатору.
func (l *Ledger[T]) Get(id string) (T, bool) {
	v, ok := l.items[id]
	return v, ok
}

// Has сообщает, есть ли запись с таким идентификатором.
func (l *Ledger[T]) Has(id string) bool {
	_, ok := l.items[id]
	return ok
}

// Put добавляет запись в конец или заменяет существующую, сохраняя её позицию.
func (l *Ledger[T]) Put(v T) {
	id := l.key(v)
	if _, ok := l.items[id]; !ok {
		l.ids = append(l.ids, id)
	}
	l.items[id] = v
}

// Delete удаляет запись и сообщает, существовала ли она.
func (l *Ledger[T]) Delete(id string) bool {
	if _, ok := l.items[id]; !ok {
		return false
	}
	delete(l.items, id)
	l.ids = slices.DeleteFunc(l.ids, func(s string) bool { return s == id })
	return true
}

// All возвращает записи в порядке добавления.
func (l *Ledger[T]) All() []T {
	res := make([]T, 0, len(l.ids))
	for _, id := range l.ids {
		res = append(res, l.items[id])
	}
	return res
}

// Last возвращает последнюю добавленную запись.
func (l *Ledger[T]) Last() (T, bool) {
	if len(l.ids) == 0 {
		var zero T
		return zero, false
	}
	return l.items[l.ids[len(l.ids)-1]], true
}

// Len возвращает количество записей.
func (l *Ledger[T]) Len() int { return len(l.ids) }
