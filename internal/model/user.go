package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/mmeshcher/themepark/internal/validation"
)

// Role описывает роль пользователя.
type Role string

const (
	RoleCustomer Role = "Customer"
	RoleAdmin    Role = "Admin"
)

// ParseRole проверяет, что строка является допустимой ролью.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: invalid user type %q, must be 'Customer' or 'Admin'", ErrValidation, s)
	}
}

var defaultPermissions = map[Role][]string{
	RoleCustomer: {
		"View own account",
		"Update account info",
		"Place ticket orders",
		"Cancel orders",
		"View booking history",
		"Browse available tickets",
		"View events and attractions",
	},
	RoleAdmin: {
		"Create, Update, Delete users",
		"Manage ticket bookings",
		"Modify booking statuses",
		"View all transactions",
		"Generate booking reports",
		"Manage system settings",
		"Modify user permissions",
		"Audit trail",
		"Manage content",
	},
}

// DefaultPermissions возвращает набор прав по умолчанию для роли.
func DefaultPermissions(role Role) []string {
	return slices.Clone(defaultPermissions[role])
}

// User представляет учётную запись посетителя или администратора.
// Пароль хранится и сравнивается в открытом виде.
type User struct {
	id          string
	name        string
	email       string
	role        Role
	password    string
	permissions []string
}

// NewUser создаёт пользователя с правами по умолчанию для его роли.
func NewUser(id, name, email string, role Role, password string) (*User, error) {
	if !validation.IsValidUserID(id) {
		return nil, fmt.Errorf("%w: user id must be non-empty and contain no spaces", ErrValidation)
	}
	u := &User{id: id, name: name}
	if err := u.SetRole(role); err != nil {
		return nil, err
	}
	if err := u.SetEmail(email); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	u.permissions = DefaultPermissions(role)
	return u, nil
}

// ID возвращает идентификатор пользователя.
func (u *User) ID() string { return u.id }

// Name возвращает имя пользователя.
func (u *User) Name() string { return u.name }

// Email возвращает адрес электронной почты.
func (u *User) Email() string { return u.email }

// Role возвращает роль пользователя.
func (u *User) Role() Role { return u.role }

// Permissions возвращает копию списка прав.
func (u *User) Permissions() []string { return slices.Clone(u.permissions) }

// CheckPassword сравнивает пароль с сохранённым.
func (u *User) CheckPassword(password string) bool {
	return u.password == password
}

// SetName устанавливает имя.
func (u *User) SetName(name string) { u.name = name }

// SetEmail устанавливает адрес электронной почты.
func (u *User) SetEmail(email string) error {
	if !validation.IsValidEmail(email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	u.email = email
	return nil
}

// SetPassword устанавливает пароль не короче validation.MinPasswordLength символов.
func (u *User) SetPassword(password string) error {
	if !validation.IsValidPassword(password) {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, validation.MinPasswordLength)
	}
	u.password = password
	return nil
}

// SetRole меняет роль. Список прав при этом не меняется.
func (u *User) SetRole(role Role) error {
	r, err := ParseRole(string(role))
	if err != nil {
		return err
	}
	u.role = r
	return nil
}

// SetPermissions заменяет список прав.
func (u *User) SetPermissions(permissions []string) {
	u.permissions = append([]string{}, permissions...)
}

// AddPermission добавляет право, если его ещё нет.
func (u *User) AddPermission(permission string) {
	if !slices.Contains(u.permissions, permission) {
		u.permissions = append(u.permissions, permission)
	}
}

// RemovePermission удаляет право, если оно есть.
func (u *User) RemovePermission(permission string) {
	u.permissions = slices.DeleteFunc(u.permissions, func(p string) bool { return p == permission })
}

// HasPermission сообщает, есть ли у пользователя указанное право.
func (u *User) HasPermission(permission string) bool {
	return slices.Contains(u.permissions, permission)
}

// DisplayInfo возвращает строку с данными пользователя для вывода в списках.
func (u *User) DisplayInfo() string {
	return fmt.Sprintf("User ID: %s, Name: %s, Email: %s, User Type: %s, Permissions: [%s]",
		u.id, u.name, u.email, u.role, strings.Join(u.permissions, ", "))
}

// Clone возвращает независимую копию пользователя.
func (u *User) Clone() *User {
	c := *u
	c.permissions = slices.Clone(u.permissions)
	return &c
}

// UserUpdate перечисляет поля, которые владелец может изменить в своей учётной записи.
// Пустые указатели не меняют поле.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
}

// IsEmpty сообщает, что запрос не содержит изменений.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Password == nil && u.Role == nil
}

// Apply применяет изменения к копии пользователя и возвращает её.
// При ошибке валидации любого поля исходная запись не меняется.
func (u UserUpdate) Apply(user *User) (*User, error) {
	c := user.Clone()
	if u.Name != nil {
		c.SetName(*u.Name)
	}
	if u.Email != nil {
		if err := c.SetEmail(*u.Email); err != nil {
			return nil, err
		}
	}
	if u.Password != nil {
		if err := c.SetPassword(*u.Password); err != nil {
			return nil, err
		}
	}
	if u.Role != nil {
		if err := c.SetRole(*u.Role); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type userJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        Role     `json:"role"`
	Password    string   `json:"password"`
	Permissions []string `json:"permissions"`
}

// MarshalJSON реализует json.Marshaler.
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userJSON{
		ID:          u.id,
		Name:        u.name,
		Email:       u.email,
		Role:        u.role,
		Password:    u.password,
		Permissions: u.permissions,
	})
}

// UnmarshalJSON реализует json.Unmarshaler.
// Сохранённый список прав восстанавливается как есть, даже если он пуст.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw userJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	role, err := ParseRole(string(raw.Role))
	if err != nil {
		return err
	}
	*u = User{
		id:          raw.ID,
		name:        raw.Name,
		email:       raw.Email,
		role:        role,
		password:    raw.Password,
		permissions: raw.Permissions,
	}
	if u.permissions == nil {
		u.permissions = []string{}
	}
	return nil
}
