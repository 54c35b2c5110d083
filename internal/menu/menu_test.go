package menu

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/themepark/internal/model"
	"github.com/mmeshcher/themepark/internal/repository"
	"github.com/mmeshcher/themepark/internal/service"
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()

	store, err := repository.NewFileStore(t.TempDir())
	require.NoError(t, err)

	svc := service.NewService(store, nil, nil)
	require.NoError(t, svc.Load(context.Background()))

	_, err = svc.CreateUser(context.Background(), "u1", "Alice", "alice@example.com", model.RoleCustomer, "pw123456")
	require.NoError(t, err)
	return svc
}

func run(t *testing.T, svc Service, lines ...string) string {
	t.Helper()

	var out bytes.Buffer
	m := New(svc, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	require.NoError(t, m.Run(context.Background()))
	return out.String()
}

func TestMenu_BookAndPay(t *testing.T) {
	svc := newTestService(t)

	out := run(t, svc,
		"1", "u1", "pw123456",
		"2", "Single-Day Pass", "2", "", "y",
		"3", "2", "ORD001", "Card", "y", "3", "5",
		"6",
	)

	assert.Contains(t, out, "Welcome, Alice.")
	assert.Contains(t, out, "Total price: $550.00")
	assert.Contains(t, out, "Booking successful! Order ID: ORD001")
	assert.Contains(t, out, "Payment successful! Order ID: ORD001 is now confirmed.")
	assert.Contains(t, out, "Status: Confirmed")
	assert.Contains(t, out, "Exiting the system.")

	assert.True(t, svc.TotalRevenue(context.Background()).Equal(decimal.NewFromInt(550)))
}

func TestMenu_RequiresLogin(t *testing.T) {
	out := run(t, newTestService(t), "2", "3", "4", "5", "6")

	assert.Contains(t, out, "You must be logged in to book tickets.")
	assert.Contains(t, out, "You must be logged in to access orders and payments.")
	assert.Contains(t, out, "You must be logged in to manage accounts.")
	assert.Contains(t, out, "No user is logged in.")
}

func TestMenu_LoginFailure(t *testing.T) {
	out := run(t, newTestService(t), "1", "u1", "wrong", "6")

	assert.Contains(t, out, "Login failed. Please try again.")
}

func TestMenu_InvalidInputReturnsToMenu(t *testing.T) {
	svc := newTestService(t)

	out := run(t, svc,
		"9",
		"1", "u1", "pw123456",
		"2", "Moon Pass",
		"2", "Child Ticket", "zero",
		"6",
	)

	assert.Contains(t, out, "Invalid option. Please try again.")
	assert.Contains(t, out, "Invalid ticket name. Please try again.")
	assert.Contains(t, out, "quantity must be a whole number greater than zero")
	assert.Empty(t, svc.OrdersByUser(context.Background(), "u1"))
}

func TestMenu_CustomerCannotDelete(t *testing.T) {
	svc := newTestService(t)

	out := run(t, svc,
		"1", "u1", "pw123456",
		"4", "2", "u1",
		"6",
	)

	assert.Contains(t, out, "Error: permission denied")
	_, err := svc.User(context.Background(), "u1")
	assert.NoError(t, err)
}

func TestMenu_UpdateOwnAccount(t *testing.T) {
	svc := newTestService(t)

	out := run(t, svc,
		"1", "u1", "pw123456",
		"4", "3", "Alice Cooper", "", "",
		"6",
	)

	assert.Contains(t, out, "Account updated successfully.")
	u, err := svc.User(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", u.Name())
	assert.Equal(t, "alice@example.com", u.Email())
}

func TestMenu_CancelOrder(t *testing.T) {
	svc := newTestService(t)

	out := run(t, svc,
		"1", "u1", "pw123456",
		"2", "Child Ticket", "1", "", "y",
		"3", "4", "ORD001", "y", "5",
		"6",
	)

	assert.Contains(t, out, "Order ORD001 cancelled.")
	o, err := svc.Order(context.Background(), "ORD001")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, o.Status())
}

func TestMenu_BookWithVisitDate(t *testing.T) {
	svc := newTestService(t)
	visit := time.Now().UTC().AddDate(0, 0, 5).Format(time.DateOnly)

	out := run(t, svc,
		"1", "u1", "pw123456",
		"2", "Child Ticket", "1", "05/07", "",
		"2", "Child Ticket", "1", visit, "y",
		"3", "1", "5",
		"6",
	)

	assert.Contains(t, out, "visit date must be in YYYY-MM-DD format")
	assert.Contains(t, out, "Visit Date: "+visit)

	orders := svc.OrdersByUser(context.Background(), "u1")
	require.Len(t, orders, 1)
	assert.Equal(t, visit, orders[0].VisitDate().Format(time.DateOnly))
}

func TestMenu_CustomerCanListUsers(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.CreateUser(context.Background(), "u2", "Bob", "bob@example.com", model.RoleCustomer, "pw123456")
	require.NoError(t, err)

	out := run(t, svc,
		"1", "u1", "pw123456",
		"4", "4",
		"6",
	)

	for _, line := range svc.DisplayAll(context.Background()) {
		assert.Contains(t, out, line)
	}
	assert.NotContains(t, out, "Error:")
}

func TestMenu_EndOfInput(t *testing.T) {
	var out bytes.Buffer
	m := New(newTestService(t), strings.NewReader("1\nu1\n"), &out)

	assert.NoError(t, m.Run(context.Background()))
}
