// Package menu реализует интерактивное текстовое меню системы бронирования поверх сервиса.
// Меню хранит сессию вошедшего пользователя и передаёт её в каждую операцию.
package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/themepark/internal/model"
)

// Service определяет операции сервиса, которые использует меню.
type Service interface {
	CreateUser(ctx context.Context, id, name, email string, role model.Role, password string) (*model.User, error)
	Login(ctx context.Context, id, password string) (*model.Session, error)
	Logout(ctx context.Context, session *model.Session) error
	User(ctx context.Context, id string) (*model.User, error)
	DisplayAll(ctx context.Context) []string
	DeleteUser(ctx context.Context, session *model.Session, id string) error
	UpdateUser(ctx context.Context, session *model.Session, id string, upd model.UserUpdate) (*model.User, error)

	Tickets(ctx context.Context) []*model.Ticket
	Ticket(ctx context.Context, name string) (*model.Ticket, error)

	BookTickets(ctx context.Context, session *model.Session, ticketName string, quantity int, visitDate time.Time) (*model.Order, error)
	OrdersByUser(ctx context.Context, userID string) []*model.Order
	OrderHistory(ctx context.Context, userID string) []*model.Order
	PayForOrder(ctx context.Context, session *model.Session, orderID, method string) (*model.Payment, error)
	CancelOrder(ctx context.Context, session *model.Session, orderID string) (*model.Order, error)
}

// Menu ведёт диалог с пользователем через in и out.
type Menu struct {
	svc     Service
	in      *bufio.Scanner
	out     io.Writer
	session *model.Session
}

// New создаёт меню поверх сервиса.
func New(svc Service, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Run показывает главное меню до выбора выхода, конца ввода или отмены контекста.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.println("\n--- Main Menu ---")
		m.println("1. Login")
		m.println("2. Book Tickets")
		m.println("3. Orders and Payments")
		m.println("4. Manage Accounts")
		m.println("5. Logout")
		m.println("6. Exit")

		choice, ok := m.prompt("Choose an option: ")
		if !ok {
			return m.in.Err()
		}

		switch choice {
		case "1":
			m.login(ctx)
		case "2":
			if m.requireSession("book tickets") {
				m.bookTickets(ctx)
			}
		case "3":
			if m.requireSession("access orders and payments") {
				if !m.orderMenu(ctx) {
					return m.in.Err()
				}
			}
		case "4":
			if m.requireSession("manage accounts") {
				m.accountMenu(ctx)
			}
		case "5":
			m.logout(ctx)
		case "6":
			m.println("Exiting the system.")
			return nil
		default:
			m.println("Invalid option. Please try again.")
		}
	}
}

// orderMenu возвращает false, если ввод закончился.
func (m *Menu) orderMenu(ctx context.Context) bool {
	for {
		m.println("\n--- Order Menu ---")
		m.println("1. View Orders")
		m.println("2. Pay for Order")
		m.println("3. View Order History")
		m.println("4. Cancel Order")
		m.println("5. Back to Main Menu")

		choice, ok := m.prompt("Choose an option: ")
		if !ok {
			return false
		}

		switch choice {
		case "1":
			m.printOrders(m.svc.OrdersByUser(ctx, m.session.UserID), "No orders found for your account.")
		case "2":
			m.payForOrder(ctx)
		case "3":
			m.printOrders(m.svc.OrderHistory(ctx, m.session.UserID), "No confirmed orders found.")
		case "4":
			m.cancelOrder(ctx)
		case "5":
			return true
		default:
			m.println("Invalid option. Please try again.")
		}
	}
}

func (m *Menu) accountMenu(ctx context.Context) {
	m.println("\n--- Account Management ---")
	m.println("1. Create User")
	m.println("2. Delete User")
	m.println("3. Update My Account")
	m.println("4. List Users")
	m.println("5. Back to Main Menu")

	choice, ok := m.prompt("Choose an option: ")
	if !ok {
		return
	}

	switch choice {
	case "1":
		m.createUser(ctx)
	case "2":
		id, _ := m.prompt("Enter User ID to delete: ")
		if err := m.svc.DeleteUser(ctx, m.session, id); err != nil {
			m.fail(err)
			return
		}
		m.printf("User %s deleted.\n", id)
	case "3":
		m.updateAccount(ctx)
	case "4":
		for _, line := range m.svc.DisplayAll(ctx) {
			m.println(line)
		}
	case "5":
	default:
		m.println("Invalid option. Please try again.")
	}
}

func (m *Menu) login(ctx context.Context) {
	m.println("\n--- Login ---")
	id, _ := m.prompt("Enter User ID: ")
	password, _ := m.prompt("Enter Password: ")

	session, err := m.svc.Login(ctx, id, password)
	if err != nil {
		m.println("Login failed. Please try again.")
		return
	}
	m.session = session

	name := id
	if u, err := m.svc.User(ctx, id); err == nil {
		name = u.Name()
	}
	m.printf("Login successful. Welcome, %s.\n", name)
}

func (m *Menu) logout(ctx context.Context) {
	if err := m.svc.Logout(ctx, m.session); err != nil {
		m.println("No user is logged in.")
		return
	}
	m.printf("Goodbye, %s.\n", m.session.UserID)
	m.session = nil
}

func (m *Menu) bookTickets(ctx context.Context) {
	m.println("\n--- Available Tickets ---")
	for _, t := range m.svc.Tickets(ctx) {
		m.printf("%s: $%s - %s (Discount: %s%%)\n", t.Type(), t.Price().StringFixed(2), t.Description(), t.Discount())
	}

	name, _ := m.prompt("Enter the name of the ticket to book: ")
	t, err := m.svc.Ticket(ctx, name)
	if err != nil {
		m.println("Invalid ticket name. Please try again.")
		return
	}

	raw, _ := m.prompt("Enter the quantity: ")
	quantity, err := strconv.Atoi(raw)
	if err != nil || quantity <= 0 {
		m.println("Error: quantity must be a whole number greater than zero.")
		return
	}

	rawDate, _ := m.prompt("Enter visit date (YYYY-MM-DD, leave blank to skip): ")
	visitDate, err := model.ParseVisitDate(rawDate)
	if err != nil {
		m.fail(err)
		return
	}

	total := t.DiscountedPrice().Mul(decimal.NewFromInt(int64(quantity)))
	m.printf("Total price: $%s\n", total.StringFixed(2))
	if !m.confirm("Confirm booking? (y/n): ") {
		m.println("Booking canceled.")
		return
	}

	o, err := m.svc.BookTickets(ctx, m.session, name, quantity, visitDate)
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("Booking successful! Order ID: %s\n", o.ID())
}

func (m *Menu) payForOrder(ctx context.Context) {
	m.println("\n--- Pay for Order ---")
	orders := m.svc.OrdersByUser(ctx, m.session.UserID)
	if len(orders) == 0 {
		m.println("No orders found for your account.")
		return
	}
	for _, o := range orders {
		m.printf("Order ID: %s, Status: %s, Total Price: $%s\n", o.ID(), o.Status(), o.TotalPrice().StringFixed(2))
	}

	orderID, _ := m.prompt("Enter the Order ID you want to pay for: ")
	method, _ := m.prompt("Enter payment method: ")
	if !m.confirm("Confirm payment? (y/n): ") {
		m.println("Payment canceled.")
		return
	}

	p, err := m.svc.PayForOrder(ctx, m.session, orderID, method)
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("Payment successful! Order ID: %s is now confirmed.\n", orderID)
	m.println(p.DisplayDetails())
}

func (m *Menu) cancelOrder(ctx context.Context) {
	orderID, _ := m.prompt("Enter the Order ID to cancel: ")
	if !m.confirm("Cancel this order? (y/n): ") {
		return
	}

	if _, err := m.svc.CancelOrder(ctx, m.session, orderID); err != nil {
		m.fail(err)
		return
	}
	m.printf("Order %s cancelled.\n", orderID)
}

func (m *Menu) createUser(ctx context.Context) {
	id, _ := m.prompt("Enter User ID: ")
	name, _ := m.prompt("Enter Name: ")
	email, _ := m.prompt("Enter Email: ")
	rawRole, _ := m.prompt("Enter User Type (Customer/Admin): ")
	password, _ := m.prompt("Enter Password: ")

	role, err := model.ParseRole(rawRole)
	if err != nil {
		m.fail(err)
		return
	}
	if role == model.RoleAdmin && !m.session.IsAdmin() {
		m.println("Error: only admins can create admin accounts.")
		return
	}

	if _, err := m.svc.CreateUser(ctx, id, name, email, role, password); err != nil {
		m.fail(err)
		return
	}
	m.printf("User %s created successfully.\n", id)
}

func (m *Menu) updateAccount(ctx context.Context) {
	var upd model.UserUpdate
	if v, _ := m.prompt("Enter new name (leave blank to skip): "); v != "" {
		upd.Name = &v
	}
	if v, _ := m.prompt("Enter new email (leave blank to skip): "); v != "" {
		upd.Email = &v
	}
	if v, _ := m.prompt("Enter new password (leave blank to skip): "); v != "" {
		upd.Password = &v
	}
	if upd.IsEmpty() {
		m.println("Nothing to update.")
		return
	}

	if _, err := m.svc.UpdateUser(ctx, m.session, m.session.UserID, upd); err != nil {
		m.fail(err)
		return
	}
	m.println("Account updated successfully.")
}

func (m *Menu) printOrders(orders []*model.Order, empty string) {
	if len(orders) == 0 {
		m.println(empty)
		return
	}
	for _, o := range orders {
		m.println(o.DisplayDetails())
	}
}

func (m *Menu) requireSession(action string) bool {
	if m.session == nil {
		m.printf("You must be logged in to %s.\n", action)
		return false
	}
	return true
}

func (m *Menu) fail(err error) {
	m.printf("Error: %v\n", err)
}

func (m *Menu) confirm(question string) bool {
	answer, _ := m.prompt(question)
	return strings.EqualFold(answer, "y")
}

// prompt печатает вопрос и читает строку. false означает конец ввода.
func (m *Menu) prompt(question string) (string, bool) {
	_, _ = fmt.Fprint(m.out, question)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) println(s string) {
	_, _ = fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}
