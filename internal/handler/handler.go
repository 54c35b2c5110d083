// Package handler содержит HTTP-обработчики API системы бронирования билетов.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/themepark/internal/middleware"
	"github.com/mmeshcher/themepark/internal/model"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	CreateUser(ctx context.Context, id, name, email string, role model.Role, password string) (*model.User, error)
	Login(ctx context.Context, id, password string) (*model.Session, error)
	Logout(ctx context.Context, session *model.Session) error
	Resume(ctx context.Context, userID string) (*model.Session, error)
	User(ctx context.Context, id string) (*model.User, error)
	Users(ctx context.Context) []*model.User
	DeleteUser(ctx context.Context, session *model.Session, id string) error
	UpdateUser(ctx context.Context, session *model.Session, id string, upd model.UserUpdate) (*model.User, error)

	Tickets(ctx context.Context) []*model.Ticket
	UpdateTicket(ctx context.Context, session *model.Session, name string, upd model.TicketUpdate) (*model.Ticket, error)

	BookTickets(ctx context.Context, session *model.Session, ticketName string, quantity int, visitDate time.Time) (*model.Order, error)
	Order(ctx context.Context, id string) (*model.Order, error)
	OrdersByUser(ctx context.Context, userID string) []*model.Order
	OrderHistory(ctx context.Context, userID string) []*model.Order
	PayForOrder(ctx context.Context, session *model.Session, orderID, method string) (*model.Payment, error)
	CancelOrder(ctx context.Context, session *model.Session, orderID string) (*model.Order, error)

	PaymentsByUser(ctx context.Context, userID string) []*model.Payment
	TotalRevenue(ctx context.Context) decimal.Decimal
}

// Handler реализует HTTP-обработчики API.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

type sessionKey struct{}

// withSession восстанавливает сессию по идентификатору из cookie.
// Пользователь, удалённый после входа, получает 401.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		session, err := h.service.Resume(r.Context(), userID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				h.authMiddleware.ClearAuthCookie(w)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			h.writeError(w, err, "resume session")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sessionFrom(r).IsAdmin() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(r *http.Request) *model.Session {
	s, _ := r.Context().Value(sessionKey{}).(*model.Session)
	return s
}

func (h *Handler) writeError(w http.ResponseWriter, err error, op string) {
	var status int
	switch {
	case errors.Is(err, model.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrNoSession):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrPermission):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrDuplicate):
		status = http.StatusConflict
	default:
		h.logger.Error(op+" error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Error(w, err.Error(), status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

func decodeJSON(r *http.Request, v any) bool {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v) == nil
}

// decodeStrictJSON работает как decodeJSON, но отклоняет ключи, которых нет в v.
func decodeStrictJSON(r *http.Request, v any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v) == nil
}

type userResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func newUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:          u.ID(),
		Name:        u.Name(),
		Email:       u.Email(),
		Role:        string(u.Role()),
		Permissions: u.Permissions(),
	}
}

type ticketResponse struct {
	Type            string `json:"type"`
	Price           string `json:"price"`
	Discount        string `json:"discount"`
	DiscountedPrice string `json:"discounted_price"`
	Validity        string `json:"validity"`
	Description     string `json:"description"`
	Restrictions    string `json:"restrictions"`
}

func newTicketResponse(t *model.Ticket) ticketResponse {
	return ticketResponse{
		Type:            t.Type(),
		Price:           t.Price().StringFixed(2),
		Discount:        t.Discount().String(),
		DiscountedPrice: t.DiscountedPrice().StringFixed(2),
		Validity:        t.Validity(),
		Description:     t.Description(),
		Restrictions:    t.Restrictions(),
	}
}

type orderResponse struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	Tickets   []string `json:"tickets"`
	Total     string   `json:"total"`
	CreatedAt string   `json:"created_at"`
	VisitDate string   `json:"visit_date,omitempty"`
}

func newOrderResponse(o *model.Order) orderResponse {
	tickets := o.Tickets()
	names := make([]string, 0, len(tickets))
	for _, t := range tickets {
		names = append(names, t.Type())
	}
	resp := orderResponse{
		ID:        o.ID(),
		Status:    string(o.Status()),
		Tickets:   names,
		Total:     o.TotalPrice().StringFixed(2),
		CreatedAt: o.CreatedAt().Format(time.RFC3339),
	}
	if !o.VisitDate().IsZero() {
		resp.VisitDate = o.VisitDate().Format(time.DateOnly)
	}
	return resp
}

func newOrderResponses(orders []*model.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, newOrderResponse(o))
	}
	return resp
}

type paymentResponse struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Amount  string `json:"amount"`
	Method  string `json:"method"`
	Status  string `json:"status"`
}

func newPaymentResponse(p *model.Payment) paymentResponse {
	return paymentResponse{
		ID:      p.ID(),
		OrderID: p.OrderID(),
		Amount:  p.Amount().StringFixed(2),
		Method:  p.Method(),
		Status:  string(p.Status()),
	}
}

type registerRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register регистрирует покупателя и сразу выполняет вход.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	u, err := h.service.CreateUser(r.Context(), req.ID, req.Name, req.Email, model.RoleCustomer, req.Password)
	if err != nil {
		h.writeError(w, err, "register user")
		return
	}

	h.authMiddleware.SetAuthCookie(w, u.ID())
	h.writeJSON(w, http.StatusOK, newUserResponse(u))
}

type loginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// Login выполняет аутентификацию пользователя и устанавливает cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(r, &req) || req.ID == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	session, err := h.service.Login(r.Context(), req.ID, req.Password)
	if err != nil {
		h.writeError(w, err, "login user")
		return
	}

	h.authMiddleware.SetAuthCookie(w, session.UserID)
	w.WriteHeader(http.StatusOK)
}

// Logout завершает сессию и удаляет cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), sessionFrom(r)); err != nil {
		h.writeError(w, err, "logout user")
		return
	}

	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusOK)
}

// GetCurrentUser возвращает учётную запись владельца сессии.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.User(r.Context(), sessionFrom(r).UserID)
	if err != nil {
		h.writeError(w, err, "get user")
		return
	}
	h.writeJSON(w, http.StatusOK, newUserResponse(u))
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// UpdateCurrentUser изменяет учётную запись владельца сессии.
func (h *Handler) UpdateCurrentUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decodeStrictJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	upd := model.UserUpdate{Name: req.Name, Email: req.Email, Password: req.Password}
	if req.Role != nil {
		role, err := model.ParseRole(*req.Role)
		if err != nil {
			h.writeError(w, err, "update user")
			return
		}
		upd.Role = &role
	}
	if upd.IsEmpty() {
		http.Error(w, "no changes", http.StatusBadRequest)
		return
	}

	session := sessionFrom(r)
	u, err := h.service.UpdateUser(r.Context(), session, session.UserID, upd)
	if err != nil {
		h.writeError(w, err, "update user")
		return
	}
	h.writeJSON(w, http.StatusOK, newUserResponse(u))
}

// GetTickets возвращает каталог билетов.
func (h *Handler) GetTickets(w http.ResponseWriter, r *http.Request) {
	tickets := h.service.Tickets(r.Context())
	resp := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		resp = append(resp, newTicketResponse(t))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type bookRequest struct {
	Ticket    string `json:"ticket"`
	Quantity  int    `json:"quantity"`
	VisitDate string `json:"visit_date"`
}

// BookTickets оформляет заказ на билеты.
func (h *Handler) BookTickets(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	visitDate, err := model.ParseVisitDate(req.VisitDate)
	if err != nil {
		h.writeError(w, err, "book tickets")
		return
	}

	o, err := h.service.BookTickets(r.Context(), sessionFrom(r), req.Ticket, req.Quantity, visitDate)
	if err != nil {
		h.writeError(w, err, "book tickets")
		return
	}
	h.writeJSON(w, http.StatusCreated, newOrderResponse(o))
}

// GetOrders возвращает заказы текущего пользователя.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.service.OrdersByUser(r.Context(), sessionFrom(r).UserID)
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, newOrderResponses(orders))
}

// GetOrderHistory возвращает подтверждённые заказы текущего пользователя.
func (h *Handler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	orders := h.service.OrderHistory(r.Context(), sessionFrom(r).UserID)
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, newOrderResponses(orders))
}

// GetOrder возвращает заказ текущего пользователя. Чужой заказ отдаёт 404.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	o, err := h.service.Order(r.Context(), id)
	if err == nil && o.UserID() != sessionFrom(r).UserID {
		err = model.ErrNotFound
	}
	if err != nil {
		h.writeError(w, err, "get order")
		return
	}
	h.writeJSON(w, http.StatusOK, newOrderResponse(o))
}

type payRequest struct {
	Method string `json:"method"`
}

// PayOrder оплачивает заказ текущего пользователя.
func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	p, err := h.service.PayForOrder(r.Context(), sessionFrom(r), chi.URLParam(r, "id"), req.Method)
	if err != nil {
		h.writeError(w, err, "pay order")
		return
	}
	h.writeJSON(w, http.StatusOK, newPaymentResponse(p))
}

// CancelOrder отменяет заказ текущего пользователя.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.CancelOrder(r.Context(), sessionFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "cancel order")
		return
	}
	h.writeJSON(w, http.StatusOK, newOrderResponse(o))
}

// GetPayments возвращает платежи текущего пользователя.
func (h *Handler) GetPayments(w http.ResponseWriter, r *http.Request) {
	payments := h.service.PaymentsByUser(r.Context(), sessionFrom(r).UserID)
	if len(payments) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, newPaymentResponse(p))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ListUsers возвращает всех пользователей.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.service.Users(r.Context())
	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, newUserResponse(u))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type createUserRequest struct {
	registerRequest
	Role string `json:"role"`
}

// CreateUser создаёт учётную запись с указанной ролью.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		h.writeError(w, err, "create user")
		return
	}

	u, err := h.service.CreateUser(r.Context(), req.ID, req.Name, req.Email, role, req.Password)
	if err != nil {
		h.writeError(w, err, "create user")
		return
	}
	h.writeJSON(w, http.StatusCreated, newUserResponse(u))
}

// DeleteUser удаляет учётную запись.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), sessionFrom(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, "delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateTicketRequest struct {
	Price        *decimal.Decimal `json:"price"`
	Discount     *decimal.Decimal `json:"discount"`
	Validity     *string          `json:"validity"`
	Description  *string          `json:"description"`
	Restrictions *string          `json:"restrictions"`
}

// UpdateTicket меняет параметры билета каталога.
func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	var req updateTicketRequest
	if !decodeStrictJSON(r, &req) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	upd := model.TicketUpdate{
		Price:        req.Price,
		Discount:     req.Discount,
		Validity:     req.Validity,
		Description:  req.Description,
		Restrictions: req.Restrictions,
	}
	t, err := h.service.UpdateTicket(r.Context(), sessionFrom(r), chi.URLParam(r, "name"), upd)
	if err != nil {
		h.writeError(w, err, "update ticket")
		return
	}
	h.writeJSON(w, http.StatusOK, newTicketResponse(t))
}

type revenueResponse struct {
	Total string `json:"total"`
}

// GetRevenue возвращает сумму всех платежей.
func (h *Handler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, revenueResponse{Total: h.service.TotalRevenue(r.Context()).StringFixed(2)})
}
