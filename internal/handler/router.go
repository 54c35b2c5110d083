package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/themepark/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/register", h.Register)
		r.Post("/user/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)
			r.Use(h.withSession)

			r.Post("/user/logout", h.Logout)
			r.Get("/user", h.GetCurrentUser)
			r.Put("/user", h.UpdateCurrentUser)

			r.Get("/tickets", h.GetTickets)

			r.Post("/orders", h.BookTickets)
			r.Get("/orders", h.GetOrders)
			r.Get("/orders/history", h.GetOrderHistory)
			r.Get("/orders/{id}", h.GetOrder)
			r.Post("/orders/{id}/pay", h.PayOrder)
			r.Post("/orders/{id}/cancel", h.CancelOrder)

			r.Get("/payments", h.GetPayments)

			r.Route("/admin", func(r chi.Router) {
				r.Use(h.adminOnly)

				r.Get("/users", h.ListUsers)
				r.Post("/users", h.CreateUser)
				r.Delete("/users/{id}", h.DeleteUser)
				r.Put("/tickets/{name}", h.UpdateTicket)
				r.Get("/revenue", h.GetRevenue)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
