package httpserver

import (
	"net/http"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/config"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/transport/httpserver/handler"
	authmw "github.com/cg-naveen/sukha-pms-new-sub000/internal/transport/httpserver/middleware"
	"github.com/cg-naveen/sukha-pms-new-sub000/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(authmw.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSOrigins))

	staff := authmw.RequireRole(authmw.RoleAdmin, authmw.RoleStaff)
	admin := authmw.RequireRole(authmw.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Post("/public/visitors", handlers.RegisterVisitor)
		r.Post("/public/visitors/verify/{token}", handlers.VerifyVisitor)

		auth := authmw.NewAuth(cfg.Auth, log)
		r.With(auth.CronOrRoles(cfg.CronSecret, authmw.RoleAdmin, authmw.RoleStaff)).
			Post("/billings/generate", handlers.GenerateBillings)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)

			r.Get("/residents", handlers.ListResidents)
			r.Get("/residents/{id}", handlers.GetResident)
			r.Get("/residents/{id}/occupancies", handlers.ResidentOccupancies)
			r.With(staff).Post("/residents", handlers.CreateResident)
			r.With(staff).Put("/residents/{id}", handlers.UpdateResident)
			r.With(admin).Delete("/residents/{id}", handlers.DeleteResident)

			r.With(staff).Get("/residents/{id}/next-of-kin", handlers.ListNextOfKin)
			r.With(staff).Post("/residents/{id}/next-of-kin", handlers.CreateNextOfKin)
			r.With(staff).Delete("/next-of-kin/{id}", handlers.DeleteNextOfKin)

			r.Get("/rooms", handlers.ListRooms)
			r.Get("/rooms/{id}", handlers.GetRoom)
			r.Get("/rooms/{id}/occupancy", handlers.RoomOccupancy)
			r.With(staff).Post("/rooms", handlers.CreateRoom)
			r.With(staff).Put("/rooms/{id}", handlers.UpdateRoom)
			r.With(staff).Post("/rooms/{id}/recompute-status", handlers.RecomputeRoomStatus)
			r.With(admin).Delete("/rooms/{id}", handlers.DeleteRoom)

			r.With(staff).Get("/billings", handlers.ListBillings)
			r.With(staff).Get("/billings/{id}", handlers.GetBilling)
			r.With(staff).Post("/billings", handlers.CreateBilling)
			r.With(staff).Put("/billings/{id}/status", handlers.UpdateBillingStatus)
			r.With(admin).Delete("/billings/{id}", handlers.DeleteBilling)

			r.With(staff).Get("/visitors", handlers.ListVisitors)
			r.With(staff).Get("/visitors/{id}", handlers.GetVisitor)
			r.With(staff).Post("/visitors/{id}/approve", handlers.ApproveVisitor)
			r.With(staff).Post("/visitors/{id}/reject", handlers.RejectVisitor)

			r.With(staff).Get("/settings", handlers.GetSettings)
			r.With(admin).Put("/settings", handlers.UpdateSettings)
		})
	})

	return r
}
