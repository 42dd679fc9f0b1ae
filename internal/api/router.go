package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/api/handlers"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/api/middleware"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/events"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/repository"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/service"
)

// NewRouter wires repositories, services, and handlers onto the HTTP
// surface. The event bus is registered with the notification dispatcher
// here so every service publish ends up as stored notifications.
func NewRouter(db *sql.DB, bus *events.Bus) *chi.Mux {
	offerRepo := repository.NewOfferRepo(db)
	userRepo := repository.NewUserRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	reviewRepo := repository.NewReviewRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	moderationRepo := repository.NewModerationRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	events.NewDispatcher(notificationRepo, userRepo).Register(bus)

	offerSvc := service.NewOfferService(offerRepo, userRepo, categoryRepo, bus)
	reviewSvc := service.NewReviewService(reviewRepo, offerRepo, userRepo, bus)
	businessSvc := service.NewBusinessService(offerRepo, reviewRepo, userRepo, paymentRepo)
	moderationSvc := service.NewModerationService(moderationRepo, userRepo, offerRepo, paymentRepo, bus)
	notificationSvc := service.NewNotificationService(notificationRepo)

	offerHandler := handlers.NewOfferHandler(offerSvc, userRepo)
	reviewHandler := handlers.NewReviewHandler(reviewSvc, userRepo)
	businessHandler := handlers.NewBusinessHandler(businessSvc, moderationSvc)
	adminHandler := handlers.NewAdminHandler(moderationSvc, categoryRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationSvc)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Authenticate)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/feed", offerHandler.Feed)
	r.Get("/categories", offerHandler.Categories)

	r.Route("/offers", func(r chi.Router) {
		r.Get("/", offerHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Post("/", offerHandler.Create)
			r.Get("/mine", offerHandler.Mine)
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", offerHandler.Detail)
			r.Get("/reviews", reviewHandler.ForOffer)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser)
				r.Put("/", offerHandler.Update)
				r.Delete("/", offerHandler.Deactivate)
				r.Post("/like", offerHandler.ToggleLike)
				r.Post("/reviews", reviewHandler.Create)
			})
		})
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Put("/{id}", reviewHandler.Update)
		r.Delete("/{id}", reviewHandler.Delete)
	})

	r.With(middleware.RequireUser).Post("/categories/{id}/follow", businessHandler.FollowCategory)

	r.Route("/business", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/requests", businessHandler.SubmitRequest)
		r.Get("/dashboard", businessHandler.Dashboard)
		r.Post("/appeals", businessHandler.SubmitAppeal)
		r.Get("/payments", businessHandler.Payments)
		r.Post("/{id}/follow", businessHandler.FollowBusiness)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", notificationHandler.List)
		r.Get("/unread", notificationHandler.UnreadCount)
		r.Post("/{id}/read", notificationHandler.MarkRead)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/stats", adminHandler.Stats)
		r.Get("/requests", adminHandler.PendingRequests)
		r.Post("/requests/{id}/approve", adminHandler.ApproveRequest)
		r.Post("/requests/{id}/reject", adminHandler.RejectRequest)
		r.Post("/businesses/{id}/veto", adminHandler.Veto)
		r.Delete("/businesses/{id}/veto", adminHandler.RemoveVeto)
		r.Get("/appeals", adminHandler.PendingAppeals)
		r.Post("/appeals/{id}/resolve", adminHandler.ResolveAppeal)
		r.Get("/offers", adminHandler.ListOffers)
		r.Delete("/offers/{id}", adminHandler.DeleteOffer)
		r.Post("/payments", adminHandler.RecordPayment)
		r.Post("/categories", adminHandler.CreateCategory)
	})

	return r
}
