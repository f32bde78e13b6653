package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"stayshare/internal/delivery/http/controllers"
	"stayshare/internal/delivery/http/middleware"
	"stayshare/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	availabilityController *controllers.AvailabilityController,
	bookingController *controllers.BookingController,
	connectionController *controllers.ConnectionController,
	invitationController *controllers.InvitationController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Availability
	mux.HandleFunc("POST /hosts/{hostID}/availability", auth(availabilityController.AddInterval))
	mux.HandleFunc("GET /hosts/{hostID}/availability", auth(availabilityController.ListByHost))
	mux.HandleFunc("GET /availability/dates", auth(availabilityController.EnumerateDates))
	mux.HandleFunc("GET /hosts/search", auth(availabilityController.SearchHosts))

	// Bookings
	mux.HandleFunc("POST /hosts/{hostID}/bookings", auth(bookingController.Create))
	mux.HandleFunc("GET /hosts/{hostID}/bookings", auth(bookingController.ListForHost))
	mux.HandleFunc("PATCH /bookings/{bookingID}/status", auth(bookingController.UpdateStatus))
	mux.HandleFunc("GET /bookings/mine", auth(bookingController.ListMine))

	// Connections
	mux.HandleFunc("POST /connections", auth(connectionController.Request))
	mux.HandleFunc("GET /connections", auth(connectionController.List))
	mux.HandleFunc("GET /connections/pending", auth(connectionController.ListPending))
	mux.HandleFunc("PATCH /connections/{connectionID}/status", auth(connectionController.UpdateStatus))
	mux.HandleFunc("DELETE /connections/{connectionID}", auth(connectionController.Delete))

	// Invitations. Accept is unauthenticated: the invitee may not have an
	// account yet.
	mux.HandleFunc("POST /invitations", auth(invitationController.Create))
	mux.HandleFunc("GET /invitations", auth(invitationController.List))
	mux.HandleFunc("POST /invitations/accept", invitationController.Accept)
	mux.HandleFunc("POST /invitations/{invitationID}/cancel", auth(invitationController.Cancel))
	mux.HandleFunc("DELETE /invitations/{invitationID}", auth(invitationController.Delete))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
