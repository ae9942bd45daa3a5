package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"reservio/internal/auth"
	"reservio/internal/config"
	"reservio/internal/database"
	"reservio/internal/domain"
	"reservio/internal/metrics"
	"reservio/internal/pricing"
	"reservio/internal/service"
)

// HTTPServer exposes the booking platform as a JSON API under /api/v1.
type HTTPServer struct {
	cfg      config.APIConfig
	bookings domain.BookingService
	rooms    domain.RoomService
	hotels   domain.HotelService
	authSvc  domain.AuthService
	reports  domain.ReportEnqueuer
	server   *http.Server
	httpAuth *HTTPAuth
}

func NewHTTPServer(
	cfg config.APIConfig,
	bookings domain.BookingService,
	rooms domain.RoomService,
	hotels domain.HotelService,
	authSvc domain.AuthService,
	reports domain.ReportEnqueuer,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		rooms:    rooms,
		hotels:   hotels,
		authSvc:  authSvc,
		reports:  reports,
	}
	srv.httpAuth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/availability/count", srv.handleAvailabilityCount)
	mux.HandleFunc("/api/v1/availability", srv.handleAvailability)
	mux.HandleFunc("/api/v1/quotes", srv.handleQuote)
	mux.HandleFunc("/api/v1/reservations", srv.handleReservations)
	mux.HandleFunc("/api/v1/reservations/", srv.handleReservationSubtree)
	mux.HandleFunc("/api/v1/hotels", srv.handleHotels)
	mux.HandleFunc("/api/v1/hotels/", srv.handleHotelSubtree)
	mux.HandleFunc("/api/v1/rooms", srv.handleCreateRoom)
	mux.HandleFunc("/api/v1/rooms/", srv.handleRoomSubtree)
	mux.HandleFunc("/api/v1/auth/login", srv.handleLogin)
	mux.HandleFunc("/api/v1/auth/logout", srv.handleLogout)
	mux.HandleFunc("/api/v1/reports/occupancy", requireSession(authSvc, srv.handleOccupancyReport))

	handler := loggingMiddleware(srv.httpAuth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	log.Printf("HTTP API listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// httpStatusFor maps domain errors to HTTP status codes. Unknown errors
// are treated as internal.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrNotAvailable),
		errors.Is(err, database.ErrConcurrentModification),
		errors.Is(err, database.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, database.ErrInvalidDateRange),
		errors.Is(err, database.ErrPastDate),
		errors.Is(err, database.ErrDateTooFar),
		errors.Is(err, pricing.ErrInvalidStay),
		errors.Is(err, service.ErrInvalidRoom),
		errors.Is(err, service.ErrInvalidHotel),
		errors.Is(err, service.ErrRoomNotBookable):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := httpStatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, msg)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)
		metrics.IncHTTP(r.URL.Path)
		log.Printf("http method=%s path=%s status=%d dur=%s", r.Method, r.URL.Path, recorder.status, dur)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
