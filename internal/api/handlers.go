package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reservio/internal/database"
	"reservio/internal/metrics"
	"reservio/internal/models"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func parseAvailabilityQuery(r *http.Request) (models.AvailabilityQuery, error) {
	var q models.AvailabilityQuery

	hotelID, err := parseID(r.URL.Query().Get("hotel_id"))
	if err != nil {
		return q, errors.New("hotel_id is required")
	}
	q.HotelID = hotelID

	checkIn, err := time.Parse("2006-01-02", strings.TrimSpace(r.URL.Query().Get("check_in")))
	if err != nil {
		return q, errors.New("invalid check_in; expected YYYY-MM-DD")
	}
	checkOut, err := time.Parse("2006-01-02", strings.TrimSpace(r.URL.Query().Get("check_out")))
	if err != nil {
		return q, errors.New("invalid check_out; expected YYYY-MM-DD")
	}
	q.CheckIn = checkIn
	q.CheckOut = checkOut

	q.Adults = 1
	if raw := strings.TrimSpace(r.URL.Query().Get("adults")); raw != "" {
		adults, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.New("invalid adults")
		}
		q.Adults = adults
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("children")); raw != "" {
		children, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.New("invalid children")
		}
		q.Children = children
	}

	return q, nil
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q, err := parseAvailabilityQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rooms, err := s.bookings.FindAvailableRooms(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if rooms == nil {
		rooms = []*models.Room{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms, "count": len(rooms)})
}

func (s *HTTPServer) handleAvailabilityCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q, err := parseAvailabilityQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := s.bookings.CountAvailableRooms(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"count": count})
}

func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	roomID, err := parseID(r.URL.Query().Get("room_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "room_id is required")
		return
	}
	checkIn, err := time.Parse("2006-01-02", strings.TrimSpace(r.URL.Query().Get("check_in")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid check_in; expected YYYY-MM-DD")
		return
	}
	checkOut, err := time.Parse("2006-01-02", strings.TrimSpace(r.URL.Query().Get("check_out")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid check_out; expected YYYY-MM-DD")
		return
	}

	nights, total, err := s.bookings.QuoteStay(r.Context(), roomID, checkIn, checkOut)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"nights": nights, "total_cents": total})
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createReservation(w, r)
	case http.MethodGet:
		confirmation := strings.TrimSpace(r.URL.Query().Get("confirmation"))
		if confirmation == "" {
			writeError(w, http.StatusBadRequest, "confirmation is required")
			return
		}
		res, err := s.bookings.GetReservationByConfirmation(r.Context(), confirmation)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) createReservation(w http.ResponseWriter, r *http.Request) {
	var body createReservationRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validateInput(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := &models.Reservation{
		HotelID:    body.HotelID,
		RoomID:     body.RoomID,
		GuestName:  body.GuestName,
		GuestEmail: body.GuestEmail,
		GuestPhone: body.GuestPhone,
		CheckIn:    parseDay(body.CheckIn),
		CheckOut:   parseDay(body.CheckOut),
		Adults:     body.Adults,
		Children:   body.Children,
	}

	if err := s.bookings.CreateReservation(r.Context(), res); err != nil {
		if errors.Is(err, database.ErrNotAvailable) {
			metrics.IncAvailabilityConflict()
		}
		writeServiceError(w, err)
		return
	}

	metrics.IncReservation(res.Status)
	writeJSON(w, http.StatusCreated, res)
}

func (s *HTTPServer) handleReservationSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/reservations/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	id, err := parseID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		res, err := s.bookings.GetReservation(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)

	case len(parts) == 2 && r.Method == http.MethodPost:
		requireSession(s.authSvc, func(w http.ResponseWriter, r *http.Request) {
			s.transitionReservation(w, r, id, parts[1])
		})(w, r)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) transitionReservation(w http.ResponseWriter, r *http.Request, id int64, action string) {
	var body transitionRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validateInput(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := sessionFromContext(r.Context())

	var err error
	var status string
	switch action {
	case "confirm":
		err = s.bookings.ConfirmReservation(r.Context(), id, body.Version, session.UserID)
		status = models.StatusConfirmed
	case "cancel":
		err = s.bookings.CancelReservation(r.Context(), id, body.Version, session.UserID)
		status = models.StatusCancelled
	case "complete":
		err = s.bookings.CompleteReservation(r.Context(), id, body.Version, session.UserID)
		status = models.StatusCompleted
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	metrics.IncReservation(status)
	res, err := s.bookings.GetReservation(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleHotels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		hotels, err := s.hotels.GetActiveHotels(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"hotels": hotels})

	case http.MethodPost:
		requireRole(s.authSvc, models.RoleAdmin, s.createHotel)(w, r)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) createHotel(w http.ResponseWriter, r *http.Request) {
	var body createHotelRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validateInput(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hotel := &models.Hotel{
		Name:     body.Name,
		Currency: body.Currency,
		Timezone: body.Timezone,
	}
	if err := s.hotels.CreateHotel(r.Context(), hotel); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hotel)
}

func (s *HTTPServer) handleHotelSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/hotels/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	id, err := parseID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hotel id")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		hotel, err := s.hotels.GetHotel(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, hotel)

	case len(parts) == 2 && parts[1] == "rooms" && r.Method == http.MethodGet:
		rooms, err := s.rooms.GetRoomsByHotel(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})

	case len(parts) == 2 && parts[1] == "reservations" && r.Method == http.MethodGet:
		requireSession(s.authSvc, func(w http.ResponseWriter, r *http.Request) {
			s.listHotelReservations(w, r, id)
		})(w, r)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) listHotelReservations(w http.ResponseWriter, r *http.Request, hotelID int64) {
	start, err := time.Parse("2006-01-02", strings.TrimSpace(r.URL.Query().Get("start")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start; expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", strings.TrimSpace(r.URL.Query().Get("end")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end; expected YYYY-MM-DD")
		return
	}

	reservations, err := s.bookings.GetReservationsByDateRange(r.Context(), hotelID, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if reservations == nil {
		reservations = []*models.Reservation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (s *HTTPServer) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	requireSession(s.authSvc, func(w http.ResponseWriter, r *http.Request) {
		var body roomRequest
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validateInput(body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		room := roomFromRequest(body)
		if err := s.rooms.CreateRoom(r.Context(), room); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, room)
	})(w, r)
}

func (s *HTTPServer) handleRoomSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/rooms/")
	id, err := parseID(strings.Trim(rest, "/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		room, err := s.rooms.GetRoom(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)

	case http.MethodPut:
		requireSession(s.authSvc, func(w http.ResponseWriter, r *http.Request) {
			var body roomRequest
			if err := decodeJSON(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			if err := validateInput(body); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}

			room := roomFromRequest(body)
			room.ID = id
			if err := s.rooms.UpdateRoom(r.Context(), room); err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, room)
		})(w, r)

	case http.MethodDelete:
		requireSession(s.authSvc, func(w http.ResponseWriter, r *http.Request) {
			if err := s.rooms.DeactivateRoom(r.Context(), id); err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
		})(w, r)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func roomFromRequest(body roomRequest) *models.Room {
	return &models.Room{
		HotelID:       body.HotelID,
		Number:        body.Number,
		Capacity:      body.Capacity,
		PriceCents:    body.PriceCents,
		Status:        body.Status,
		MonthlyPrices: body.MonthlyPrices,
		SpecialPrices: body.SpecialPrices,
	}
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body loginRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validateInput(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := s.authSvc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	if err := s.authSvc.Logout(r.Context(), strings.TrimSpace(token)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *HTTPServer) handleOccupancyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body occupancyReportRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validateInput(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := parseDay(body.Start)
	end := parseDay(body.End)
	if !end.After(start) {
		writeError(w, http.StatusBadRequest, "end must be after start")
		return
	}

	if err := s.reports.EnqueueOccupancyReport(r.Context(), body.HotelID, start, end); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
