package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starcineplex/ticketing/internal/model"
	"github.com/starcineplex/ticketing/internal/payment"
	"github.com/starcineplex/ticketing/internal/reservation"
)

// stubCatalog serves a single active show with a two-row hall so the
// handlers can run against the in-memory store.
type stubCatalog struct {
	show model.Show
	rows []model.HallRow
}

func (s *stubCatalog) ShowByID(_ context.Context, showID uint64) (*model.Show, error) {
	if showID != s.show.ID {
		return nil, reservation.ErrShowNotFound
	}
	cp := s.show
	return &cp, nil
}

func (s *stubCatalog) HallRows(_ context.Context, hallConfigID uint64) ([]model.HallRow, error) {
	if hallConfigID != s.show.HallConfigID {
		return nil, reservation.ErrShowNotFound
	}
	return append([]model.HallRow(nil), s.rows...), nil
}

func newTestHandlers(t *testing.T) (*ReservationHandler, *BookingHandler) {
	t.Helper()
	catalog := &stubCatalog{
		show: model.Show{
			ID:           7,
			MovieID:      1,
			HallConfigID: 3,
			StartsAt:     time.Now().Add(2 * time.Hour).UTC(),
			PriceCents:   1500,
			Status:       model.ShowActive,
		},
		rows: []model.HallRow{
			{Label: "A", SeatCount: 3},
			{Label: "B", SeatCount: 3},
		},
	}
	engine := reservation.NewEngine(reservation.NewMemoryStore(), catalog)
	rh := NewReservationHandler(engine, nil, nil, nil, false)
	bh := NewBookingHandler(engine, payment.NewSimulatedGateway(1.0, 0), false)
	return rh, bh
}

// doJSON runs a handler through Echo with an authenticated context.
func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body, userID string, paramNames, paramValues []string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(paramNames) > 0 {
		c.SetParamNames(paramNames...)
		c.SetParamValues(paramValues...)
	}
	if userID != "" {
		c.Set("user_id", userID)
		c.Set("email", userID+"@example.com")
	}
	require.NoError(t, h(c))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPlaceHoldCreated(t *testing.T) {
	rh, _ := newTestHandlers(t)

	rec := doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["A1","A2"]}`, "user-1", []string{"id"}, []string{"7"})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.NotEmpty(t, body["batch_id"])
	assert.Equal(t, "PROVISIONAL", body["state"])
	assert.Len(t, body["seats"], 2)
}

func TestPlaceHoldConflictListsSeats(t *testing.T) {
	rh, _ := newTestHandlers(t)

	rec := doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["A1","A2"]}`, "user-1", []string{"id"}, []string{"7"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["A2","A3"]}`, "user-2", []string{"id"}, []string{"7"})

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []interface{}{"A2"}, body["unavailable"])
}

func TestPlaceHoldUnknownSeats(t *testing.T) {
	rh, _ := newTestHandlers(t)

	rec := doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["Z9"]}`, "user-1", []string{"id"}, []string{"7"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []interface{}{"Z9"}, body["unknown"])
}

func TestPlaceHoldUnauthorized(t *testing.T) {
	rh, _ := newTestHandlers(t)

	rec := doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["A1"]}`, "", []string{"id"}, []string{"7"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConfirmHoldOwnedByAnotherUser(t *testing.T) {
	rh, _ := newTestHandlers(t)

	rec := doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["A1"]}`, "user-1", []string{"id"}, []string{"7"})
	require.Equal(t, http.StatusCreated, rec.Code)
	batchID := decode(t, rec)["batch_id"].(string)

	rec = doJSON(t, rh.ConfirmHold, http.MethodPost, "/v1/holds/"+batchID+"/confirm",
		"", "user-2", []string{"batch_id"}, []string{batchID})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHoldConfirmPayFlow(t *testing.T) {
	rh, bh := newTestHandlers(t)

	rec := doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["B1","B2"]}`, "user-1", []string{"id"}, []string{"7"})
	require.Equal(t, http.StatusCreated, rec.Code)
	batchID := decode(t, rec)["batch_id"].(string)

	rec = doJSON(t, rh.ConfirmHold, http.MethodPost, "/v1/holds/"+batchID+"/confirm",
		`{"email":"u1@example.com"}`, "user-1", []string{"batch_id"}, []string{batchID})
	require.Equal(t, http.StatusCreated, rec.Code)
	confirm := decode(t, rec)
	bookingID := confirm["booking_id"].(string)
	assert.Equal(t, "PENDING", confirm["state"])
	assert.Equal(t, float64(3000), confirm["amount_cents"])

	rec = doJSON(t, bh.Pay, http.MethodPost, "/v1/bookings/"+bookingID+"/pay",
		"", "user-1", []string{"id"}, []string{bookingID})
	require.Equal(t, http.StatusOK, rec.Code)
	paid := decode(t, rec)
	assert.NotEmpty(t, paid["transaction_id"])
	item := paid["item"].(map[string]interface{})
	assert.Equal(t, "PAID", item["state"])

	// Paying again replays the stored outcome instead of charging twice.
	rec = doJSON(t, bh.Pay, http.MethodPost, "/v1/bookings/"+bookingID+"/pay",
		"", "user-1", []string{"id"}, []string{bookingID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "already paid", decode(t, rec)["message"])
}

func TestConfirmHoldTwiceConflicts(t *testing.T) {
	rh, _ := newTestHandlers(t)

	rec := doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["A1"]}`, "user-1", []string{"id"}, []string{"7"})
	batchID := decode(t, rec)["batch_id"].(string)

	rec = doJSON(t, rh.ConfirmHold, http.MethodPost, "/v1/holds/"+batchID+"/confirm",
		"", "user-1", []string{"batch_id"}, []string{batchID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, rh.ConfirmHold, http.MethodPost, "/v1/holds/"+batchID+"/confirm",
		"", "user-1", []string{"batch_id"}, []string{batchID})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReleaseHoldFreesSeats(t *testing.T) {
	rh, _ := newTestHandlers(t)

	rec := doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["A1","A2"]}`, "user-1", []string{"id"}, []string{"7"})
	batchID := decode(t, rec)["batch_id"].(string)

	rec = doJSON(t, rh.ReleaseHold, http.MethodDelete, "/v1/holds/"+batchID,
		"", "user-1", []string{"batch_id"}, []string{batchID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["released_seats"])

	// Released seats are immediately available to someone else.
	rec = doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["A1","A2"]}`, "user-2", []string{"id"}, []string{"7"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestReleaseHoldIdempotent(t *testing.T) {
	rh, _ := newTestHandlers(t)

	rec := doJSON(t, rh.ReleaseHold, http.MethodDelete, "/v1/holds/no-such-batch",
		"", "user-1", []string{"batch_id"}, []string{"no-such-batch"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["released_seats"])
}

func TestCancelBookingReleasesSeats(t *testing.T) {
	rh, bh := newTestHandlers(t)

	rec := doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["A1"]}`, "user-1", []string{"id"}, []string{"7"})
	batchID := decode(t, rec)["batch_id"].(string)

	rec = doJSON(t, rh.ConfirmHold, http.MethodPost, "/v1/holds/"+batchID+"/confirm",
		"", "user-1", []string{"batch_id"}, []string{batchID})
	bookingID := decode(t, rec)["booking_id"].(string)

	rec = doJSON(t, bh.Cancel, http.MethodDelete, "/v1/bookings/"+bookingID,
		"", "user-1", []string{"id"}, []string{bookingID})
	require.Equal(t, http.StatusOK, rec.Code)
	item := decode(t, rec)["item"].(map[string]interface{})
	assert.Equal(t, "CANCELLED", item["state"])

	rec = doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["A1"]}`, "user-2", []string{"id"}, []string{"7"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGetBookingOwnership(t *testing.T) {
	rh, bh := newTestHandlers(t)

	rec := doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
		`{"seats":["A1"]}`, "user-1", []string{"id"}, []string{"7"})
	batchID := decode(t, rec)["batch_id"].(string)
	rec = doJSON(t, rh.ConfirmHold, http.MethodPost, "/v1/holds/"+batchID+"/confirm",
		"", "user-1", []string{"batch_id"}, []string{batchID})
	bookingID := decode(t, rec)["booking_id"].(string)

	rec = doJSON(t, bh.Get, http.MethodGet, "/v1/bookings/"+bookingID,
		"", "user-2", []string{"id"}, []string{bookingID})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, bh.Get, http.MethodGet, "/v1/bookings/"+bookingID,
		"", "user-1", []string{"id"}, []string{bookingID})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListMyBookings(t *testing.T) {
	rh, bh := newTestHandlers(t)

	for _, seat := range []string{"A1", "A2"} {
		rec := doJSON(t, rh.PlaceHold, http.MethodPost, "/v1/shows/7/hold",
			`{"seats":["`+seat+`"]}`, "user-1", []string{"id"}, []string{"7"})
		batchID := decode(t, rec)["batch_id"].(string)
		rec = doJSON(t, rh.ConfirmHold, http.MethodPost, "/v1/holds/"+batchID+"/confirm",
			"", "user-1", []string{"batch_id"}, []string{batchID})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, bh.ListMine, http.MethodGet, "/v1/my-bookings", "", "user-1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 2)

	rec = doJSON(t, bh.ListMine, http.MethodGet, "/v1/my-bookings", "", "user-2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 0)
}
