package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pcohire/middleware"
	"pcohire/models"
	"pcohire/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVehicleChange struct {
	got models.VehicleChangeRequest
	err error
}

func (s *stubVehicleChange) ChangeVehicle(ctx context.Context, req models.VehicleChangeRequest) (*models.VehicleChangeResult, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.VehicleChangeResult{Success: true, AdjustmentAmount: 40, NewVehicle: models.Vehicle{ID: req.NewVehicleID}}, nil
}

func (s *stubVehicleChange) QuoteVehicleChange(ctx context.Context, req models.VehicleChangeRequest) (*models.VehicleChangeQuote, error) {
	s.got = req
	return &models.VehicleChangeQuote{BookingID: req.BookingID, AdjustmentAmount: 40}, nil
}

type stubReturns struct {
	got models.ReturnRequest
	err error
}

func (s *stubReturns) HandleReturn(ctx context.Context, req models.ReturnRequest) (*models.ReturnResult, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.ReturnResult{Success: true, Status: models.BookingActive, ReturnStatus: models.ReturnStatusRequested}, nil
}

type stubQueries struct{}

func (stubQueries) GetBooking(ctx context.Context, caller models.Caller, id string) (*models.Booking, error) {
	if id != "b1" {
		return nil, utils.NewAppError(utils.KindNotFound, "Booking not found")
	}
	return &models.Booking{ID: id}, nil
}

func (stubQueries) GetHistory(ctx context.Context, caller models.Caller, id string) ([]models.BookingHistoryEntry, error) {
	return []models.BookingHistoryEntry{{ID: "h1", BookingID: id}}, nil
}

// newTestRouter mounts the handlers behind a fake auth step that injects caller.
func newTestRouter(h *BookingHandler, caller models.Caller) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("caller", caller)
		c.Next()
	})
	r.POST("/change-vehicle", h.ChangeVehicleHandler)
	r.POST("/change-vehicle/quote", h.QuoteVehicleChangeHandler)
	r.POST("/request-return", h.RequestReturnHandler)
	r.GET("/bookings/:id", h.GetBookingHandler)
	r.GET("/bookings/:id/history", h.GetBookingHistoryHandler)
	return r
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body utils.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func TestChangeVehicleHandlerDefaultsPartnerToCaller(t *testing.T) {
	vc := &stubVehicleChange{}
	r := newTestRouter(NewBookingHandler(vc, &stubReturns{}, stubQueries{}), models.Caller{ID: "p1", Role: models.RolePartner})

	w := perform(r, http.MethodPost, "/change-vehicle", `{"bookingId":"b1","newVehicleId":"v2","reason":"swap"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if vc.got.PartnerID != "p1" {
		t.Errorf("partnerId = %q, want caller id", vc.got.PartnerID)
	}
	var res models.VehicleChangeResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success || res.AdjustmentAmount != 40 || res.NewVehicle.ID != "v2" {
		t.Errorf("response = %+v", res)
	}
}

func TestChangeVehicleHandlerRejectsForeignPartnerID(t *testing.T) {
	vc := &stubVehicleChange{}
	r := newTestRouter(NewBookingHandler(vc, &stubReturns{}, stubQueries{}), models.Caller{ID: "p1", Role: models.RolePartner})

	w := perform(r, http.MethodPost, "/change-vehicle", `{"bookingId":"b1","partnerId":"p2","newVehicleId":"v2"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if vc.got.BookingID != "" {
		t.Error("service called for mismatched identity")
	}
}

func TestChangeVehicleHandlerAdminMayActForPartner(t *testing.T) {
	vc := &stubVehicleChange{}
	r := newTestRouter(NewBookingHandler(vc, &stubReturns{}, stubQueries{}), models.Caller{ID: "a1", Role: models.RoleAdmin})

	w := perform(r, http.MethodPost, "/change-vehicle", `{"bookingId":"b1","partnerId":"p2","newVehicleId":"v2"}`)
	if w.Code != http.StatusOK || vc.got.PartnerID != "p2" {
		t.Fatalf("status = %d, partner = %q", w.Code, vc.got.PartnerID)
	}
}

func TestChangeVehicleHandlerMapsErrors(t *testing.T) {
	tests := []struct {
		kind utils.ErrorKind
		want int
	}{
		{utils.KindValidation, http.StatusBadRequest},
		{utils.KindNotFound, http.StatusNotFound},
		{utils.KindAuthorization, http.StatusForbidden},
		{utils.KindInvalidState, http.StatusBadRequest},
		{utils.KindVehicleUnavailable, http.StatusBadRequest},
		{utils.KindConflict, http.StatusConflict},
		{utils.KindDependencyWrite, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			vc := &stubVehicleChange{err: utils.NewAppError(tt.kind, "nope")}
			r := newTestRouter(NewBookingHandler(vc, &stubReturns{}, stubQueries{}), models.Caller{ID: "p1", Role: models.RolePartner})

			w := perform(r, http.MethodPost, "/change-vehicle", `{"bookingId":"b1","newVehicleId":"v2"}`)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if msg := errorBody(t, w); msg != "nope" {
				t.Errorf("error = %q", msg)
			}
		})
	}
}

func TestChangeVehicleHandlerBadJSON(t *testing.T) {
	r := newTestRouter(NewBookingHandler(&stubVehicleChange{}, &stubReturns{}, stubQueries{}), models.Caller{ID: "p1", Role: models.RolePartner})
	if w := perform(r, http.MethodPost, "/change-vehicle", `{"bookingId":`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestQuoteVehicleChangeHandler(t *testing.T) {
	vc := &stubVehicleChange{}
	r := newTestRouter(NewBookingHandler(vc, &stubReturns{}, stubQueries{}), models.Caller{ID: "p1", Role: models.RolePartner})

	w := perform(r, http.MethodPost, "/change-vehicle/quote", `{"bookingId":"b1","newVehicleId":"v2"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRequestReturnHandlerIdentity(t *testing.T) {
	tests := []struct {
		name     string
		caller   models.Caller
		body     string
		wantCode int
		wantBy   string
		wantType string
	}{
		{"defaults to caller", models.Caller{ID: "d1", Role: models.RoleDriver},
			`{"bookingId":"b1","action":"request"}`, http.StatusOK, "d1", models.RoleDriver},
		{"matching identity", models.Caller{ID: "p1", Role: models.RolePartner},
			`{"bookingId":"b1","action":"reject","requestedBy":"p1","requestedByType":"partner"}`, http.StatusOK, "p1", models.RolePartner},
		{"impersonation", models.Caller{ID: "d1", Role: models.RoleDriver},
			`{"bookingId":"b1","action":"request","requestedBy":"d2","requestedByType":"driver"}`, http.StatusForbidden, "", ""},
		{"role mismatch", models.Caller{ID: "d1", Role: models.RoleDriver},
			`{"bookingId":"b1","action":"approve","requestedBy":"d1","requestedByType":"partner"}`, http.StatusForbidden, "", ""},
		{"mixed case role", models.Caller{ID: "d1", Role: models.RoleDriver},
			`{"bookingId":"b1","action":"request","requestedBy":" d1 ","requestedByType":" Driver"}`, http.StatusOK, "d1", models.RoleDriver},
		{"admin on behalf", models.Caller{ID: "a1", Role: models.RoleAdmin},
			`{"bookingId":"b1","action":"approve","requestedBy":"p1","requestedByType":"partner"}`, http.StatusOK, "p1", models.RolePartner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := &stubReturns{}
			r := newTestRouter(NewBookingHandler(&stubVehicleChange{}, rs, stubQueries{}), tt.caller)

			w := perform(r, http.MethodPost, "/request-return", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			if rs.got.RequestedBy != tt.wantBy || rs.got.RequestedByType != tt.wantType {
				t.Errorf("service got %+v", rs.got)
			}
		})
	}
}

func TestRequestReturnHandlerInvalidState(t *testing.T) {
	rs := &stubReturns{err: utils.NewAppError(utils.KindInvalidState, "No return has been requested for this booking")}
	r := newTestRouter(NewBookingHandler(&stubVehicleChange{}, rs, stubQueries{}), models.Caller{ID: "p1", Role: models.RolePartner})

	w := perform(r, http.MethodPost, "/request-return", `{"bookingId":"b1","action":"approve"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetBookingHandlers(t *testing.T) {
	r := newTestRouter(NewBookingHandler(&stubVehicleChange{}, &stubReturns{}, stubQueries{}), models.Caller{ID: "d1", Role: models.RoleDriver})

	if w := perform(r, http.MethodGet, "/bookings/b1", ""); w.Code != http.StatusOK {
		t.Errorf("get booking: status = %d", w.Code)
	}
	if w := perform(r, http.MethodGet, "/bookings/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing booking: status = %d", w.Code)
	}
	w := perform(r, http.MethodGet, "/bookings/b1/history", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"h1"`) {
		t.Errorf("history: status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestHandlersRequireCaller(t *testing.T) {
	h := NewBookingHandler(&stubVehicleChange{}, &stubReturns{}, stubQueries{})
	r := gin.New()
	r.GET("/bookings/:id", h.GetBookingHandler)

	if w := perform(r, http.MethodGet, "/bookings/b1", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if _, ok := middleware.CallerFromContext(&gin.Context{}); ok {
		t.Error("empty context should carry no caller")
	}
}
