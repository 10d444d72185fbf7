package handlers

import (
	"net/http"
	"strings"

	"pcohire/middleware"
	"pcohire/models"
	"pcohire/services/booking"
	"pcohire/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the booking mutation and read endpoints.
type BookingHandler struct {
	VehicleChange booking.VehicleChangeService
	Returns       booking.ReturnService
	Queries       booking.BookingQueryService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(vc booking.VehicleChangeService, rs booking.ReturnService, qs booking.BookingQueryService) *BookingHandler {
	return &BookingHandler{VehicleChange: vc, Returns: rs, Queries: qs}
}

func mustCaller(c *gin.Context) (models.Caller, bool) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Unauthenticated"})
	}
	return caller, ok
}

// bindVehicleChange decodes the body and reconciles the partner identity with the token.
func bindVehicleChange(c *gin.Context) (models.VehicleChangeRequest, bool) {
	var req models.VehicleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid input", Details: err.Error()})
		return req, false
	}
	caller, ok := mustCaller(c)
	if !ok {
		return req, false
	}
	if req.PartnerID == "" {
		req.PartnerID = caller.ID
	}
	if req.PartnerID != caller.ID && !caller.IsAdmin() {
		utils.RespondError(c, getLogger(c), utils.NewAppError(utils.KindAuthorization, "partnerId does not match the authenticated caller"))
		return req, false
	}
	return req, true
}

// ChangeVehicleHandler reassigns a booking to a different vehicle.
func (h *BookingHandler) ChangeVehicleHandler(c *gin.Context) {
	req, ok := bindVehicleChange(c)
	if !ok {
		return
	}
	logger := getLogger(c).With(zap.String("booking_id", req.BookingID))

	res, err := h.VehicleChange.ChangeVehicle(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// QuoteVehicleChangeHandler previews the adjustment a vehicle change would produce.
func (h *BookingHandler) QuoteVehicleChangeHandler(c *gin.Context) {
	req, ok := bindVehicleChange(c)
	if !ok {
		return
	}
	quote, err := h.VehicleChange.QuoteVehicleChange(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, getLogger(c).With(zap.String("booking_id", req.BookingID)), err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// RequestReturnHandler drives the return workflow: request, approve or reject.
func (h *BookingHandler) RequestReturnHandler(c *gin.Context) {
	var req models.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid input", Details: err.Error()})
		return
	}
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	req.RequestedBy = strings.TrimSpace(req.RequestedBy)
	req.RequestedByType = strings.ToLower(strings.TrimSpace(req.RequestedByType))
	if req.RequestedBy == "" {
		req.RequestedBy = caller.ID
	}
	if req.RequestedByType == "" {
		req.RequestedByType = caller.Role
	}
	if !caller.IsAdmin() && (req.RequestedBy != caller.ID || req.RequestedByType != caller.Role) {
		utils.RespondError(c, getLogger(c), utils.NewAppError(utils.KindAuthorization, "requestedBy does not match the authenticated caller"))
		return
	}

	logger := getLogger(c).With(zap.String("booking_id", req.BookingID), zap.String("action", req.Action))
	res, err := h.Returns.HandleReturn(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetBookingHandler returns a booking to one of its parties.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	b, err := h.Queries.GetBooking(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b, "return_status": b.ReturnState.Status()})
}

// GetBookingHistoryHandler returns the audit trail of a booking, newest first.
func (h *BookingHandler) GetBookingHistoryHandler(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	entries, err := h.Queries.GetHistory(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}
