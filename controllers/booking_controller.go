package controllers

import (
	"lablinc/dto"
	"lablinc/response"
	"lablinc/services"
	"lablinc/utils"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{bookings: bookings}
}

// Quote prices a window without creating anything. It is public so the
// booking form can refresh the estimate as dates change.
func (ctrl *BookingController) Quote(c *gin.Context) {
	var input dto.QuoteInput
	if !bindJSON(c, &input) {
		return
	}
	quote, err := ctrl.bookings.Quote(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, quote)
}

func (ctrl *BookingController) Create(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	var input dto.CreateBookingInput
	if !bindJSON(c, &input) {
		return
	}
	booking, err := ctrl.bookings.Create(c.Request.Context(), userID, role, input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, booking)
}

func (ctrl *BookingController) List(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	filter := dto.BookingFilter{
		Status:       c.Query("status"),
		InstrumentID: queryUint(c, "instrumentId"),
		Page:         page,
	}
	items, total, err := ctrl.bookings.List(c.Request.Context(), userID, role, filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithPagination(c, items, page.Page, page.Limit, int(total))
}

func (ctrl *BookingController) Get(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := ctrl.bookings.Get(c.Request.Context(), userID, role, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, booking)
}

func (ctrl *BookingController) UpdateStatus(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input dto.BookingStatusInput
	if !bindJSON(c, &input) {
		return
	}
	booking, err := ctrl.bookings.UpdateStatus(c.Request.Context(), userID, role, id, input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, booking)
}
