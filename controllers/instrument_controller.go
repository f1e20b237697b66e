package controllers

import (
	"time"

	"lablinc/dto"
	"lablinc/response"
	"lablinc/services"
	"lablinc/utils"

	"github.com/gin-gonic/gin"
)

type InstrumentController struct {
	instruments *services.InstrumentService
	bookings    *services.BookingService
	reviews     *services.ReviewService
	loc         *time.Location
}

type InstrumentControllerOptions struct {
	Instruments *services.InstrumentService
	Bookings    *services.BookingService
	Reviews     *services.ReviewService
	Location    *time.Location
}

func NewInstrumentController(opts InstrumentControllerOptions) *InstrumentController {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &InstrumentController{
		instruments: opts.Instruments,
		bookings:    opts.Bookings,
		reviews:     opts.Reviews,
		loc:         loc,
	}
}

func (ctrl *InstrumentController) List(c *gin.Context) {
	page := utils.ParsePage(c)
	filter := dto.InstrumentFilter{
		Category:     c.Query("category"),
		City:         c.Query("city"),
		Status:       c.Query("status"),
		Query:        c.Query("q"),
		InstituteID:  queryUint(c, "instituteId"),
		MinDailyRate: queryFloat(c, "minDailyRate"),
		MaxDailyRate: queryFloat(c, "maxDailyRate"),
		Page:         page,
	}
	items, total, err := ctrl.instruments.List(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithPagination(c, items, page.Page, page.Limit, int(total))
}

func (ctrl *InstrumentController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	inst, err := ctrl.instruments.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, inst)
}

func (ctrl *InstrumentController) Create(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	var input dto.InstrumentInput
	if !bindJSON(c, &input) {
		return
	}
	inst, err := ctrl.instruments.Create(c.Request.Context(), userID, role, input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, inst)
}

func (ctrl *InstrumentController) Update(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input dto.InstrumentInput
	if !bindJSON(c, &input) {
		return
	}
	inst, err := ctrl.instruments.Update(c.Request.Context(), userID, role, id, input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, inst)
}

func (ctrl *InstrumentController) Delete(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.instruments.Delete(c.Request.Context(), userID, role, id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, dto.IDResponse{ID: id})
}

// Availability lists booked windows between ?from and ?to.
func (ctrl *InstrumentController) Availability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var from, to time.Time
	if v := c.Query("from"); v != "" {
		t, err := utils.ParseTimestamp(v, ctrl.loc)
		if err != nil {
			response.BadRequest(c, "Invalid from date")
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := utils.ParseTimestamp(v, ctrl.loc)
		if err != nil {
			response.BadRequest(c, "Invalid to date")
			return
		}
		to = t
	}
	windows, err := ctrl.bookings.Availability(c.Request.Context(), id, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, windows)
}

func (ctrl *InstrumentController) Reviews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	items, total, err := ctrl.reviews.ListForInstrument(c.Request.Context(), id, page)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithPagination(c, items, page.Page, page.Limit, int(total))
}
