package controllers

import (
	"lablinc/dto"
	"lablinc/response"
	"lablinc/services"
	"lablinc/utils"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

func (ctrl *PaymentController) Create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var input dto.CreatePaymentInput
	if !bindJSON(c, &input) {
		return
	}
	payment, err := ctrl.payments.Create(c.Request.Context(), userID, input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, payment)
}

func (ctrl *PaymentController) List(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	items, total, err := ctrl.payments.List(c.Request.Context(), userID, role, page)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithPagination(c, items, page.Page, page.Limit, int(total))
}

func (ctrl *PaymentController) Get(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	payment, err := ctrl.payments.Get(c.Request.Context(), userID, role, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, payment)
}
