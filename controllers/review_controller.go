package controllers

import (
	"lablinc/dto"
	"lablinc/response"
	"lablinc/services"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

func (ctrl *ReviewController) Create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var input dto.CreateReviewInput
	if !bindJSON(c, &input) {
		return
	}
	review, err := ctrl.reviews.Create(c.Request.Context(), userID, input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, review)
}
