package controllers

import (
	"lablinc/dto"
	"lablinc/response"
	"lablinc/services"
	"lablinc/services/notification"
	"lablinc/utils"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

type NotificationController struct {
	notifier *services.NotificationService
	tokens   *services.TokenService
	melody   *melody.Melody
}

type NotificationControllerOptions struct {
	Notifier *services.NotificationService
	Tokens   *services.TokenService
	Melody   *melody.Melody
}

func NewNotificationController(opts NotificationControllerOptions) *NotificationController {
	return &NotificationController{
		notifier: opts.Notifier,
		tokens:   opts.Tokens,
		melody:   opts.Melody,
	}
}

func (ctrl *NotificationController) List(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	page := utils.ParsePage(c)
	items, total, err := ctrl.notifier.List(c.Request.Context(), userID, page)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithPagination(c, items, page.Page, page.Limit, int(total))
}

func (ctrl *NotificationController) UnreadCount(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	count, err := ctrl.notifier.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, dto.CountResponse{Count: count})
}

func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.notifier.MarkRead(c.Request.Context(), userID, id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, dto.IDResponse{ID: id})
}

func (ctrl *NotificationController) MarkAllRead(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	count, err := ctrl.notifier.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, dto.CountResponse{Count: count})
}

// Stream upgrades to a websocket that receives the caller's notifications.
// Browsers cannot set headers on websocket requests, so the token comes
// from ?token=.
func (ctrl *NotificationController) Stream(c *gin.Context) {
	userID, _, err := ctrl.tokens.Parse(c.Query("token"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	keys := map[string]interface{}{notification.SessionUserKey: userID}
	if err := ctrl.melody.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		_ = c.Error(err)
	}
}
