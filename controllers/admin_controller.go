package controllers

import (
	"lablinc/dto"
	"lablinc/response"
	"lablinc/services"
	"lablinc/utils"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	admin *services.AdminService
	audit *services.AuditService
}

func NewAdminController(admin *services.AdminService, audit *services.AuditService) *AdminController {
	return &AdminController{admin: admin, audit: audit}
}

func (ctrl *AdminController) ListUsers(c *gin.Context) {
	page := utils.ParsePage(c)
	filter := dto.UserFilter{
		Role:   queryInt(c, "role"),
		Status: queryInt(c, "status"),
		Query:  c.Query("q"),
		Page:   page,
	}
	users, total, err := ctrl.admin.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithPagination(c, users, page.Page, page.Limit, int(total))
}

func (ctrl *AdminController) SetUserStatus(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input dto.UserStatusInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := ctrl.admin.SetUserStatus(c.Request.Context(), actorID, id, input.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}

func (ctrl *AdminController) VerifyInstitute(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := ctrl.admin.VerifyInstitute(c.Request.Context(), actorID, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}

func (ctrl *AdminController) Stats(c *gin.Context) {
	stats, err := ctrl.admin.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, stats)
}

func (ctrl *AdminController) AuditLogs(c *gin.Context) {
	page := utils.ParsePage(c)
	filter := dto.AuditFilter{
		ActorID:    queryUint(c, "actorId"),
		Action:     c.Query("action"),
		EntityType: c.Query("entityType"),
		Page:       page,
	}
	logs, total, err := ctrl.audit.List(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithPagination(c, logs, page.Page, page.Limit, int(total))
}
