package controller

import (
	"strconv"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/service"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Notifications *service.NotificationService
}

func NewNotificationController(notifications *service.NotificationService) *NotificationController {
	return &NotificationController{Notifications: notifications}
}

// @Summary Listar notificaciones
// @Tags Administración
// @Produce json
// @Security BearerAuth
// @Param page query int false "Página"
// @Param limit query int false "Elementos por página"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	notifications, total, err := c.Notifications.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: notifications, Total: total, Page: page, Limit: limit})
}

// @Summary Marcar notificación como leída
// @Tags Administración
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID de la notificación"
// @Success 200 {object} util.Response
// @Router /api/admin/notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "id inválido")
		return
	}

	if err := c.Notifications.MarkRead(uint(id)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
