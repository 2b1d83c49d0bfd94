package controller

import (
	"errors"
	"net/http"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/service"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FormController struct {
	Forms *service.FormService
}

func NewFormController(forms *service.FormService) *FormController {
	return &FormController{Forms: forms}
}

// @Summary Obtener formulario público
// @Description Devuelve el formulario con sus preguntas, sin revelar las respuestas correctas
// @Tags Formularios
// @Produce json
// @Param uuid path string true "UUID del formulario"
// @Success 200 {object} util.Response{data=service.PublicForm}
// @Failure 404 {object} util.Response
// @Router /api/public/forms/{uuid} [get]
func (c *FormController) GetPublicForm(ctx *gin.Context) {
	form, err := c.Forms.GetPublicForm(ctx.Param("uuid"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrFormNotFound):
			util.Error(ctx, http.StatusNotFound, err.Error())
		case errors.Is(err, util.ErrFormInactive):
			util.Error(ctx, http.StatusForbidden, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, form)
}
