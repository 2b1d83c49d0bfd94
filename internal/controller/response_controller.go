package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/service"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ResponseController struct {
	Responses *service.ResponseService
	Odoo      *service.OdooService
	Storage   *service.StorageService
}

func NewResponseController(responses *service.ResponseService, odoo *service.OdooService, storage *service.StorageService) *ResponseController {
	return &ResponseController{Responses: responses, Odoo: odoo, Storage: storage}
}

// @Summary Enviar respuestas de un formulario
// @Description Califica y registra un intento de examen o encuesta
// @Tags Respuestas
// @Accept json
// @Produce json
// @Param body body service.SubmitRequest true "Respuestas del formulario"
// @Success 201 {object} util.Response{data=service.GradingResult}
// @Failure 409 {object} util.Response "Intentos agotados o examen ya aprobado"
// @Failure 422 {object} util.Response "Configuración de puntaje inválida"
// @Router /api/public/responses/submit [post]
func (c *ResponseController) Submit(ctx *gin.Context) {
	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Responses.Submit(ctx.Request.Context(), &req)
	if err != nil {
		var denied *service.AttemptDeniedError
		switch {
		case errors.As(err, &denied):
			util.Conflict(ctx, denied.Error(), denied.Status)
		case errors.Is(err, util.ErrFormNotFound):
			util.Error(ctx, http.StatusNotFound, err.Error())
		case errors.Is(err, util.ErrFormInactive):
			util.Error(ctx, http.StatusForbidden, err.Error())
		case errors.Is(err, util.ErrInvalidPointsConfig):
			util.UnprocessableEntity(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, result)
}

// @Summary Obtener el resultado de una respuesta
// @Tags Respuestas
// @Produce json
// @Param uuid path string true "UUID de la respuesta"
// @Success 200 {object} util.Response{data=service.ResultView}
// @Router /api/public/responses/{uuid}/result [get]
func (c *ResponseController) GetResult(ctx *gin.Context) {
	result, err := c.Responses.GetResult(ctx.Param("uuid"))
	if err != nil {
		if errors.Is(err, util.ErrResponseNotFound) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Consultar intentos disponibles
// @Description Indica si el postulante aún puede rendir el examen
// @Tags Respuestas
// @Produce json
// @Param uuid path string true "UUID del formulario"
// @Param email query string true "Correo del postulante"
// @Success 200 {object} util.Response{data=service.AttemptStatus}
// @Router /api/public/forms/{uuid}/attempt-status [get]
func (c *ResponseController) CheckAttempt(ctx *gin.Context) {
	email := ctx.Query("email")
	if email == "" {
		util.BadRequest(ctx, "email es requerido")
		return
	}

	status, err := c.Responses.CheckAttemptStatus(ctx.Param("uuid"), email)
	if err != nil {
		if errors.Is(err, util.ErrFormNotFound) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// @Summary Validar estudiante en WE Online
// @Description Verifica que el correo pertenezca a un estudiante registrado
// @Tags Respuestas
// @Accept json
// @Produce json
// @Param body body object true "{email}"
// @Success 200 {object} util.Response{data=service.OdooStudent}
// @Router /api/public/validate-student [post]
func (c *ResponseController) ValidateStudent(ctx *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, err := c.Odoo.ValidateStudent(ctx.Request.Context(), body.Email)
	if err != nil {
		if errors.Is(err, util.ErrStudentNotRegistered) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, student)
}

// @Summary Descargar certificado archivado
// @Tags Respuestas
// @Produce application/pdf
// @Param uuid path string true "UUID de la respuesta"
// @Success 200 {file} binary
// @Router /api/public/certificate/{uuid} [get]
func (c *ResponseController) GetCertificate(ctx *gin.Context) {
	uuid := ctx.Param("uuid")

	if c.Storage != nil {
		reader, err := c.Storage.FetchCertificate(ctx.Request.Context(), uuid)
		if err == nil {
			defer reader.Close()
			ctx.Header("Content-Type", "application/pdf")
			ctx.Header("Content-Disposition", "attachment; filename=certificado-"+uuid+".pdf")
			ctx.Status(http.StatusOK)
			io.Copy(ctx.Writer, reader)
			return
		}
		if !errors.Is(err, util.ErrCertificateNotFound) {
			util.LogInternalError(ctx, err)
			return
		}
	}

	// No archived copy; redirect to the issuer's download URL if recorded.
	result, err := c.Responses.GetResult(uuid)
	if err != nil {
		if errors.Is(err, util.ErrResponseNotFound) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	if result.CertificatePDF == nil || *result.CertificatePDF == "" {
		util.Error(ctx, http.StatusNotFound, util.ErrCertificateNotFound.Error())
		return
	}
	ctx.Redirect(http.StatusFound, *result.CertificatePDF)
}

// @Summary Listar respuestas (administración)
// @Tags Administración
// @Produce json
// @Security BearerAuth
// @Param form_id query int false "Filtrar por formulario"
// @Param status query string false "Filtrar por estado"
// @Param page query int false "Página"
// @Param limit query int false "Elementos por página"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/responses [get]
func (c *ResponseController) List(ctx *gin.Context) {
	formID, _ := strconv.Atoi(ctx.DefaultQuery("form_id", "0"))
	status := ctx.Query("status")
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rows, total, err := c.Responses.Responses.List(uint(formID), status, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: rows, Total: total, Page: page, Limit: limit})
}

// @Summary Detalle de una respuesta (administración)
// @Tags Administración
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID de la respuesta"
// @Success 200 {object} util.Response
// @Router /api/admin/responses/{id} [get]
func (c *ResponseController) GetByID(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "id inválido")
		return
	}

	resp, err := c.Responses.Responses.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	answers, err := c.Responses.Responses.ListAnswers(resp.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"response": resp, "answers": answers})
}

// @Summary Eliminar una respuesta (administración)
// @Tags Administración
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID de la respuesta"
// @Success 200 {object} util.Response
// @Router /api/admin/responses/{id} [delete]
func (c *ResponseController) Delete(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "id inválido")
		return
	}

	if err := c.Responses.Responses.Delete(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
