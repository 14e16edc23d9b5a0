package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/albaranes-api/internal/application/deliverynote"
	"github.com/jhoicas/albaranes-api/internal/application/dto"
)

// DeliveryNoteHandler albaranes y su PDF (protegido).
type DeliveryNoteHandler struct {
	uc        *deliverynote.UseCase
	maxUpload int64
}

// NewDeliveryNoteHandler construye el handler.
func NewDeliveryNoteHandler(uc *deliverynote.UseCase, maxUpload int64) *DeliveryNoteHandler {
	return &DeliveryNoteHandler{uc: uc, maxUpload: maxUpload}
}

// Create godoc
// @Summary      Crear albarán
// @Tags         deliverynotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDeliveryNoteRequest  true  "Datos del albarán"
// @Success      201   {object}  dto.DeliveryNoteResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/deliverynotes [post]
func (h *DeliveryNoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDeliveryNoteRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar albaranes propios
// @Tags         deliverynotes
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DeliveryNoteListResponse
// @Router       /api/deliverynotes [get]
func (h *DeliveryNoteHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener albarán con proyecto y cliente
// @Tags         deliverynotes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del albarán"
// @Success      200  {object}  dto.DeliveryNoteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/deliverynotes/{id} [get]
func (h *DeliveryNoteHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar albarán sin firmar
// @Tags         deliverynotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del albarán"
// @Param        body  body  dto.UpdateDeliveryNoteRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.DeliveryNoteResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/deliverynotes/{id} [put]
func (h *DeliveryNoteHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDeliveryNoteRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Destroy godoc
// @Summary      Eliminar albarán sin firmar
// @Tags         deliverynotes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del albarán"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/deliverynotes/{id} [delete]
func (h *DeliveryNoteHandler) Destroy(c *fiber.Ctx) error {
	if err := h.uc.Destroy(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "albarán eliminado"})
}

// GetPDF godoc
// @Summary      Descargar el PDF del albarán
// @Description  Regenera el PDF, lo sube al almacén de artefactos y actualiza pdf_url.
// @Tags         deliverynotes
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del albarán"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/deliverynotes/pdf/{id} [get]
func (h *DeliveryNoteHandler) GetPDF(c *fiber.Ctx) error {
	file, err := h.uc.GetPDF(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return sendPDF(c, file)
}

// Sign godoc
// @Summary      Firmar albarán
// @Description  Sube la firma (PNG o JPEG), regenera el PDF firmado y lo devuelve.
// @Tags         deliverynotes
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      application/pdf
// @Param        id     path      string  true  "ID del albarán"
// @Param        image  formData  file    true  "imagen de la firma"
// @Success      200    {file}    binary
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/deliverynotes/sign/{id} [patch]
func (h *DeliveryNoteHandler) Sign(c *fiber.Ctx) error {
	_, data, err := formImage(c, h.maxUpload)
	if err != nil {
		return err
	}
	file, err := h.uc.Sign(c.UserContext(), GetPrincipal(c), c.Params("id"), data)
	if err != nil {
		return err
	}
	return sendPDF(c, file)
}

func sendPDF(c *fiber.Ctx, file *dto.PDFFile) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	if file.URL != "" {
		c.Set("X-Artifact-URL", file.URL)
	}
	return c.Send(file.Content)
}
