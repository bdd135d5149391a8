package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/dto"
	"github.com/SscSPs/expense_manager_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// uploadHandler accepts receipt files.
type uploadHandler struct {
	attachmentService portssvc.AttachmentSvcFacade
}

func registerUploadRoutes(rg *gin.RouterGroup, attachmentService portssvc.AttachmentSvcFacade) {
	h := &uploadHandler{attachmentService: attachmentService}

	rg.POST("/uploads", h.uploadReceipt)
	rg.POST("/ocr", h.extractReceipt)
}

// uploadReceipt godoc
// @Summary Upload a receipt
// @Description Stores a receipt image or PDF against one of the caller's expenses.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt (jpeg, png, gif or pdf)"
// @Param expenseId formData string true "Expense ID"
// @Success 201 {object} dto.UploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /uploads [post]
func (h *uploadHandler) uploadReceipt(c *gin.Context) {
	caller, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	file, closeFile, err := formUpload(c)
	if err != nil {
		respondBindError(c, err, "upload form")
		return
	}
	defer closeFile()

	attachment, err := h.attachmentService.UploadAttachment(c.Request.Context(), caller, c.PostForm("expenseId"), file)
	if err != nil {
		respondError(c, err, "Failed to upload file")
		return
	}
	c.JSON(http.StatusCreated, dto.UploadResponse{
		AttachmentID: attachment.AttachmentID,
		FileURL:      attachment.URL,
	})
}

// extractReceipt godoc
// @Summary Extract receipt data
// @Description Reads the amount, date, vendor and category from a receipt.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt (jpeg, png, gif or pdf)"
// @Success 200 {object} dto.OCRResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /ocr [post]
func (h *uploadHandler) extractReceipt(c *gin.Context) {
	caller, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	file, closeFile, err := formUpload(c)
	if err != nil {
		respondBindError(c, err, "upload form")
		return
	}
	defer closeFile()

	result, err := h.attachmentService.ExtractReceipt(c.Request.Context(), caller, file)
	if err != nil {
		respondError(c, err, "Failed to process receipt")
		return
	}
	c.JSON(http.StatusOK, result)
}

// formUpload opens the "file" form field. A missing file yields an empty
// UploadFile so the service reports it.
func formUpload(c *gin.Context) (portssvc.UploadFile, func(), error) {
	noop := func() {}
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return portssvc.UploadFile{}, noop, nil
	}
	if err != nil {
		return portssvc.UploadFile{}, noop, err
	}

	var f multipart.File
	if f, err = header.Open(); err != nil {
		return portssvc.UploadFile{}, noop, err
	}
	return portssvc.UploadFile{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  f,
	}, func() { _ = f.Close() }, nil
}
