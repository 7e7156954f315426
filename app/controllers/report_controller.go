package controllers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/TobiasKrause/DamageDesk/internal/pkg/reports"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/upload"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/usercontext"
)

var reportService *reports.Service

// InitializeReportController wires the reports service into the handlers.
func InitializeReportController(svc *reports.Service) {
	reportService = svc
}

// HandleReportDamage handles POST /api/reports/damage: multipart form with
// an item_sku field and up to five images. The creator identity comes from
// the verified token context, never from the form.
func HandleReportDamage(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	itemSKU := c.FormValue("item_sku")

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images"]
	}

	if len(files) > upload.MaxFiles {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": upload.ErrTooManyFiles.Error()})
	}

	accepted := make([]reports.IncomingFile, 0, len(files))
	for _, file := range files {
		if file.Size > upload.MaxFileSize {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "payload_too_large", "message": upload.ErrFileTooLarge.Error()})
		}

		mimetype, err := sniffUploadedFile(file)
		if err != nil {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"error": "unsupported_media_type", "message": err.Error()})
		}

		file := file
		accepted = append(accepted, reports.IncomingFile{
			OriginalName: file.Filename,
			Mimetype:     mimetype,
			Open: func() (io.ReadCloser, error) {
				return file.Open()
			},
		})
	}

	result, err := reportService.SubmitReport(user, itemSKU, accepted)
	if err != nil {
		fiberlog.Errorf("[Reports] Submission failed for user %s: %v", user.UserID, err)
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Damage report created successfully",
		"report":  result.Report,
	})
}

// sniffUploadedFile reads the first bytes of the upload and validates the
// detected content type against the accepted image formats.
func sniffUploadedFile(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(src, head)
	if n > 0 {
		head = head[:n]
	}

	return upload.ValidateImageBySniff(file.Filename, head)
}

// HandleGetReport handles GET /api/reports/:id
func HandleGetReport(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid report id"})
	}

	report, err := reportService.GetReport(uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(report)
}

// HandleListReports handles GET /api/reports?status=...
func HandleListReports(c *fiber.Ctx) error {
	status := c.Query("status")

	list, err := reportService.ListReports(status)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(list)
}

// HandleReviewReport handles PATCH /api/reports/:id/review. The review is
// idempotent: reapplying the same decision succeeds without a second write.
func HandleReviewReport(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid report id"})
	}

	var req struct {
		Status          string           `json:"status"`
		FinalConfidence *decimal.Decimal `json:"final_confidence"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	report, err := reportService.ReviewReport(uint(id), req.Status, req.FinalConfidence)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(report)
}
