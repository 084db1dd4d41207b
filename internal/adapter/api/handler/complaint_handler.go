package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/internal/usecase"
	"grievance/pkg/errors"
	"grievance/pkg/response"
	"grievance/pkg/utils"
)

// UploadLimits bounds complaint attachments.
type UploadLimits struct {
	MaxFileSize  int64
	MaxFiles     int
	AllowedTypes []string
}

func DefaultUploadLimits() UploadLimits {
	return UploadLimits{
		MaxFileSize:  10 << 20,
		MaxFiles:     5,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "video/mp4", "video/quicktime"},
	}
}

func (l UploadLimits) allows(contentType string) bool {
	for _, t := range l.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

type ComplaintHandler struct {
	complaintUseCase *usecase.ComplaintUseCase
	upload           UploadLimits
}

func NewComplaintHandler(complaintUseCase *usecase.ComplaintUseCase, upload UploadLimits) *ComplaintHandler {
	return &ComplaintHandler{
		complaintUseCase: complaintUseCase,
		upload:           upload,
	}
}

type createComplaintRequest struct {
	Department  string `json:"department" form:"department" validate:"required"`
	SubCategory string `json:"sub_category" form:"sub_category" validate:"required"`
	Title       string `json:"title" form:"title" validate:"required,min=5,max=200"`
	Description string `json:"description" form:"description" validate:"required,min=10,max=2000"`
	Location    string `json:"location" form:"location" validate:"required,max=300"`
	PinCode     string `json:"pin_code" form:"pin_code" validate:"required,len=6,numeric"`
	Urgency     string `json:"urgency" form:"urgency" validate:"omitempty,oneof=low medium high emergency"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=1000"`
}

type assignRequest struct {
	StaffID string `json:"staff_id" validate:"required"`
	Note    string `json:"note" validate:"max=1000"`
}

func (h *ComplaintHandler) CreateComplaint(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req createComplaintRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	attachments, err := h.readAttachments(c)
	if err != nil {
		return response.Error(c, err)
	}

	complaint, err := h.complaintUseCase.CreateComplaint(c.Request().Context(), identity, usecase.CreateComplaintInput{
		Department:  entity.DepartmentID(req.Department),
		SubCategory: req.SubCategory,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		PinCode:     req.PinCode,
		Urgency:     entity.Urgency(req.Urgency),
		Attachments: attachments,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, complaint)
}

// readAttachments collects the "attachments" files of a multipart request.
// A JSON request carries none.
func (h *ComplaintHandler) readAttachments(c echo.Context) ([]usecase.Attachment, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.BadRequest("Invalid multipart form", err)
	}

	files := form.File["attachments"]
	if len(files) > h.upload.MaxFiles {
		return nil, errors.BadRequest("Too many attachments", nil)
	}

	attachments := make([]usecase.Attachment, 0, len(files))
	for _, fh := range files {
		a, err := h.readAttachment(fh)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, nil
}

func (h *ComplaintHandler) readAttachment(fh *multipart.FileHeader) (usecase.Attachment, error) {
	if fh.Size > h.upload.MaxFileSize {
		return usecase.Attachment{}, errors.BadRequest("Attachment "+fh.Filename+" is too large", nil)
	}

	f, err := fh.Open()
	if err != nil {
		return usecase.Attachment{}, errors.BadRequest("Unable to read attachment", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.upload.MaxFileSize+1))
	if err != nil {
		return usecase.Attachment{}, errors.BadRequest("Unable to read attachment", err)
	}
	if int64(len(data)) > h.upload.MaxFileSize {
		return usecase.Attachment{}, errors.BadRequest("Attachment "+fh.Filename+" is too large", nil)
	}

	contentType := http.DetectContentType(data)
	if declared := fh.Header.Get(echo.HeaderContentType); contentType == "application/octet-stream" && strings.HasPrefix(declared, "video/") {
		// Sniffing does not recognise every video container, e.g. QuickTime.
		contentType = declared
	}
	if !h.upload.allows(contentType) {
		return usecase.Attachment{}, errors.BadRequest("Only images and videos are allowed", nil)
	}

	return usecase.Attachment{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}

func (h *ComplaintHandler) GetComplaint(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	complaint, err := h.complaintUseCase.GetComplaint(c.Request().Context(), c.Param("complaintId"), identity)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, complaint)
}

func (h *ComplaintHandler) ListComplaints(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	filter, err := parseComplaintFilter(c)
	if err != nil {
		return response.Error(c, err)
	}
	params := utils.GetPaginationParams(c)

	result, err := h.complaintUseCase.ListComplaints(c.Request().Context(), filter, identity, params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, result.Items, result.Total, params.Page, params.PageSize)
}

// TransitionStatus serves both the staff and the admin status routes.
func (h *ComplaintHandler) TransitionStatus(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	complaint, err := h.complaintUseCase.TransitionStatus(
		c.Request().Context(),
		c.Param("complaintId"),
		entity.ComplaintStatus(req.Status),
		strings.TrimSpace(req.Note),
		identity,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, complaint)
}

func (h *ComplaintHandler) AssignComplaint(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	complaint, err := h.complaintUseCase.AssignComplaint(
		c.Request().Context(),
		c.Param("complaintId"),
		req.StaffID,
		strings.TrimSpace(req.Note),
		identity,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, complaint)
}

// parseComplaintFilter reads status, urgency, search and department query
// parameters. department may be a comma separated list.
func parseComplaintFilter(c echo.Context) (repository.ComplaintFilter, error) {
	var f repository.ComplaintFilter

	if s := c.QueryParam("status"); s != "" && s != "all" {
		f.Status = entity.ComplaintStatus(s)
		if !f.Status.Valid() {
			return f, errors.BadRequest("Invalid status: "+s, nil)
		}
	}
	if u := c.QueryParam("urgency"); u != "" && u != "all" {
		f.Urgency = entity.Urgency(u)
		if !f.Urgency.Valid() {
			return f, errors.BadRequest("Invalid urgency: "+u, nil)
		}
	}
	f.Search = strings.TrimSpace(c.QueryParam("search"))

	if d := c.QueryParam("department"); d != "" && d != "all" {
		for _, id := range strings.Split(d, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.Departments = append(f.Departments, entity.DepartmentID(id))
			}
		}
	}

	return f, nil
}
