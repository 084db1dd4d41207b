package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/internal/domain/service"
	"grievance/pkg/errors"
	"grievance/pkg/logger"
	"grievance/pkg/metrics"
)

// createRetries bounds how many fresh identifiers are tried when the random
// suffix collides with an existing complaint in the same partition.
const createRetries = 3

type ComplaintUseCase struct {
	router     *service.PartitionRouter
	gather     *service.ScatterGather
	aggregator *service.StatisticsAggregator
	userRepo   repository.UserRepository
	notifier   Notifier
	blobs      BlobStore
	now        func() time.Time
}

func NewComplaintUseCase(
	router *service.PartitionRouter,
	gather *service.ScatterGather,
	aggregator *service.StatisticsAggregator,
	userRepo repository.UserRepository,
	notifier Notifier,
	blobs BlobStore,
) *ComplaintUseCase {
	return &ComplaintUseCase{
		router:     router,
		gather:     gather,
		aggregator: aggregator,
		userRepo:   userRepo,
		notifier:   notifier,
		blobs:      blobs,
		now:        time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (uc *ComplaintUseCase) WithClock(now func() time.Time) *ComplaintUseCase {
	uc.now = now
	return uc
}

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type CreateComplaintInput struct {
	Department  entity.DepartmentID
	SubCategory string
	Title       string
	Description string
	Location    string
	PinCode     string
	Urgency     entity.Urgency
	Attachments []Attachment
}

func (uc *ComplaintUseCase) CreateComplaint(ctx context.Context, owner entity.Identity, input CreateComplaintInput) (*entity.Complaint, error) {
	dept, ok := uc.router.Registry().Get(input.Department)
	if !ok {
		return nil, errors.BadRequest("Unknown department: "+string(input.Department), nil)
	}
	if input.SubCategory != "" && !dept.HasSubCategory(input.SubCategory) {
		return nil, errors.BadRequest("Unknown sub-category for "+dept.Label+": "+input.SubCategory, nil)
	}
	if input.Urgency == "" {
		input.Urgency = entity.UrgencyMedium
	}
	if !input.Urgency.Valid() {
		return nil, errors.BadRequest("Invalid urgency: "+string(input.Urgency), nil)
	}

	user, err := uc.userRepo.GetByID(ctx, owner.UserID)
	if err != nil {
		return nil, err
	}

	repo, err := uc.router.Partition(dept.ID)
	if err != nil {
		return nil, err
	}

	attachments, err := uc.storeAttachments(ctx, dept, input.Attachments)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	complaint := &entity.Complaint{
		ID:          uuid.New().String(),
		Department:  dept.ID,
		Category:    string(dept.ID),
		SubCategory: input.SubCategory,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		PinCode:     input.PinCode,
		Urgency:     input.Urgency,
		UserID:      user.ID,
		UserName:    user.Name,
		Attachments: attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	complaint.AppendStatus(entity.StatusSubmitted, "Complaint submitted", user.ID, now)

	for attempt := 1; ; attempt++ {
		complaint.ComplaintID, err = uc.router.Codec().Generate(dept.ID)
		if err != nil {
			return nil, errors.Internal("Failed to generate complaint id", err)
		}

		err = repo.Create(ctx, complaint)
		if err == nil {
			break
		}
		if !errors.Is(err, errors.CodeDuplicateKey) || attempt == createRetries {
			return nil, err
		}
		logger.Warn("Complaint id %s collided in %s, retrying", complaint.ComplaintID, dept.ID)
	}

	metrics.Default.ComplaintsCreated.WithLabelValues(string(dept.ID)).Inc()
	logger.Info("Complaint %s filed by user %s", complaint.ComplaintID, user.ID)

	return complaint, nil
}

func (uc *ComplaintUseCase) storeAttachments(ctx context.Context, dept entity.Department, files []Attachment) ([]string, error) {
	urls := make([]string, 0, len(files))
	if len(files) == 0 {
		return urls, nil
	}
	if uc.blobs == nil {
		return nil, errors.BadRequest("Attachments are not accepted on this deployment", nil)
	}

	for _, f := range files {
		name := fmt.Sprintf("complaints/%s/%s%s", dept.ID, uuid.New().String(), strings.ToLower(filepath.Ext(f.Name)))
		url, err := uc.blobs.Store(ctx, f.Data, name, f.ContentType)
		if err != nil {
			return nil, errors.Internal("Failed to store attachment", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// GetComplaint locates a complaint by business key or storage identity.
// Citizens may only read their own complaints.
func (uc *ComplaintUseCase) GetComplaint(ctx context.Context, complaintID string, requester entity.Identity) (*entity.Complaint, error) {
	complaint, _, err := uc.router.Locate(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	if requester.IsPublic() && complaint.UserID != requester.UserID {
		return nil, errors.Forbidden("You can only view your own complaints", nil)
	}

	return complaint, nil
}

// ListComplaints pages through every selected partition. A citizen's filter
// is always narrowed to their own complaints.
func (uc *ComplaintUseCase) ListComplaints(ctx context.Context, filter repository.ComplaintFilter, requester entity.Identity, page, pageSize int) (*service.QueryResult, error) {
	if requester.IsPublic() {
		filter.UserID = requester.UserID
	}
	return uc.gather.QueryAll(ctx, filter, page, pageSize)
}

// TransitionStatus moves a complaint one step through the status flow and
// tells its owner. The notification is best-effort.
func (uc *ComplaintUseCase) TransitionStatus(ctx context.Context, complaintID string, target entity.ComplaintStatus, note string, actor entity.Identity) (*entity.Complaint, error) {
	if !target.Valid() {
		return nil, errors.BadRequest("Invalid status: "+string(target), nil)
	}

	located, partition, err := uc.router.Locate(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := uc.authorizeDepartment(ctx, actor, located.Department); err != nil {
		return nil, err
	}

	var from entity.ComplaintStatus
	updated, err := partition.Repo.Update(ctx, located.ComplaintID, func(c *entity.Complaint) error {
		if !c.Status.CanTransitionTo(target) {
			return errors.InvalidTransition(string(c.Status), string(target))
		}
		from = c.Status
		now := uc.now()
		c.AppendStatus(target, note, actor.UserID, now)
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Default.StatusTransitions.WithLabelValues(string(from), string(target)).Inc()
	logger.Info("Complaint %s moved %s -> %s by %s", updated.ComplaintID, from, target, actor.UserID)

	uc.notify(ctx, statusNotification(updated, target, note))

	return updated, nil
}

// AssignComplaint hands a complaint to a staff member and moves it to
// assigned in the same write.
func (uc *ComplaintUseCase) AssignComplaint(ctx context.Context, complaintID, staffID, note string, actor entity.Identity) (*entity.Complaint, error) {
	staff, err := uc.userRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff.Role != entity.RoleDepartmentStaff && staff.Role != entity.RoleDepartmentHead {
		return nil, errors.BadRequest("Complaints can only be assigned to department staff", nil)
	}

	located, partition, err := uc.router.Locate(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := uc.authorizeDepartment(ctx, actor, located.Department); err != nil {
		return nil, err
	}
	if staff.Department != located.Department {
		return nil, errors.BadRequest("Staff member does not belong to the complaint's department", nil)
	}

	if note == "" {
		note = "Assigned to " + staff.Name
	}

	var from entity.ComplaintStatus
	updated, err := partition.Repo.Update(ctx, located.ComplaintID, func(c *entity.Complaint) error {
		if !c.Status.CanTransitionTo(entity.StatusAssigned) {
			return errors.InvalidTransition(string(c.Status), string(entity.StatusAssigned))
		}
		from = c.Status
		now := uc.now()
		c.AssignedTo = staff.ID
		c.AppendStatus(entity.StatusAssigned, note, actor.UserID, now)
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Default.StatusTransitions.WithLabelValues(string(from), string(entity.StatusAssigned)).Inc()

	uc.notify(ctx, statusNotification(updated, entity.StatusAssigned, note))
	uc.notify(ctx, &entity.Notification{
		UserID:      staff.ID,
		Type:        entity.NotificationAssignment,
		Title:       "New Complaint Assigned",
		Message:     fmt.Sprintf("Complaint %s \"%s\" has been assigned to you.", updated.ComplaintID, updated.Title),
		ComplaintID: updated.ComplaintID,
	})

	return updated, nil
}

// authorizeDepartment keeps department staff inside their own partition.
// Admins act on every department.
func (uc *ComplaintUseCase) authorizeDepartment(ctx context.Context, actor entity.Identity, dept entity.DepartmentID) error {
	switch actor.Role {
	case entity.RoleAdmin:
		return nil
	case entity.RoleDepartmentStaff, entity.RoleDepartmentHead:
		user, err := uc.userRepo.GetByID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if user.Department != dept {
			return errors.Forbidden("You can only manage complaints of your own department", nil)
		}
		return nil
	default:
		return errors.Forbidden("Staff access required", nil)
	}
}

func (uc *ComplaintUseCase) notify(ctx context.Context, n *entity.Notification) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Notify(ctx, n); err != nil {
		metrics.Default.NotificationFailures.Inc()
		logger.Error("Failed to notify user %s about complaint %s: %v", n.UserID, n.ComplaintID, err)
	}
}

func statusNotification(c *entity.Complaint, status entity.ComplaintStatus, note string) *entity.Notification {
	n := &entity.Notification{
		UserID:      c.UserID,
		Type:        entity.NotificationStatusUpdate,
		Title:       "Complaint " + status.Label(),
		ComplaintID: c.ComplaintID,
	}

	if status == entity.StatusRejected {
		reason := note
		if reason == "" {
			reason = "No reason provided"
		}
		n.Type = entity.NotificationComplaintRejected
		n.Message = fmt.Sprintf("Your complaint %s has been rejected. Reason: %s", c.ComplaintID, reason)
		return n
	}

	n.Message = fmt.Sprintf("Your complaint %s has been updated to \"%s\".", c.ComplaintID, status.Label())
	if note != "" {
		n.Message += " Note: " + note
	}
	return n
}

func (uc *ComplaintUseCase) GetOverviewStatistics(ctx context.Context) (*entity.DashboardSnapshot, error) {
	return uc.aggregator.ComputeOverview(ctx)
}

// GetDepartmentDashboard returns the dashboard of the actor's own department.
// Admins may ask for any department.
func (uc *ComplaintUseCase) GetDepartmentDashboard(ctx context.Context, actor entity.Identity, dept entity.DepartmentID) (*entity.DepartmentDashboard, error) {
	if actor.Role != entity.RoleAdmin {
		user, err := uc.userRepo.GetByID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if user.Department == "" {
			return nil, errors.Forbidden("No department assigned to this account", nil)
		}
		dept = user.Department
	}
	if dept == "" {
		return nil, errors.BadRequest("Department is required", nil)
	}
	return uc.aggregator.ComputeDepartmentDashboard(ctx, dept)
}

func (uc *ComplaintUseCase) CountPerDepartment(ctx context.Context, filter repository.ComplaintFilter) ([]service.DepartmentCount, error) {
	return uc.gather.CountPerDepartment(ctx, filter)
}

func (uc *ComplaintUseCase) Departments() []entity.Department {
	return uc.router.Registry().All()
}
