package borrowing

import (
	"context"
	"fmt"
	"time"

	"github.com/labgiga/lending-service/internal/errs"
	"github.com/labgiga/lending-service/internal/model"
	"github.com/labgiga/lending-service/internal/repository"
	"github.com/labgiga/lending-service/pkg/auth"
	"github.com/labgiga/lending-service/pkg/kafka"
	"go.uber.org/zap"
)

type Service struct {
	log      *zap.Logger
	repo     repository.BorrowingRepository
	items    repository.ItemRepository
	notifier repository.NotificationRepository
	queue    kafka.Enqueuer
}

func NewService(repo repository.BorrowingRepository, items repository.ItemRepository, notifier repository.NotificationRepository, queue kafka.Enqueuer, log *zap.Logger) *Service {
	return &Service{
		log:      log,
		repo:     repo,
		items:    items,
		notifier: notifier,
		queue:    queue,
	}
}

func (s *Service) Create(ctx context.Context, actor auth.Identity, req model.CreateBorrowingRequest) (model.Borrowing, error) {
	if !req.ReturnDate.After(req.BorrowDate.Time) {
		return model.Borrowing{}, errs.ErrInvalidRange
	}

	// advisory availability check; stock is re-validated at BORROWED
	ids := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		ids = append(ids, line.ItemID)
	}
	items, err := s.items.GetItemsByIDs(ctx, ids)
	if err != nil {
		return model.Borrowing{}, err
	}
	byID := make(map[string]model.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	for _, line := range req.Items {
		item, ok := byID[line.ItemID]
		if !ok {
			return model.Borrowing{}, errs.ErrNotFound
		}
		if !item.Available() || item.Stock < line.Quantity {
			return model.Borrowing{}, errs.ErrInsufficientStock
		}
	}

	return s.repo.CreateBorrowing(ctx, actor.UserID, req)
}

func (s *Service) My(ctx context.Context, actor auth.Identity) ([]model.Borrowing, error) {
	return s.repo.ListBorrowings(ctx, actor.UserID, "")
}

func (s *Service) List(ctx context.Context, status model.Status) ([]model.Borrowing, error) {
	return s.repo.ListBorrowings(ctx, "", status)
}

// Get returns the borrowing to its owner or to an admin.
func (s *Service) Get(ctx context.Context, actor auth.Identity, id string) (model.Borrowing, error) {
	b, err := s.repo.GetBorrowing(ctx, id)
	if err != nil {
		return model.Borrowing{}, err
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return model.Borrowing{}, errs.ErrForbidden
	}
	return b, nil
}

// Transition validates the move against the status table and applies it
// atomically together with its stock side effects.
func (s *Service) Transition(ctx context.Context, actor auth.Identity, id string, req model.UpdateStatusRequest) (model.Borrowing, error) {
	if !actor.IsAdmin() {
		return model.Borrowing{}, errs.ErrForbidden
	}
	b, err := s.repo.GetBorrowing(ctx, id)
	if err != nil {
		return model.Borrowing{}, err
	}
	if !b.Status.CanTransition(req.Status) {
		return model.Borrowing{}, errs.ErrInvalidTransition
	}

	upd := repository.TransitionUpdate{Target: req.Status}
	if req.Status == model.StatusRejected {
		if req.RejectionReason != "" {
			upd.RejectionReason = &req.RejectionReason
		}
	} else if req.AdminNotes != "" {
		upd.AdminNotes = &req.AdminNotes
	}

	updated, err := s.repo.ApplyTransition(ctx, b, upd)
	if err != nil {
		return model.Borrowing{}, err
	}
	s.notify(updated.UserID, updated.ID, updated.Status,
		fmt.Sprintf("your borrowing is now %s", updated.Status))
	return updated, nil
}

func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) Notifications(ctx context.Context, actor auth.Identity) ([]model.Notification, error) {
	return s.notifier.ListNotifications(ctx, actor.UserID)
}

// RequestExtension creates a PENDING extension for the borrowing owner.
func (s *Service) RequestExtension(ctx context.Context, actor auth.Identity, borrowingID string, req model.ExtendRequest) (model.Extension, error) {
	b, err := s.repo.GetBorrowing(ctx, borrowingID)
	if err != nil {
		return model.Extension{}, err
	}
	if b.UserID != actor.UserID {
		return model.Extension{}, errs.ErrForbidden
	}
	if b.Status != model.StatusApproved && b.Status != model.StatusBorrowed {
		return model.Extension{}, errs.ErrInvalidState
	}
	if !req.NewReturnDate.After(b.ReturnDate) {
		return model.Extension{}, errs.ErrInvalidRange
	}
	if req.NewReturnDate.After(b.ReturnDate.AddDate(0, 0, model.MaxExtensionDays)) {
		return model.Extension{}, errs.ErrInvalidRange
	}
	return s.repo.CreateExtension(ctx, borrowingID, req)
}

func (s *Service) ListExtensions(ctx context.Context, status model.Status) ([]model.Extension, error) {
	return s.repo.ListExtensions(ctx, status)
}

// ResolveExtension approves or rejects a pending extension; approval
// rewrites the parent return date atomically with the status write.
func (s *Service) ResolveExtension(ctx context.Context, actor auth.Identity, id string, req model.ResolveExtensionRequest) (model.Extension, error) {
	if !actor.IsAdmin() {
		return model.Extension{}, errs.ErrForbidden
	}
	ext, err := s.repo.GetExtension(ctx, id)
	if err != nil {
		return model.Extension{}, err
	}
	if ext.Status != model.StatusPending {
		return model.Extension{}, errs.ErrInvalidState
	}
	var notes *string
	if req.AdminNotes != "" {
		notes = &req.AdminNotes
	}
	resolved, err := s.repo.ResolveExtension(ctx, ext, req.Status, notes)
	if err != nil {
		return model.Extension{}, err
	}

	b, err := s.repo.GetBorrowing(ctx, resolved.BorrowingID)
	if err == nil {
		s.notify(b.UserID, b.ID, resolved.Status,
			fmt.Sprintf("your extension request was %s", resolved.Status))
	}
	return resolved, nil
}

// RunOverdueSweep periodically flags lapsed BORROWED borrowings until ctx
// is cancelled.
func (s *Service) RunOverdueSweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			flipped, err := s.repo.SweepOverdue(ctx)
			if err != nil {
				s.log.Error("overdue sweep", zap.Error(err))
				continue
			}
			for _, b := range flipped {
				s.log.Info("borrowing flagged overdue", zap.String("id", b.ID))
				s.notify(b.UserID, b.ID, model.StatusOverdue, "your borrowing is overdue")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// notify publishes the transition event; a broker failure is logged and
// never unwinds the committed transition.
func (s *Service) notify(userID, borrowingID string, status model.Status, message string) {
	if s.queue == nil {
		return
	}
	event := model.BorrowingEvent{
		UserID:      userID,
		BorrowingID: borrowingID,
		Status:      status,
		Message:     message,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.queue.Enqueue(kafka.BorrowingEventsTopic, event); err != nil {
		s.log.Error("enqueue notification", zap.Error(err), zap.String("borrowingId", borrowingID))
	}
}
