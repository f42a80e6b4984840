package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
)

type NotificationService struct {
	db     database.Database
	logger zerolog.Logger
}

func NewNotificationService(db database.Database, opts ...Option) *NotificationService {
	o := newServiceOptions("notifications", opts)
	return &NotificationService{db: db, logger: o.logger}
}

// List returns the user's notifications newest first and marks the listed
// ones read. The returned rows keep the read flag they had before this call.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		var err error
		notifications, err = tx.NotificationRepo().FindByUser(ctx, userID)
		if err != nil {
			return errs.NewDatabaseError("list", "notifications", err)
		}
		unread := make([]uuid.UUID, 0, len(notifications))
		for _, n := range notifications {
			if !n.Read {
				unread = append(unread, n.ID)
			}
		}
		if _, err := tx.NotificationRepo().MarkRead(ctx, userID, unread); err != nil {
			return errs.NewDatabaseError("update", "notifications", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadCount counts unread notifications across all recipients.
func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	count, err := s.db.NotificationRepo().CountUnread(ctx)
	if err != nil {
		return 0, errs.NewDatabaseError("count", "notifications", err)
	}
	return count, nil
}
