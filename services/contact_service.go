package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
)

type ContactForm struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=2000"`
}

// ContactService stores messages from the public contact form.
type ContactService struct {
	db     database.Database
	now    func() time.Time
	logger zerolog.Logger
}

func NewContactService(db database.Database, opts ...Option) *ContactService {
	o := newServiceOptions("contact", opts)
	return &ContactService{db: db, now: o.now, logger: o.logger}
}

func (s *ContactService) Submit(ctx context.Context, form ContactForm) (*models.ContactMessage, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = normalizeEmail(form.Email)
	form.Message = strings.TrimSpace(form.Message)
	if err := validateForm(form); err != nil {
		return nil, err
	}

	message := &models.ContactMessage{
		Name:      form.Name,
		Email:     form.Email,
		Message:   form.Message,
		CreatedAt: s.now(),
	}
	if err := s.db.ContactMessageRepo().Add(ctx, message); err != nil {
		return nil, errs.NewDatabaseError("create", "contact message", err)
	}

	s.logger.Info().Str("messageId", message.ID.String()).Msg("contact message received")
	return message, nil
}

func (s *ContactService) List(ctx context.Context) ([]*models.ContactMessage, error) {
	messages, err := s.db.ContactMessageRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "contact messages", err)
	}
	return messages, nil
}

func (s *ContactService) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.db.ContactMessageRepo().MarkRead(ctx, id); err != nil {
		return errs.NewDatabaseError("update", "contact message", err)
	}
	return nil
}
