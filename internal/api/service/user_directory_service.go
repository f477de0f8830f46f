package service

import (
	"context"
	"fmt"
	"time"

	"courier/internal/api/models"

	"github.com/rs/zerolog"
)

// UserDirectory is the ordered list of sender accounts
type UserDirectory interface {
	List(ctx context.Context) ([]models.UserDetails, error)
}

type UserDirectoryService struct {
	logger zerolog.Logger
	store  UserDirectory
}

func NewUserDirectoryService(store UserDirectory, logger zerolog.Logger) *UserDirectoryService {
	return &UserDirectoryService{logger: logger, store: store}
}

func (slf *UserDirectoryService) list() ([]models.UserDetails, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := slf.store.List(ctx)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error loading user directory")
		return nil, fmt.Errorf("failed to load user directory: %w", err)
	}
	return entries, nil
}

// Users returns the display names in directory order, duplicates included
func (slf *UserDirectoryService) Users() ([]string, error) {
	entries, err := slf.list()
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(entries))
	for _, entry := range entries {
		users = append(users, entry.User)
	}
	return users, nil
}

// MakeEmailDetails fills sender credentials and provider from the directory entry named user.
// When several entries share the name the last one wins.
func (slf *UserDirectoryService) MakeEmailDetails(user, receiverEmail string, cc, bcc []string, subject, message string, attachments []string, useHTML bool) (models.EmailDetails, models.ServerTarget, error) {
	entries, err := slf.list()
	if err != nil {
		return models.EmailDetails{}, models.ServerTarget{}, err
	}

	var found *models.UserDetails
	for i := range entries {
		if entries[i].User == user {
			found = &entries[i]
		}
	}
	if found == nil {
		return models.EmailDetails{}, models.ServerTarget{}, fmt.Errorf("%w: %q", ErrUnknownUser, user)
	}

	details := models.EmailDetails{
		SenderEmail:   found.Email,
		Password:      found.Password,
		SenderName:    found.SenderName,
		ReceiverEmail: receiverEmail,
		Subject:       subject,
		Message:       message,
		CC:            cc,
		BCC:           bcc,
		Attachments:   attachments,
		UseHTML:       useHTML,
	}
	return details, models.ServerTarget{Provider: found.EmailService}, nil
}
