package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
)

type AccountService struct {
	repo   ports.ProfileStore
	logger zerolog.Logger
}

func NewAccountService(repo ports.ProfileStore, logger zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, logger: logger}
}

// UpdateAccount changes full name and/or email. At least one is required.
func (s *AccountService) UpdateAccount(ctx context.Context, userID string, in ports.AccountUpdate) (*domain.User, error) {
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			in.FullName = nil
		} else {
			in.FullName = &name
		}
	}
	if in.Email != nil {
		email := domain.NormalizeIdentifier(*in.Email)
		if email == "" {
			in.Email = nil
		} else {
			in.Email = &email
		}
	}
	if in.FullName == nil && in.Email == nil {
		return nil, domain.Validation("At least one field is required")
	}

	user, err := s.repo.UpdateAccount(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Msg("account updated")
	return user, nil
}

func (s *AccountService) GetChannel(ctx context.Context, username string) (*domain.Channel, error) {
	username = domain.NormalizeIdentifier(username)
	if username == "" {
		return nil, domain.Validation("Username is required")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrChannelNotFound
		}
		return nil, err
	}
	return domain.ChannelOf(user), nil
}

func (s *AccountService) UpdateChannel(ctx context.Context, userID string, in ports.ChannelUpdate) (*domain.User, error) {
	if in.Tags != nil {
		tags := cleanTags(*in.Tags)
		in.Tags = &tags
	}

	// Nothing to change: return the current record unchanged.
	if in.Description == nil && in.Tags == nil && in.SocialLinks == nil {
		return s.repo.FindPublicByID(ctx, userID)
	}

	user, err := s.repo.UpdateChannel(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Msg("channel updated")
	return user, nil
}

func (s *AccountService) UpdateNotificationSettings(ctx context.Context, userID string, in ports.NotificationUpdate) (*domain.NotificationSettings, error) {
	if in.Empty() {
		return nil, domain.Validation("No settings provided to update")
	}
	return s.repo.UpdateNotificationSettings(ctx, userID, in)
}
