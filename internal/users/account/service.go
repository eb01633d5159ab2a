// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taibuivan/binderdex/internal/platform/apperr"
	"github.com/taibuivan/binderdex/internal/platform/ctxutil"
	"github.com/taibuivan/binderdex/internal/platform/dberr"
	"github.com/taibuivan/binderdex/internal/platform/validate"
	"github.com/taibuivan/binderdex/internal/users/auth"
)

// Service implements the profile and session self-service use cases.
type Service struct {
	accounts AccountRepository
	sessions SessionRepository
}

// NewService constructs an account [Service].
func NewService(accounts AccountRepository, sessions SessionRepository) *Service {
	return &Service{accounts: accounts, sessions: sessions}
}

// # Profile

/*
GetProfile returns the caller's own account.

Returns:
  - *auth.User: The account
  - error: NotFound("Account") when the token outlived the account
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.accounts.FindByID(context, userID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("account_service_get_failed: %w", err)
	}
	return user, nil
}

// UpdateProfileInput carries the editable profile fields.
type UpdateProfileInput struct {
	Name *string `json:"name"`
}

/*
UpdateProfile sets or clears the display name.

Description: A blank name clears it, matching registration where the name is optional.
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	var name *string
	if input.Name != nil {
		if trimmed := strings.TrimSpace(*input.Name); trimmed != "" {
			name = &trimmed
		}
	}

	if name != nil {
		validator := &validate.Validator{}
		if err := validator.MaxLen(auth.FieldName, *name, auth.MaxNameLength).Err(); err != nil {
			return nil, err
		}
	}

	if err := service.accounts.UpdateName(context, userID, name); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("account_profile_updated", "user_id", userID)
	return service.GetProfile(context, userID)
}

// # Sessions

// ListSessions returns the caller's active sessions.
func (service *Service) ListSessions(context context.Context, userID string) ([]SessionInfo, error) {
	sessions, err := service.sessions.FindActiveByUserID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_sessions_failed: %w", err)
	}
	return sessions, nil
}

// RevokeSession signs out one of the caller's sessions. Sessions owned by
// someone else are reported as missing.
func (service *Service) RevokeSession(context context.Context, userID, sessionID string) error {
	if err := service.sessions.Revoke(context, userID, sessionID); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFound("Session")
		}
		return fmt.Errorf("account_service_revoke_failed: %w", err)
	}
	return nil
}
