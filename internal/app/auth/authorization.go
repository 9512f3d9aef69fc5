package auth

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/logger"
)

// AccessLevel summarises how much of the console a user may open
type AccessLevel string

const (
	AccessFull       AccessLevel = "FULL"
	AccessLimited    AccessLevel = "LIMITED"
	AccessRestricted AccessLevel = "RESTRICTED"
)

// ErrMalformedPermissions is reported when stored tab permissions cannot be decoded
const ErrMalformedPermissions = "error parsing permissions"

// Permissions is the decoded console access of one user
type Permissions struct {
	UserID int64           `json:"userId"`
	Role   models.RoleType `json:"role"`
	Level  AccessLevel     `json:"level"`
	Tabs   []models.Tab    `json:"tabs"`
	// Error is set when the stored permission list was unreadable
	Error string `json:"error,omitempty"`
}

// CanAccess reports whether the tab is open to this user
func (p Permissions) CanAccess(tab models.Tab) bool {
	if p.Level == AccessFull {
		return true
	}
	if p.Level == AccessRestricted {
		return false
	}
	for _, t := range p.Tabs {
		if t == tab {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user may enter the console at all
func (p Permissions) IsAdmin() bool {
	return p.Level != AccessRestricted
}

// ParsePermissions decodes the access of user. Anything that cannot be read
// yields RESTRICTED, never FULL.
func ParsePermissions(user *models.User) Permissions {
	if user == nil {
		return Permissions{Level: AccessRestricted, Tabs: []models.Tab{}}
	}

	p := Permissions{UserID: user.ID, Role: user.Role, Tabs: []models.Tab{}}

	if user.Role == models.RoleAdmin {
		p.Level = AccessFull
		p.Tabs = append(p.Tabs, models.AllTabs...)
		return p
	}

	if !user.IsTemporaryAdmin || user.TempAdminTabs == nil {
		p.Level = AccessRestricted
		return p
	}

	var raw []string
	if err := json.Unmarshal([]byte(*user.TempAdminTabs), &raw); err != nil {
		p.Level = AccessRestricted
		p.Error = ErrMalformedPermissions
		return p
	}

	granted := make(map[models.Tab]bool, len(raw))
	for _, s := range raw {
		if models.IsValidTab(s) {
			granted[models.Tab(s)] = true
		}
	}
	// keep console order regardless of stored order
	for _, t := range models.AllTabs {
		if granted[t] {
			p.Tabs = append(p.Tabs, t)
		}
	}

	if len(p.Tabs) == 0 {
		p.Level = AccessRestricted
		return p
	}
	p.Level = AccessLimited
	return p
}

// EncodeTabs serialises a tab grant in console order without duplicates
func EncodeTabs(tabs []models.Tab) (string, error) {
	granted := make(map[models.Tab]bool, len(tabs))
	for _, t := range tabs {
		if !models.IsValidTab(string(t)) {
			return "", apperrors.NewBadRequestError("unknown tab: " + string(t))
		}
		granted[t] = true
	}

	ordered := make([]models.Tab, 0, len(granted))
	for _, t := range models.AllTabs {
		if granted[t] {
			ordered = append(ordered, t)
		}
	}

	data, err := json.Marshal(ordered)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UserReader is the slice of the user repository authorization needs
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthorizationService resolves console permissions. They are read per
// request so a revoked grant takes effect immediately.
type AuthorizationService struct {
	users UserReader
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(users UserReader) *AuthorizationService {
	return &AuthorizationService{users: users}
}

// Permissions loads the user and decodes their access
func (s *AuthorizationService) Permissions(ctx context.Context, userID int64) (Permissions, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return Permissions{}, apperrors.ErrTokenInvalid
		}
		logger.Ctx(ctx).Error().Err(err).Int64("userID", userID).Msg("Error loading user for permission check")
		return Permissions{}, err
	}

	p := ParsePermissions(user)
	if p.Error != "" {
		logger.Ctx(ctx).Warn().Int64("userID", userID).Msg("Stored tab permissions are malformed, treating user as restricted")
	}
	return p, nil
}

// RequireAdmin fails unless the user is an admin or a temporary admin with at least one tab
func (s *AuthorizationService) RequireAdmin(ctx context.Context, userID int64) (Permissions, error) {
	p, err := s.Permissions(ctx, userID)
	if err != nil {
		return p, err
	}
	if !p.IsAdmin() {
		return p, apperrors.ErrPermissionDenied
	}
	return p, nil
}

// RequireTab fails unless the user may open tab
func (s *AuthorizationService) RequireTab(ctx context.Context, userID int64, tab models.Tab) (Permissions, error) {
	p, err := s.Permissions(ctx, userID)
	if err != nil {
		return p, err
	}
	if !p.CanAccess(tab) {
		return p, apperrors.ErrTabRestricted
	}
	return p, nil
}

// RequireFullAdmin fails for temporary admins; used for grants so they cannot widen their own access
func (s *AuthorizationService) RequireFullAdmin(ctx context.Context, userID int64) (Permissions, error) {
	p, err := s.Permissions(ctx, userID)
	if err != nil {
		return p, err
	}
	if p.Level != AccessFull {
		return p, apperrors.ErrPermissionDenied
	}
	return p, nil
}
