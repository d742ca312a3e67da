package services

import (
	"fmt"
	"strings"

	"taskflow-project/taskflow-service/apperrors"
	"taskflow-project/taskflow-service/logging"
	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/store"
	"taskflow-project/taskflow-service/utils"
)

type MemberService struct {
	store *store.DataStore
}

func NewMemberService(ds *store.DataStore) *MemberService {
	return &MemberService{store: ds}
}

// Register creates a new member. Username and email are required, the email
// must look like an address, and the store enforces username and
// case-insensitive email uniqueness.
func (s *MemberService) Register(username, email, fullName, password string, role models.Role) (*models.Member, error) {
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", apperrors.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email address", apperrors.ErrValidation)
	}
	if role != "" && !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role '%s'", apperrors.ErrValidation, role)
	}

	member := models.NewMember(username, email, fullName, role)
	if password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		member.PasswordHash = hash
	}

	created, err := s.store.AddMember(member)
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: MEMBER_REGISTERED, Description: Member '%s' registered with role %s", username, created.Role)
	return created, nil
}

// Login verifies credentials and returns a signed JWT.
func (s *MemberService) Login(username, password string) (string, *models.Member, error) {
	member := s.store.GetMemberByUsername(username)
	if member == nil || !member.IsActive || !utils.CheckPassword(member.PasswordHash, password) {
		return "", nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrValidation)
	}
	token, err := utils.GenerateToken(member.ID, member.Username, string(member.Role))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, member, nil
}

func (s *MemberService) GetMember(memberID string) (*models.Member, error) {
	return s.store.GetMember(memberID)
}

func (s *MemberService) GetByUsername(username string) *models.Member {
	return s.store.GetMemberByUsername(username)
}

func (s *MemberService) ListMembers(activeOnly bool) []*models.Member {
	return s.store.ListMembers(activeOnly)
}

// UpdateProfile changes the mutable profile fields. Nil arguments leave the
// current value in place; metadata entries are merged, not replaced.
func (s *MemberService) UpdateProfile(memberID string, fullName, email *string, metadata map[string]any) (*models.Member, error) {
	member, err := s.store.GetMember(memberID)
	if err != nil {
		return nil, err
	}
	if fullName != nil {
		member.FullName = *fullName
	}
	if email != nil {
		if !strings.Contains(*email, "@") {
			return nil, fmt.Errorf("%w: invalid email address", apperrors.ErrValidation)
		}
		member.Email = *email
	}
	for k, v := range metadata {
		member.Metadata[k] = v
	}
	return s.store.UpdateMember(member)
}

func (s *MemberService) DeactivateMember(memberID string) (*models.Member, error) {
	member, err := s.store.GetMember(memberID)
	if err != nil {
		return nil, err
	}
	member.IsActive = false
	return s.store.UpdateMember(member)
}

// ChangeRole sets a member's role. Only admins may do this.
func (s *MemberService) ChangeRole(memberID string, newRole models.Role, actorID string) (*models.Member, error) {
	actor, err := s.store.GetMember(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can change member roles", apperrors.ErrManagerRequired)
	}
	if !newRole.IsValid() {
		return nil, fmt.Errorf("%w: unknown role '%s'", apperrors.ErrValidation, newRole)
	}
	member, err := s.store.GetMember(memberID)
	if err != nil {
		return nil, err
	}
	member.Role = newRole
	logging.Logger.Infof("Event ID: MEMBER_ROLE_CHANGED, Description: Member %s role changed to %s by %s", memberID, newRole, actorID)
	return s.store.UpdateMember(member)
}

// ResetPassword issues a fresh random password for the member and returns
// it in plaintext once. Only admins may do this.
func (s *MemberService) ResetPassword(memberID, actorID string) (string, error) {
	actor, err := s.store.GetMember(actorID)
	if err != nil {
		return "", err
	}
	if actor.Role != models.RoleAdmin {
		return "", fmt.Errorf("%w: only admins can reset passwords", apperrors.ErrManagerRequired)
	}
	member, err := s.store.GetMember(memberID)
	if err != nil {
		return "", err
	}
	newPassword := utils.GenerateRandomPassword()
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	member.PasswordHash = hash
	if _, err := s.store.UpdateMember(member); err != nil {
		return "", err
	}
	return newPassword, nil
}
