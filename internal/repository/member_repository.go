package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// MemberProfile is a profile joined through its membership row.
type MemberProfile struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Username  *string    `json:"username"`
	AvatarURL *string    `json:"avatar_url"`
	Role      model.Role `json:"role"`
	JoinedAt  time.Time  `json:"joined_at"`
}

// Add inserts a membership row. A duplicate (project, user) pair yields ErrAlreadyMember.
func (r *MemberRepository) Add(ctx context.Context, member *model.ProjectMember) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error
	if isUniqueViolation(err) {
		return ErrAlreadyMember
	}
	return err
}

// GetRole returns the user's role in the project, or "" when there is no membership.
func (r *MemberRepository) GetRole(ctx context.Context, projectID, userID uuid.UUID) (model.Role, error) {
	var member model.ProjectMember

	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

func (r *MemberRepository) UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role model.Role) error {
	result := r.db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *MemberRepository) Remove(ctx context.Context, projectID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.ProjectMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// ListProfiles returns the profiles of every member of the project.
func (r *MemberRepository) ListProfiles(ctx context.Context, projectID uuid.UUID) ([]MemberProfile, error) {
	var members []MemberProfile

	err := r.db.WithContext(ctx).
		Table("profiles").
		Select("profiles.id, profiles.email, profiles.username, profiles.avatar_url, project_members.role, project_members.joined_at").
		Joins("JOIN project_members ON project_members.user_id = profiles.id").
		Where("project_members.project_id = ?", projectID).
		Order("project_members.joined_at").
		Scan(&members).Error

	return members, err
}
