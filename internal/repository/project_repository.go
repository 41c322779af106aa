package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// FindByName returns the projects a creator owns under the given name.
func (r *ProjectRepository) FindByName(ctx context.Context, creatorID uuid.UUID, name string) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND name = ?", creatorID, name).
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Save(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// SetCover patches only the cover URL of a project.
func (r *ProjectRepository) SetCover(ctx context.Context, id uuid.UUID, url string) error {
	result := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", id).
		Update("project_cover", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Delete removes a project; memberships go with it through the foreign key cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Project{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// ListForUser returns the projects where the user holds any role above VIEWER,
// newest first. With withMembers set, each project carries its member profiles.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID uuid.UUID, withMembers bool, limit int) ([]model.Project, error) {
	var projects []model.Project

	query := r.db.WithContext(ctx).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ? AND project_members.role <> ?", userID, model.RoleViewer).
		Order("projects.created_at DESC")
	if withMembers {
		query = query.Preload("Members.Profile")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&projects).Error
	return projects, err
}

// CountForUser counts the projects ListForUser would return.
func (r *ProjectRepository) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ? AND project_members.role <> ?", userID, model.RoleViewer).
		Count(&count).Error
	return count, err
}
