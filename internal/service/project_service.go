package service

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/saga"
	"taskboard/internal/validation"

	"github.com/google/uuid"
)

const (
	msgProjectCreated = "Project created successfully"
	msgNoProjectRole  = "You do not have permission to manage this project"
)

// CoverUpload is an uploaded cover file. A nil CoverUpload or one with zero
// size means no file was sent.
type CoverUpload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

func (u *CoverUpload) present() bool {
	return u != nil && u.Size > 0 && u.Open != nil
}

type ProjectService struct {
	projects    ProjectStore
	members     MemberStore
	profiles    repository.ProfileRepositoryInterface
	covers      CoverStore
	validator   *validation.Validator
	invalidator Invalidator
}

func NewProjectService(
	projects ProjectStore,
	members MemberStore,
	profiles repository.ProfileRepositoryInterface,
	covers CoverStore,
	v *validation.Validator,
	inv Invalidator,
) *ProjectService {
	return &ProjectService{
		projects:    projects,
		members:     members,
		profiles:    profiles,
		covers:      covers,
		validator:   v,
		invalidator: inv,
	}
}

// Create runs the project creation workflow. The creator always becomes the
// OWNER; if that membership cannot be written the project is removed again.
// A cover file is stored afterwards and its failure only costs the cover.
func (s *ProjectService) Create(ctx context.Context, callerID uuid.UUID, fields validation.ProjectFields, cover *CoverUpload) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}

	in, failure := s.validator.Project(fields)
	if failure != nil {
		return failed(invalid(failure))
	}

	project := &model.Project{
		Name:         in.Name,
		Description:  in.Description,
		ProjectCover: in.CoverURL,
		CreatorID:    callerID,
	}

	res := saga.New(
		saga.Step{
			Name:   "insert project",
			Policy: saga.Required,
			Action: func(ctx context.Context) error {
				return s.projects.Create(ctx, project)
			},
			Compensate: func(ctx context.Context) error {
				return s.projects.Delete(ctx, project.ID)
			},
		},
		saga.Step{
			Name:   "insert owner",
			Policy: saga.Required,
			Action: func(ctx context.Context) error {
				return s.members.Add(ctx, &model.ProjectMember{
					ProjectID: project.ID,
					UserID:    callerID,
					Role:      model.RoleOwner,
				})
			},
		},
		saga.Step{
			Name:   "upload cover",
			Policy: saga.BestEffort,
			// a URL takes precedence over a file
			Skip: func() bool { return in.CoverURL != nil || !cover.present() },
			Action: func(ctx context.Context) error {
				return s.storeCover(ctx, project.ID, cover)
			},
		},
	).Run(ctx)

	if res.Failed() {
		log.Printf("❌ Project creation failed: %v", res.Err)
		if res.CompensationErr != nil {
			log.Printf("❌ Rollback of project %s failed: %v", project.ID, res.CompensationErr)
		}
		return failed(storageFailure("", unwrapStep(res.Err)))
	}
	for _, p := range res.Partial {
		log.Printf("⚠️  Project %s created but cover upload failed: %v", project.ID, p)
	}

	s.invalidator.InvalidateDashboard(callerID)
	return succeeded(StatusCreated, msgProjectCreated, projectData(project.ID))
}

func (s *ProjectService) storeCover(ctx context.Context, projectID uuid.UUID, cover *CoverUpload) error {
	f, err := cover.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	url, err := s.covers.SaveProjectCover(ctx, projectID, f)
	if err != nil {
		return err
	}
	return s.projects.SetCover(ctx, projectID, url)
}

// SetCover replaces a project's cover with a URL or an uploaded file.
func (s *ProjectService) SetCover(ctx context.Context, callerID, projectID uuid.UUID, coverURL string, cover *CoverUpload) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}
	if e := s.requireRole(ctx, projectID, callerID, model.RoleAdmin); e != nil {
		return failed(e)
	}

	if coverURL = strings.TrimSpace(coverURL); coverURL != "" {
		project, e := s.load(ctx, projectID)
		if e != nil {
			return failed(e)
		}
		in, failure := s.validator.Project(validation.ProjectFields{Name: project.Name, CoverURL: coverURL})
		if failure != nil {
			return failed(invalid(failure))
		}
		if err := s.projects.SetCover(ctx, projectID, *in.CoverURL); err != nil {
			return failed(storageFailure("", err))
		}
		s.invalidator.InvalidateDashboard(callerID)
		return succeeded(StatusUpdated, "Project cover updated successfully", projectData(projectID))
	}

	if !cover.present() {
		return failed(invalidField("cover_file", "No file provided"))
	}
	if err := s.storeCover(ctx, projectID, cover); err != nil {
		log.Printf("❌ Error uploading project cover: %v", err)
		return failed(storageFailure("", err))
	}

	s.invalidator.InvalidateDashboard(callerID)
	return succeeded(StatusUpdated, "Project cover uploaded successfully", projectData(projectID))
}

// Update changes name, description and cover URL. Admins and owners only.
func (s *ProjectService) Update(ctx context.Context, callerID, projectID uuid.UUID, fields validation.ProjectFields) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}
	if e := s.requireRole(ctx, projectID, callerID, model.RoleAdmin); e != nil {
		return failed(e)
	}

	project, e := s.load(ctx, projectID)
	if e != nil {
		return failed(e)
	}

	in, failure := s.validator.Project(fields)
	if failure != nil {
		return failed(invalid(failure))
	}

	project.Name = in.Name
	project.Description = in.Description
	if in.CoverURL != nil {
		project.ProjectCover = in.CoverURL
	}
	if err := s.projects.Update(ctx, project); err != nil {
		log.Printf("❌ Error updating project %s: %v", projectID, err)
		return failed(storageFailure("Failed to update project", err))
	}

	s.invalidator.InvalidateDashboard(callerID)
	return succeeded(StatusUpdated, "Project updated successfully", projectData(projectID))
}

// Delete removes a project and its stored objects. Owners only.
func (s *ProjectService) Delete(ctx context.Context, callerID, projectID uuid.UUID) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}
	if e := s.requireRole(ctx, projectID, callerID, model.RoleOwner); e != nil {
		return failed(e)
	}

	members, err := s.members.ListProfiles(ctx, projectID)
	if err != nil {
		log.Printf("⚠️  Could not list members of %s before delete: %v", projectID, err)
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return failed(notFound("Project not found", err))
		}
		return failed(storageFailure("Failed to delete project", err))
	}
	if err := s.covers.RemoveProject(ctx, projectID); err != nil {
		log.Printf("⚠️  Failed to remove stored files of project %s: %v", projectID, err)
	}

	affected := []uuid.UUID{callerID}
	for _, m := range members {
		affected = append(affected, m.ID)
	}
	s.invalidator.InvalidateDashboard(affected...)
	return succeeded(StatusDeleted, "Project deleted successfully", projectData(projectID))
}

func (s *ProjectService) load(ctx context.Context, projectID uuid.UUID) (*model.Project, *Error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if errors.Is(err, repository.ErrProjectNotFound) {
		return nil, notFound("Project not found", err)
	}
	if err != nil {
		return nil, storageFailure("Failed to retrieve project", err)
	}
	return project, nil
}

// requireRole checks that userID holds at least min on the project.
func (s *ProjectService) requireRole(ctx context.Context, projectID, userID uuid.UUID, min model.Role) *Error {
	role, err := s.members.GetRole(ctx, projectID, userID)
	if err != nil {
		return storageFailure(msgProjectAccessCheck, err)
	}
	if role == "" {
		return notFound("Project not found", repository.ErrProjectNotFound)
	}
	if !role.AtLeast(min) {
		return forbidden(msgNoProjectRole)
	}
	return nil
}
