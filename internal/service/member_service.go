package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/google/uuid"
)

// AddMember invites the profile registered under email with the given role.
// Only admins and owners may add members, and only an owner may grant OWNER.
func (s *ProjectService) AddMember(ctx context.Context, callerID, projectID uuid.UUID, email, role string) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}

	newRole, ok := model.ParseRole(role)
	if !ok {
		return failed(invalidField("role", "Role must be one of VIEWER, MEMBER, ADMIN, OWNER"))
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return failed(invalidField("email", "Email is required"))
	}

	callerRole, e := s.managerRole(ctx, projectID, callerID)
	if e != nil {
		return failed(e)
	}
	if newRole == model.RoleOwner && callerRole != model.RoleOwner {
		return failed(forbidden("Only an owner can add another owner"))
	}

	profile, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		return failed(storageFailure("Failed to look up user", err))
	}
	if profile == nil {
		return failed(notFound("No user found with that email", nil))
	}

	err = s.members.Add(ctx, &model.ProjectMember{ProjectID: projectID, UserID: profile.ID, Role: newRole})
	if errors.Is(err, repository.ErrAlreadyMember) {
		return failed(conflict("User is already a member of this project", err))
	}
	if err != nil {
		log.Printf("❌ Error adding member to %s: %v", projectID, err)
		return failed(storageFailure("Failed to add member", err))
	}

	s.invalidator.InvalidateDashboard(callerID, profile.ID)
	return succeeded(StatusCreated, "Member added successfully", projectData(projectID))
}

// ChangeRole sets a member's role. Owners cannot be demoted by admins, and
// a project always keeps at least one owner through the caller.
func (s *ProjectService) ChangeRole(ctx context.Context, callerID, projectID, userID uuid.UUID, role string) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}

	newRole, ok := model.ParseRole(role)
	if !ok {
		return failed(invalidField("role", "Role must be one of VIEWER, MEMBER, ADMIN, OWNER"))
	}

	callerRole, e := s.managerRole(ctx, projectID, callerID)
	if e != nil {
		return failed(e)
	}
	if userID == callerID {
		return failed(forbidden("You cannot change your own role"))
	}

	current, err := s.members.GetRole(ctx, projectID, userID)
	if err != nil {
		return failed(storageFailure(msgProjectAccessCheck, err))
	}
	if current == "" {
		return failed(notFound("Member not found", repository.ErrMemberNotFound))
	}
	if (current == model.RoleOwner || newRole == model.RoleOwner) && callerRole != model.RoleOwner {
		return failed(forbidden("Only an owner can grant or revoke ownership"))
	}

	if err := s.members.UpdateRole(ctx, projectID, userID, newRole); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return failed(notFound("Member not found", err))
		}
		return failed(storageFailure("Failed to update role", err))
	}

	s.invalidator.InvalidateDashboard(callerID, userID)
	return succeeded(StatusUpdated, "Member role updated successfully", projectData(projectID))
}

// RemoveMember removes another member. Owners can only be removed by owners.
func (s *ProjectService) RemoveMember(ctx context.Context, callerID, projectID, userID uuid.UUID) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}
	if userID == callerID {
		return s.Leave(ctx, callerID, projectID)
	}

	callerRole, e := s.managerRole(ctx, projectID, callerID)
	if e != nil {
		return failed(e)
	}
	current, err := s.members.GetRole(ctx, projectID, userID)
	if err != nil {
		return failed(storageFailure(msgProjectAccessCheck, err))
	}
	if current == "" {
		return failed(notFound("Member not found", repository.ErrMemberNotFound))
	}
	if current == model.RoleOwner && callerRole != model.RoleOwner {
		return failed(forbidden("Only an owner can remove an owner"))
	}

	return s.remove(ctx, callerID, projectID, userID, "Member removed successfully")
}

// Leave removes the caller from a project. An owner has to delete the
// project or hand over ownership instead.
func (s *ProjectService) Leave(ctx context.Context, callerID, projectID uuid.UUID) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}

	role, err := s.members.GetRole(ctx, projectID, callerID)
	if err != nil {
		return failed(storageFailure(msgProjectAccessCheck, err))
	}
	if role == "" {
		return failed(notFound("Project not found", repository.ErrProjectNotFound))
	}
	if role == model.RoleOwner {
		return failed(forbidden("An owner cannot leave the project"))
	}

	return s.remove(ctx, callerID, projectID, callerID, "You left the project")
}

func (s *ProjectService) remove(ctx context.Context, callerID, projectID, userID uuid.UUID, message string) ActionResponse {
	if err := s.members.Remove(ctx, projectID, userID); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return failed(notFound("Member not found", err))
		}
		return failed(storageFailure("Failed to remove member", err))
	}

	s.invalidator.InvalidateDashboard(callerID, userID)
	return succeeded(StatusDeleted, message, projectData(projectID))
}

func (s *ProjectService) managerRole(ctx context.Context, projectID, callerID uuid.UUID) (model.Role, *Error) {
	role, err := s.members.GetRole(ctx, projectID, callerID)
	if err != nil {
		return "", storageFailure(msgProjectAccessCheck, err)
	}
	if role == "" {
		return "", notFound("Project not found", repository.ErrProjectNotFound)
	}
	if !role.CanManageMembers() {
		return "", forbidden(msgNoProjectRole)
	}
	return role, nil
}
