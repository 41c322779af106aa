package repository_test

import (
	"context"
	"testing"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMemberRepository_GetRole(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewMemberRepository(gormDB)

	projectID, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "project_members" WHERE project_id = .* AND user_id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"project_id", "user_id", "role"}).
			AddRow(projectID.String(), userID.String(), "VIEWER"))

	role, err := repo.GetRole(context.Background(), projectID, userID)

	assert.NoError(t, err)
	assert.Equal(t, model.RoleViewer, role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_GetRole_NoMembership(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewMemberRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "project_members"`).
		WillReturnError(gorm.ErrRecordNotFound)

	role, err := repo.GetRole(context.Background(), uuid.New(), uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, model.Role(""), role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_Add_Duplicate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewMemberRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "project_members"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})
	mock.ExpectRollback()

	err := repo.Add(context.Background(), &model.ProjectMember{
		ProjectID: uuid.New(),
		UserID:    uuid.New(),
		Role:      model.RoleMember,
	})

	assert.ErrorIs(t, err, repository.ErrAlreadyMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_Remove_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewMemberRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "project_members"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Remove(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrMemberNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
