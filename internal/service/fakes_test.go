package service_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/google/uuid"
)

var errDB = errors.New("connection refused")

type fakeTasks struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*model.Task
	assignees map[uuid.UUID][]uuid.UUID

	createErr error
	assignErr error
	listErr   error
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{rows: map[uuid.UUID]*model.Task{}, assignees: map[uuid.UUID][]uuid.UUID{}}
}

func (f *fakeTasks) Create(ctx context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	task.ID = uuid.New()
	cp := *task
	f.rows[task.ID] = &cp
	return nil
}

func (f *fakeTasks) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	cp := *t
	for _, uid := range f.assignees[id] {
		cp.Assignees = append(cp.Assignees, model.Profile{ID: uid})
	}
	return &cp, nil
}

func (f *fakeTasks) ListForUser(ctx context.Context, userID uuid.UUID, withAssignees bool, limit int) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Task
	for _, t := range f.rows {
		if t.CreatorID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTasks) Update(ctx context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[task.ID]; !ok {
		return repository.ErrTaskNotFound
	}
	cp := *task
	f.rows[task.ID] = &cp
	return nil
}

func (f *fakeTasks) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(f.rows, id)
	delete(f.assignees, id)
	return nil
}

func (f *fakeTasks) AddAssignees(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return f.assignErr
	}
	for _, existing := range f.assignees[taskID] {
		for _, id := range userIDs {
			if existing == id {
				return repository.ErrAlreadyAssigned
			}
		}
	}
	f.assignees[taskID] = append(f.assignees[taskID], userIDs...)
	return nil
}

func (f *fakeTasks) RemoveAssignee(ctx context.Context, taskID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.assignees[taskID]
	for i, id := range ids {
		if id == userID {
			f.assignees[taskID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return repository.ErrTaskNotFound
}

type fakeProjects struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.Project

	createErr error
	deleteErr error
	coverErr  error
	countErr  error
	count     int64
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{rows: map[uuid.UUID]*model.Project{}}
}

func (f *fakeProjects) Create(ctx context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = uuid.New()
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProjects) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

// FindByName mirrors the repository query used to look for orphans.
func (f *fakeProjects) FindByName(ctx context.Context, creatorID uuid.UUID, name string) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Project
	for _, p := range f.rows {
		if p.CreatorID == creatorID && p.Name == name {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjects) Update(ctx context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.ID]; !ok {
		return repository.ErrProjectNotFound
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProjects) SetCover(ctx context.Context, id uuid.UUID, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.coverErr != nil {
		return f.coverErr
	}
	p, ok := f.rows[id]
	if !ok {
		return repository.ErrProjectNotFound
	}
	p.ProjectCover = &url
	return nil
}

func (f *fakeProjects) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return repository.ErrProjectNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeProjects) ListForUser(ctx context.Context, userID uuid.UUID, withMembers bool, limit int) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Project
	for _, p := range f.rows {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProjects) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f.count, f.countErr
}

type memberKey struct{ project, user uuid.UUID }

type fakeMembers struct {
	mu    sync.Mutex
	roles map[memberKey]model.Role

	addErr  error
	roleErr error
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{roles: map[memberKey]model.Role{}}
}

func (f *fakeMembers) set(projectID, userID uuid.UUID, role model.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[memberKey{projectID, userID}] = role
}

func (f *fakeMembers) Add(ctx context.Context, m *model.ProjectMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	k := memberKey{m.ProjectID, m.UserID}
	if _, ok := f.roles[k]; ok {
		return repository.ErrAlreadyMember
	}
	f.roles[k] = m.Role
	return nil
}

func (f *fakeMembers) GetRole(ctx context.Context, projectID, userID uuid.UUID) (model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roleErr != nil {
		return "", f.roleErr
	}
	return f.roles[memberKey{projectID, userID}], nil
}

func (f *fakeMembers) UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := memberKey{projectID, userID}
	if _, ok := f.roles[k]; !ok {
		return repository.ErrMemberNotFound
	}
	f.roles[k] = role
	return nil
}

func (f *fakeMembers) Remove(ctx context.Context, projectID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := memberKey{projectID, userID}
	if _, ok := f.roles[k]; !ok {
		return repository.ErrMemberNotFound
	}
	delete(f.roles, k)
	return nil
}

func (f *fakeMembers) ListProfiles(ctx context.Context, projectID uuid.UUID) ([]repository.MemberProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.MemberProfile
	for k, role := range f.roles {
		if k.project == projectID {
			out = append(out, repository.MemberProfile{ID: k.user, Role: role})
		}
	}
	return out, nil
}

type fakeProfiles struct {
	byEmail map[string]*model.Profile
}

func (f *fakeProfiles) Create(ctx context.Context, p *model.Profile) error { return nil }

func (f *fakeProfiles) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return f.byEmail[email], nil
}

func (f *fakeProfiles) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	for _, p := range f.byEmail {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

type fakeCovers struct {
	err     error
	saved   map[uuid.UUID][]byte
	removed []uuid.UUID
}

func (f *fakeCovers) SaveProjectCover(ctx context.Context, projectID uuid.UUID, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.saved == nil {
		f.saved = map[uuid.UUID][]byte{}
	}
	f.saved[projectID] = data
	return "http://files.test/" + projectID.String() + "/projectcover.png", nil
}

func (f *fakeCovers) RemoveProject(ctx context.Context, projectID uuid.UUID) error {
	f.removed = append(f.removed, projectID)
	return nil
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls [][]uuid.UUID
}

func (f *fakeInvalidator) InvalidateDashboard(userIDs ...uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userIDs)
}

func (f *fakeInvalidator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
