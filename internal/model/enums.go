package model

import "strings"

// Role is a member's role within a project.
type Role string

const (
	RoleViewer Role = "VIEWER" // read only
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
)

var roleRank = map[Role]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// Roles lists every role from least to most privileged.
var Roles = []Role{RoleViewer, RoleMember, RoleAdmin, RoleOwner}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && roleRank[r] >= roleRank[min]
}

// CanWriteTasks reports whether the role may create and assign tasks.
func (r Role) CanWriteTasks() bool {
	return r.AtLeast(RoleMember)
}

// CanManageMembers reports whether the role may invite, re-role or remove members.
func (r Role) CanManageMembers() bool {
	return r.AtLeast(RoleAdmin)
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// DefaultPriority is used when a submission leaves priority empty.
const DefaultPriority = PriorityLow

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Status is the workflow state of a task.
//
// Earlier schemas used BACKLOG/IN_PROGRESS/COMPLETED in the database and
// BACKLOG/TODO/IN_PROGRESS/DONE in forms. The canonical set keeps TODO and
// spells the terminal state COMPLETED; DONE is still accepted by ParseStatus
// and migrated to COMPLETED.
type Status string

const (
	StatusBacklog    Status = "BACKLOG"
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"

	legacyStatusDone = "DONE"
)

// DefaultStatus is used when a submission leaves status empty.
const DefaultStatus = StatusBacklog

var Statuses = []Status{StatusBacklog, StatusTodo, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus normalizes a submitted status, mapping the legacy DONE value.
func ParseStatus(s string) (Status, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == legacyStatusDone {
		return StatusCompleted, true
	}
	st := Status(v)
	return st, st.Valid()
}

func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	return p, p.Valid()
}
