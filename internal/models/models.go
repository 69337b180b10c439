package models

import (
	"math"
	"time"
)

// Role is a backend role tag as carried in the JWT response.
type Role string

const (
	RoleAdmin  Role = "ROLE_ADMIN"
	RoleClient Role = "ROLE_CLIENT"
	RoleUser   Role = "ROLE_USER"
)

// RoleSet is the set of role tags granted to a user.
type RoleSet []Role

func (s RoleSet) Has(r Role) bool {
	for _, have := range s {
		if have == r {
			return true
		}
	}
	return false
}

func (s RoleSet) Intersects(other RoleSet) bool {
	for _, r := range other {
		if s.Has(r) {
			return true
		}
	}
	return false
}

func (s RoleSet) IsAdmin() bool {
	return s.Has(RoleAdmin)
}

type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	CompanyName string    `json:"companyName"`
	Roles       RoleSet   `json:"roles"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Service request lifecycle.
const (
	RequestPending  = "PENDING"
	RequestApproved = "APPROVED"
	RequestRejected = "REJECTED"
)

const (
	RequestTypeNewClient     = "NEW_CLIENT"
	RequestTypeNewProject    = "NEW_PROJECT"
	RequestTypeProjectUpdate = "PROJECT_UPDATE"
)

// ServiceTypes are the offerings a request can ask for, as the backend
// spells them.
var ServiceTypes = []string{
	"Web Development",
	"App Development",
	"Digital Marketing",
	"SEO Optimization",
	"UI/UX Design",
}

type ServiceRequest struct {
	ID             string    `json:"id,omitempty"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	CompanyName    string    `json:"companyName,omitempty"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	ServiceType    string    `json:"serviceType"`
	BudgetRange    string    `json:"budgetRange,omitempty"`
	Timeline       string    `json:"timeline,omitempty"`
	Description    string    `json:"description"`
	ReferenceLinks string    `json:"referenceLinks,omitempty"`
	ClientID       string    `json:"clientId,omitempty"`
	ProjectID      string    `json:"projectId,omitempty"`
	ProjectName    string    `json:"projectName,omitempty"`
	Priority       string    `json:"priority,omitempty"`
	RequestType    string    `json:"requestType"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

// Project / task status values, as the backend spells them.
const (
	ProjectActive    = "Active"
	ProjectPending   = "Pending"
	ProjectCompleted = "Completed"

	TaskPending    = "Pending"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
)

type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Assignee  string     `json:"assignee,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Completed bool       `json:"completed"`
}

type Project struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"clientId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ServiceType string     `json:"serviceType,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Progress    int        `json:"progress,omitempty"`
	Update      string     `json:"update,omitempty"`
	Tasks       []Task     `json:"tasks,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty"`
}

// DerivedProgress computes the 0-100 completion percentage shown for a
// project. With at least one task it is the completed share rounded
// half-up; otherwise the server-supplied progress value is used verbatim.
// Computed on every read so task mutations are always reflected.
func (p Project) DerivedProgress() int {
	if len(p.Tasks) == 0 {
		return p.Progress
	}
	completed := 0
	for _, t := range p.Tasks {
		if t.Status == TaskCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(p.Tasks)) * 100))
}

// Message priorities.
const (
	PriorityLow    = "LOW"
	PriorityNormal = "NORMAL"
	PriorityHigh   = "HIGH"
)

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Subject    string    `json:"subject,omitempty"`
	Priority   string    `json:"priority,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	Read       bool      `json:"read"`
}

type AdminStats struct {
	TotalClients   int64  `json:"totalClients"`
	ActiveProjects int64  `json:"activeProjects"`
	Revenue        string `json:"revenue"`
	SystemHealth   string `json:"systemHealth"`
}

type ClientStats struct {
	ActiveProjects    int `json:"activeProjects"`
	CompletedProjects int `json:"completedProjects"`
	PendingTasks      int `json:"pendingTasks"`
	NeedsReview       int `json:"needsReview"`
}
