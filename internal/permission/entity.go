package permission

import (
	"time"

	"github.com/kazz187/agentregistry/internal/document"
)

// Document is the stored permissions table: normalized user id to the
// agents the user may use, in the order they were granted.
type Document struct {
	document.Header
	Permissions document.Collection[[]string] `json:"permissions"`
}

func NewDocument() *Document {
	return &Document{Permissions: document.NewCollection[[]string]()}
}

// Outcome describes what AddPermission did.
type Outcome int

const (
	Added Outcome = iota
	AlreadyGranted
	UserCreated
)

func (o Outcome) Message() string {
	switch o {
	case AlreadyGranted:
		return "Permission already exists"
	case UserCreated:
		return "User created and permission added successfully"
	default:
		return "Permission added successfully"
	}
}

// Grant is the result of AddPermission.
type Grant struct {
	UserID          string
	AgentName       string
	PermittedAgents []string
	Outcome         Outcome
}

// User is the result of CreateUser.
type User struct {
	UserID          string
	PermittedAgents []string
	CreatedAt       time.Time
}
