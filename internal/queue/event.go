// Package queue defines message payloads exchanged over the message broker.
package queue

// LoginEvent is published after every successful login.  Downstream
// consumers feed the workshop's audit trail and session analytics without
// querying the primary database.
type LoginEvent struct {
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	ClientIP   string `json:"client_ip"`
	LoggedInAt string `json:"logged_in_at"`
}

// UserCreatedEvent is published when an administrator provisions a new
// account.
type UserCreatedEvent struct {
	UserID    uint64 `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedBy uint64 `json:"created_by"`
	CreatedAt string `json:"created_at"`
}

// UserDeactivatedEvent is published when an account is soft-deleted.  Since
// deactivation is the only way to revoke outstanding tokens, auditors care
// about exactly when it happened.
type UserDeactivatedEvent struct {
	UserID        uint64 `json:"user_id"`
	Email         string `json:"email"`
	DeactivatedBy uint64 `json:"deactivated_by"`
	DeactivatedAt string `json:"deactivated_at"`
}
