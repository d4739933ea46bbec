package domain

import (
	"slices"
	"time"
)

type Contest struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	HostID       string    `json:"host_id"`
	JoinCode     string    `json:"join_code,omitempty"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c Contest) IsHost(userID string) bool {
	return userID != "" && c.HostID == userID
}

func (c Contest) HasParticipant(userID string) bool {
	return slices.Contains(c.Participants, userID)
}

// ForViewer hides the join code from everyone except the host.
func (c Contest) ForViewer(userID string) Contest {
	if !c.IsHost(userID) {
		c.JoinCode = ""
	}
	return c
}

type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
