package kafka

import "time"

const (
	EventUserFollowed   = "user.followed"
	EventUserUnfollowed = "user.unfollowed"
	EventProjectRated   = "project.rated"
)

// Event 领域事件，供离线分析消费
type Event struct {
	Type       string    `json:"type"`
	ActorID    string    `json:"actor_id"`
	TargetID   string    `json:"target_id,omitempty"`
	ProjectID  string    `json:"project_id,omitempty"`
	Value      int       `json:"value,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
