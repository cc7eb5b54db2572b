package model

import "time"

// InteractionType is the kind of an interaction event.
type InteractionType string

const (
	InteractionView    InteractionType = "view"
	InteractionLike    InteractionType = "like"
	InteractionDislike InteractionType = "dislike"
)

// Interaction is one event linking a user and a video.
type Interaction struct {
	ID        string          `json:"id"`
	VideoID   string          `json:"videoId"`
	UserID    string          `json:"userId"`
	Type      InteractionType `json:"type"`
	CreatedAt time.Time       `json:"createdAt"`
}

// InteractionCount is one (video, type) group of the interaction log.
type InteractionCount struct {
	VideoID string
	Type    InteractionType
	Count   int
}

// UserInteraction is the requesting user's own reaction state on a video.
type UserInteraction struct {
	Like    bool `json:"like"`
	Dislike bool `json:"dislike"`
}

// Aggregate holds derived counts and per-user flags for one video.
type Aggregate struct {
	Likes           int             `json:"likes"`
	Dislikes        int             `json:"dislikes"`
	Views           int             `json:"views"`
	UserInteraction UserInteraction `json:"userInteraction"`
}

// Reaction is a like/dislike selector; ReactionNone clears both.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
	ReactionNone    Reaction = "none"
)

// ReactionState is the like/dislike row presence for one (user, video) pair.
// Like and Dislike are never both true.
type ReactionState struct {
	Like    bool
	Dislike bool
}

// Toggle returns the state after toggling kind: an existing row of kind is
// removed, otherwise the opposite kind is cleared and kind is set.
func (s ReactionState) Toggle(kind Reaction) ReactionState {
	switch kind {
	case ReactionLike:
		if s.Like {
			return ReactionState{}
		}
		return ReactionState{Like: true}
	case ReactionDislike:
		if s.Dislike {
			return ReactionState{}
		}
		return ReactionState{Dislike: true}
	}
	return s
}

// Set returns the state with exactly kind applied. It is idempotent.
func (s ReactionState) Set(kind Reaction) ReactionState {
	switch kind {
	case ReactionLike:
		return ReactionState{Like: true}
	case ReactionDislike:
		return ReactionState{Dislike: true}
	case ReactionNone:
		return ReactionState{}
	}
	return s
}

// ReactionResponse is returned by like/dislike/reaction endpoints.
type ReactionResponse struct {
	VideoID      string `json:"videoId"`
	Likes        int    `json:"likes"`
	Dislikes     int    `json:"dislikes"`
	UserLiked    bool   `json:"userLiked"`
	UserDisliked bool   `json:"userDisliked"`
}

// ReactionRequest sets a reaction explicitly.
type ReactionRequest struct {
	Reaction *Reaction `json:"reaction"`
}

// ViewResponse is returned after recording a view.
type ViewResponse struct {
	VideoID string `json:"videoId"`
	Views   int    `json:"views"`
}

// SaveResponse is returned by save/unsave/is-saved endpoints.
type SaveResponse struct {
	VideoID string `json:"videoId"`
	Saved   bool   `json:"saved"`
}

// SavedVideo is a bookmark linking a user and a video.
type SavedVideo struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ViewedVideo is a distinct video from a user's watch history.
type ViewedVideo struct {
	VideoID  string
	ViewedAt time.Time
}

// Activity is an interaction row joined with display names for admins.
type Activity struct {
	ID         string          `json:"id"`
	Type       InteractionType `json:"type"`
	CreatedAt  time.Time       `json:"createdAt"`
	Username   string          `json:"username"`
	UserEmail  string          `json:"userEmail"`
	VideoTitle string          `json:"videoTitle"`
	VideoID    string          `json:"videoId"`
	UserID     string          `json:"userId"`
}

// CleanupResult reports a retention sweep.
type CleanupResult struct {
	DeletedCount int64     `json:"deletedCount"`
	Cutoff       time.Time `json:"cutoff"`
}
