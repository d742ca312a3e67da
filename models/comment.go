package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment lives embedded in its task; mentions hold the resolved member ids
// of every @username token found in the content.
type Comment struct {
	ID        string     `json:"id"`
	AuthorID  string     `json:"authorId"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	EditedAt  *time.Time `json:"editedAt"`
	Mentions  []string   `json:"mentions"`
}

func NewComment(authorID, content string, mentions []string) Comment {
	if mentions == nil {
		mentions = []string{}
	}
	return Comment{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Mentions:  mentions,
	}
}
