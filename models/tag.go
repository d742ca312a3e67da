package models

import "github.com/google/uuid"

const DefaultTagColor = "#6366f1"

// Tag names are unique case-insensitively.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func NewTag(name, color string) *Tag {
	if color == "" {
		color = DefaultTagColor
	}
	return &Tag{
		ID:    uuid.New().String(),
		Name:  name,
		Color: color,
	}
}
