package model

import "time"

// ContentBlock is an editable piece of site text addressed by a stable
// key such as "home.hero.title".  Body may contain sanitised HTML.
type ContentBlock struct {
	Key       string    `json:"key"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	UpdatedBy *string   `json:"updatedBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Banner is a homepage banner managed by CMS managers.
type Banner struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	LinkURL   string    `json:"linkUrl,omitempty"`
	Position  int       `json:"position"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
