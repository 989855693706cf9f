package models

import "time"

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name" yaml:"name"`
	Slug string `json:"slug" yaml:"slug"`
}

// CategoryEvents pairs a category with the events listed under it.
type CategoryEvents struct {
	Category Category `json:"category"`
	Events   []Event  `json:"events"`
}

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Comment struct {
	ID       string    `json:"id"`
	EventID  string    `json:"event_id"`
	Username string    `json:"username"`
	Body     string    `json:"comment"`
	Created  time.Time `json:"created"`
}
