package store

import (
	"time"
)

// Post is a stored post as the service hands it out.
type Post struct {
	ID        uint
	Title     string
	Content   string
	Votes     int
	Author    int
	Status    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostInput holds the fields of a post to create. ID is optional; when
// zero the database assigns one.
type PostInput struct {
	ID      uint
	Title   string
	Content string
	Votes   int
	Author  int
	Status  bool
}

// PostUpdate holds the fields to change. Nil fields are left as they are.
type PostUpdate struct {
	Title   *string
	Content *string
	Votes   *int
	Author  *int
	Status  *bool
}

// FindParams narrows and orders a Find. Sort names a document field,
// prefixed with "-" for descending order.
type FindParams struct {
	Limit  int
	Offset int
	Sort   string
}

type postModel struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:255"`
	Content   string `gorm:"type:text"`
	Votes     int
	Author    int
	Status    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (postModel) TableName() string {
	return "posts"
}

func (m postModel) toEntity() Post {
	return Post{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		Votes:     m.Votes,
		Author:    m.Author,
		Status:    m.Status,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func postModelFromInput(in PostInput) postModel {
	return postModel{
		ID:      in.ID,
		Title:   in.Title,
		Content: in.Content,
		Votes:   in.Votes,
		Author:  in.Author,
		Status:  in.Status,
	}
}

func (u PostUpdate) columns() map[string]any {
	cols := make(map[string]any)
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Content != nil {
		cols["content"] = *u.Content
	}
	if u.Votes != nil {
		cols["votes"] = *u.Votes
	}
	if u.Author != nil {
		cols["author"] = *u.Author
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	return cols
}

func toEntities(rows []postModel) []Post {
	out := make([]Post, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out
}
