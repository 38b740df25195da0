package store

import "time"

// DefaultFields are the document fields exposed when Settings.Fields is empty.
var DefaultFields = []string{"id", "title", "content", "votes", "status", "updatedAt"}

// Document is a post rendered for display, restricted to the configured fields.
type Document map[string]any

// Document renders p with only the service's whitelisted fields.
func (s *Service) Document(p Post) Document {
	all := map[string]any{
		"id":        p.ID,
		"title":     p.Title,
		"content":   p.Content,
		"votes":     p.Votes,
		"author":    p.Author,
		"status":    p.Status,
		"createdAt": p.CreatedAt.Format(time.RFC3339),
		"updatedAt": p.UpdatedAt.Format(time.RFC3339),
	}

	doc := make(Document, len(s.fields))
	for _, f := range s.fields {
		if v, ok := all[f]; ok {
			doc[f] = v
		}
	}
	return doc
}

// Documents renders each post in turn.
func (s *Service) Documents(posts []Post) []Document {
	out := make([]Document, 0, len(posts))
	for _, p := range posts {
		out = append(out, s.Document(p))
	}
	return out
}

// sortColumns maps document field names to columns Find may order by.
var sortColumns = map[string]string{
	"id":        "id",
	"title":     "title",
	"content":   "content",
	"votes":     "votes",
	"author":    "author",
	"status":    "status",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}
