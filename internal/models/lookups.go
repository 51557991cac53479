package models

import "strings"

// Lookup helpers over the in-memory collections. All are linear scans; the
// corpus is held fully in memory and the access patterns stay small.

// UserByID returns the user with the given id, or nil.
func (s *Snapshot) UserByID(id int64) *User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

// UserByUsername returns the user with the given username, compared
// case-insensitively, or nil.
func (s *Snapshot) UserByUsername(username string) *User {
	for i := range s.Users {
		if strings.EqualFold(s.Users[i].Username, username) {
			return &s.Users[i]
		}
	}
	return nil
}

// UserByEmail returns the user with the given normalized email, or nil.
func (s *Snapshot) UserByEmail(email string) *User {
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range s.Users {
		if s.Users[i].Email == email {
			return &s.Users[i]
		}
	}
	return nil
}

// CategoryByID returns the category with the given id, or nil.
func (s *Snapshot) CategoryByID(id int64) *Category {
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			return &s.Categories[i]
		}
	}
	return nil
}

// CategoryBySlug returns the category with the given slug, or nil.
func (s *Snapshot) CategoryBySlug(slug string) *Category {
	for i := range s.Categories {
		if s.Categories[i].Slug == slug {
			return &s.Categories[i]
		}
	}
	return nil
}

// TagByID returns the tag with the given id, or nil.
func (s *Snapshot) TagByID(id int64) *Tag {
	for i := range s.Tags {
		if s.Tags[i].ID == id {
			return &s.Tags[i]
		}
	}
	return nil
}

// TagByName returns the tag with the given name, compared
// case-insensitively, or nil.
func (s *Snapshot) TagByName(name string) *Tag {
	name = strings.TrimSpace(name)
	for i := range s.Tags {
		if strings.EqualFold(s.Tags[i].Name, name) {
			return &s.Tags[i]
		}
	}
	return nil
}

// TagBySlug returns the tag with the given slug, or nil.
func (s *Snapshot) TagBySlug(slug string) *Tag {
	for i := range s.Tags {
		if s.Tags[i].Slug == slug {
			return &s.Tags[i]
		}
	}
	return nil
}

// PostByID returns the post with the given id, or nil.
func (s *Snapshot) PostByID(id int64) *Post {
	for i := range s.Posts {
		if s.Posts[i].ID == id {
			return &s.Posts[i]
		}
	}
	return nil
}

// CommentByID returns the comment with the given id, or nil.
func (s *Snapshot) CommentByID(id int64) *Comment {
	for i := range s.Comments {
		if s.Comments[i].ID == id {
			return &s.Comments[i]
		}
	}
	return nil
}

// ReportByID returns the report with the given id, or nil.
func (s *Snapshot) ReportByID(id int64) *Report {
	for i := range s.Reports {
		if s.Reports[i].ID == id {
			return &s.Reports[i]
		}
	}
	return nil
}

// TagsForPost returns the tag names attached to a post, in relation order.
func (s *Snapshot) TagsForPost(postID int64) []string {
	var names []string
	for _, pt := range s.PostTags {
		if pt.PostID != postID {
			continue
		}
		if t := s.TagByID(pt.TagID); t != nil {
			names = append(names, t.Name)
		}
	}
	return names
}
