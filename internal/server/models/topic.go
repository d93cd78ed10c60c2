package models

// Topic is static reference data offered to question generators.
type Topic struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var topics = [...]Topic{
	{ID: 1, Name: "Business & AI", Description: "AI applications in business"},
	{ID: 2, Name: "Technology & Innovation", Description: "Emerging technologies and innovation"},
	{ID: 3, Name: "Education & Learning", Description: "Educational technology and learning methods"},
	{ID: 4, Name: "Health & Wellness", Description: "Healthcare and wellness topics"},
	{ID: 5, Name: "Science & Research", Description: "Scientific research and methodologies"},
}

// Topics returns a fresh copy of the topic table, ordered by id.
func Topics() []Topic {
	out := make([]Topic, len(topics))
	copy(out, topics[:])
	return out
}
