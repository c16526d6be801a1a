package models

// Achievement is a badge derived from the user's task set on every call.
// Badges are not persisted; adding tasks can only earn more of them.
type Achievement struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}
