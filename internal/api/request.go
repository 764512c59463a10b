package api

// Role values used on the wire
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one conversation turn as sent to the relay
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WardrobeItem is the slice of a clothing item the stylist needs
type WardrobeItem struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Color    string   `json:"color"`
	Brand    string   `json:"brand,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// ChatRequest is the body POSTed to the relay endpoint
type ChatRequest struct {
	Messages []Message      `json:"messages"`
	Wardrobe []WardrobeItem `json:"wardrobe"`
}
