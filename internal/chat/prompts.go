package chat

// Greeting opens a new conversation
const Greeting = "Hi! I'm your personal stylist ✨ Tell me about your occasion or mood, and I'll curate the perfect outfit from your wardrobe. You can also tap one of the quick options below."

// ResetGreeting replaces the conversation after a reset
const ResetGreeting = "Hi! I'm your personal stylist ✨ Tell me about your occasion or mood, and I'll curate the perfect outfit from your wardrobe."

// FallbackReply is appended when a reply could not be fetched
const FallbackReply = "Sorry, I couldn't connect right now. Please try again! 💫"

// NoticeTitle heads the notification shown on a failed reply
const NoticeTitle = "Stylist unavailable"

// QuickPrompt is a canned opener offered before the first message
type QuickPrompt struct {
	Label  string
	Prompt string
}

// QuickPrompts returns the canned openers in display order
func QuickPrompts() []QuickPrompt {
	return []QuickPrompt{
		{Label: "Work", Prompt: "What should I wear for a professional work day?"},
		{Label: "Casual", Prompt: "Give me a casual, relaxed outfit for the weekend."},
		{Label: "Evening", Prompt: "I need a chic evening outfit for dinner out."},
		{Label: "Date", Prompt: "What's the perfect romantic date night outfit?"},
		{Label: "Weekend", Prompt: "Something comfortable for a sunny weekend day?"},
		{Label: "Party", Prompt: "I'm going to a party — what should I wear?"},
	}
}
