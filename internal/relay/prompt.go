// Package relay implements the outfit-chat endpoint: it adds the stylist
// system prompt to a chat request, forwards it to a chat-completion gateway
// and streams the gateway's event stream back unmodified.
package relay

import (
	"strings"

	"github.com/diogo/vestry/internal/api"
)

// EmptyWardrobe stands in for the item list when the wardrobe is empty
const EmptyWardrobe = "No items in wardrobe yet."

const promptHeader = `You are Vestry's personal AI stylist — elegant, warm, and knowledgeable about fashion. Your role is to suggest outfit combinations exclusively from the user's wardrobe.

The user's current wardrobe:
`

const promptGuidelines = `

Guidelines:
- Only suggest items that are listed in the wardrobe above. Never invent items.
- Be specific about which pieces to combine and why they work together.
- Give each outfit suggestion a chic, editorial name.
- Keep your tone warm, encouraging, and stylish — like a trusted fashion-savvy friend.
- If the wardrobe is too limited for the occasion, be honest but suggest the best option available.
- Format outfit suggestions clearly with the outfit name, the pieces, and a brief style note.
- Keep responses concise and elegant — no more than 3-4 outfit options at a time.`

// BuildSystemPrompt returns the stylist instructions constrained to items
func BuildSystemPrompt(items []api.WardrobeItem) string {
	var sb strings.Builder
	sb.WriteString(promptHeader)
	if desc := DescribeWardrobe(items); desc != "" {
		sb.WriteString(desc)
	} else {
		sb.WriteString(EmptyWardrobe)
	}
	sb.WriteString(promptGuidelines)
	return sb.String()
}

// DescribeWardrobe renders one "- name (category, color, brand, tags: a, b)"
// line per item
func DescribeWardrobe(items []api.WardrobeItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		var sb strings.Builder
		sb.WriteString("- ")
		sb.WriteString(item.Name)
		sb.WriteString(" (")
		sb.WriteString(item.Category)
		sb.WriteString(", ")
		sb.WriteString(item.Color)
		if item.Brand != "" {
			sb.WriteString(", ")
			sb.WriteString(item.Brand)
		}
		if len(item.Tags) > 0 {
			sb.WriteString(", tags: ")
			sb.WriteString(strings.Join(item.Tags, ", "))
		}
		sb.WriteString(")")
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}
