package relay

import (
	"strings"
	"testing"

	"github.com/diogo/vestry/internal/api"
)

func TestDescribeWardrobe(t *testing.T) {
	tests := []struct {
		name  string
		items []api.WardrobeItem
		want  string
	}{
		{
			name:  "empty",
			items: nil,
			want:  "",
		},
		{
			name:  "minimal item",
			items: []api.WardrobeItem{{Name: "Tee", Category: "Tops", Color: "White"}},
			want:  "- Tee (Tops, White)",
		},
		{
			name: "brand and tags",
			items: []api.WardrobeItem{
				{Name: "Silk Blouse", Category: "Tops", Color: "Ivory White", Brand: "Massimo Dutti", Tags: []string{"office", "versatile"}},
				{Name: "Wide-Leg Linen Trousers", Category: "Bottoms", Color: "Camel", Tags: []string{"casual"}},
			},
			want: "- Silk Blouse (Tops, Ivory White, Massimo Dutti, tags: office, versatile)\n" +
				"- Wide-Leg Linen Trousers (Bottoms, Camel, tags: casual)",
		},
		{
			name:  "empty tag list",
			items: []api.WardrobeItem{{Name: "Blazer", Category: "Outerwear", Color: "Black", Brand: "Zara", Tags: []string{}}},
			want:  "- Blazer (Outerwear, Black, Zara)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescribeWardrobe(tt.items); got != tt.want {
				t.Errorf("DescribeWardrobe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt([]api.WardrobeItem{{Name: "Tee", Category: "Tops", Color: "White"}})

	if !strings.HasPrefix(prompt, "You are Vestry's personal AI stylist") {
		t.Errorf("prompt has unexpected opening: %q", prompt[:40])
	}
	if !strings.Contains(prompt, "The user's current wardrobe:\n- Tee (Tops, White)\n\nGuidelines:") {
		t.Error("wardrobe list is not placed between the header and the guidelines")
	}
	if !strings.HasSuffix(prompt, "no more than 3-4 outfit options at a time.") {
		t.Error("prompt should end with the last guideline")
	}
}

func TestBuildSystemPromptEmptyWardrobe(t *testing.T) {
	prompt := BuildSystemPrompt(nil)
	if !strings.Contains(prompt, "The user's current wardrobe:\n"+EmptyWardrobe+"\n") {
		t.Errorf("empty wardrobe placeholder missing from prompt")
	}
}
