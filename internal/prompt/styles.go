package prompt

// Style pairs a catalog identifier with the descriptor fragment appended to prompts.
type Style struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Fragment string `json:"fragment"`
}

const StyleNone = "none"

var catalog = []Style{
	{ID: StyleNone, Name: "No style", Fragment: ""},
	{ID: "realistic", Name: "Photorealistic", Fragment: "photorealistic, high quality, detailed, 8k"},
	{ID: "anime", Name: "Anime", Fragment: "anime style, japanese animation, vibrant colors"},
	{ID: "oil", Name: "Oil painting", Fragment: "oil painting, artistic, brush strokes"},
	{ID: "watercolor", Name: "Watercolor", Fragment: "watercolor painting, soft colors, delicate"},
	{ID: "pixel", Name: "Pixel art", Fragment: "pixel art, 16-bit, retro gaming"},
	{ID: "comic", Name: "Comic", Fragment: "comic book style, bold lines, illustration"},
	{ID: "minimalist", Name: "Minimalist", Fragment: "minimalist, simple, clean design"},
	{ID: "3d", Name: "3D render", Fragment: "3D render, octane, professional lighting"},
	{ID: "fantasy", Name: "Fantasy", Fragment: "fantasy art, magical, epic, detailed"},
}

// Styles returns a copy of the catalog in display order.
func Styles() []Style {
	out := make([]Style, len(catalog))
	copy(out, catalog)
	return out
}

func LookupStyle(id string) (Style, bool) {
	for _, s := range catalog {
		if s.ID == id {
			return s, true
		}
	}
	return Style{}, false
}
