package entity

// CategoryInfo is the display mapping for an expense category code.
type CategoryInfo struct {
	Name  string
	Emoji string
}

// fallbackEmoji is shown for category codes with no local mapping.
const fallbackEmoji = "🤷‍♀️"

// localCategories mirrors the backend's category code set with the display
// emoji each code renders with.
var localCategories = map[string]CategoryInfo{
	"TRAVEL":          {Name: "Travel", Emoji: "✈️"},
	"FOOD":            {Name: "Food", Emoji: "🍽️"},
	"OFFICE_SUPPLIES": {Name: "Office Supplies", Emoji: "📦"},
	"UTILITIES":       {Name: "Utilities", Emoji: "💡"},
	"OTHER":           {Name: "Other", Emoji: "📝"},
}

// CategoryCatalog resolves category codes to display labels. Labels come
// from the backend mapping; emojis from the local table with a shrug
// fallback for unknown codes.
type CategoryCatalog struct {
	backend map[string]string
}

// NewCategoryCatalog builds a catalog from the backend's code → name
// mapping (GET /api/expenses/categories). A nil mapping yields a catalog
// backed only by the local table.
func NewCategoryCatalog(backend map[string]string) *CategoryCatalog {
	return &CategoryCatalog{backend: backend}
}

// Resolve returns the display info for a category code. The backend label
// wins when present; the local table supplies the emoji; unknown codes get
// the raw code as name and the fallback emoji.
func (c *CategoryCatalog) Resolve(code string) CategoryInfo {
	info, known := localCategories[code]
	if !known {
		info = CategoryInfo{Name: code, Emoji: fallbackEmoji}
	}
	if c != nil && c.backend != nil {
		if name, ok := c.backend[code]; ok && name != "" {
			info.Name = name
		}
	}
	return info
}

// Codes returns all codes known to the catalog, backend first.
func (c *CategoryCatalog) Codes() []string {
	seen := make(map[string]bool)
	var codes []string
	if c != nil {
		for code := range c.backend {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}
	for code := range localCategories {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes
}
