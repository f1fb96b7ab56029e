// Package catalog holds the set of known subscription categories and maps
// free-form labels onto them.
package catalog

// Other is the fallback category for labels the catalog does not know.
const Other = "Other"

// Category describes one known subscription category.
type Category struct {
	Name  string `yaml:"name" json:"name"`
	Icon  string `yaml:"icon,omitempty" json:"icon,omitempty"`
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// File is the YAML layout of a category catalog file.
type File struct {
	Updated    string     `yaml:"updated"`
	Categories []Category `yaml:"categories"`
}

// Defaults is the built-in category list.
var Defaults = []Category{
	{Name: "Design Tools", Icon: "🎨", Color: "#ec4899"},
	{Name: "Development", Icon: "💻", Color: "#3b82f6"},
	{Name: "Productivity", Icon: "⚡", Color: "#eab308"},
	{Name: "Stock Assets", Icon: "🖼️", Color: "#f97316"},
	{Name: "Cloud Storage", Icon: "☁️", Color: "#06b6d4"},
	{Name: "Marketing", Icon: "📣", Color: "#10b981"},
	{Name: "Communication", Icon: "💬", Color: "#8b5cf6"},
	{Name: "Entertainment", Icon: "🎬", Color: "#ef4444"},
	{Name: Other, Icon: "📦", Color: "#6b7280"},
}
