package mask

// Preset is the validation pattern, placeholder and length cap a text field
// adopts when a mask is selected.
type Preset struct {
	Pattern     string
	Placeholder string
	MaxLength   int
}

var presets = map[Kind]Preset{
	Alpha:      {Pattern: `^[A-Za-z]+$`, Placeholder: "Letters only"},
	CreditCard: {Pattern: `^\d{4}\s\d{4}\s\d{4}\s\d{4}$`, Placeholder: "1234 5678 9012 3456", MaxLength: 19},
	SSN:        {Pattern: `^\d{3}-\d{2}-\d{4}$`, Placeholder: "123-45-6789", MaxLength: 11},
	Zip:        {Pattern: `^\d{5}$`, Placeholder: "12345", MaxLength: 5},
	USPostal:   {Pattern: `^\d{5}-\d{4}$`, Placeholder: "12345-6789", MaxLength: 10},
	Phone:      {Pattern: `^\(\d{3}\) \d{3}-\d{4}$`, Placeholder: "(123) 456-7890", MaxLength: 14},
	Email:      {Pattern: `^[^@\s]+@[^@\s]+\.[^@\s]+$`, Placeholder: "name@example.com"},
	URL:        {Pattern: `^https?://.+`, Placeholder: "https://example.com"},
	Time:       {Pattern: `^\d{2}:\d{2}$`, Placeholder: "HH:MM", MaxLength: 5},
	Slug:       {Pattern: `^[a-z0-9]+(?:-[a-z0-9]+)*$`, Placeholder: "my-slug"},
	Currency:   {Placeholder: "$0.00"},
}

// PresetFor returns the preset registered for kind.
func PresetFor(kind Kind) (Preset, bool) {
	preset, ok := presets[kind]
	return preset, ok
}
