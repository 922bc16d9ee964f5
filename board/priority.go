package board

// PriorityColors is the decorative pair a view paints a card with.
type PriorityColors struct {
	Background string `json:"background"`
	Label      string `json:"label"`
}

const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

var priorityColors = map[int]PriorityColors{
	PriorityLow:    {Background: "bg-green-50/50", Label: "bg-green-500"},
	PriorityMedium: {Background: "bg-blue-50/50", Label: "bg-blue-500"},
	PriorityHigh:   {Background: "bg-red-50/50", Label: "bg-red-500"},
}

var defaultPriorityColors = PriorityColors{Background: "bg-gray-50/50", Label: "bg-gray-500"}

// PriorityColor returns the colors for a priority. nil or unknown
// priorities get the gray fallback.
func PriorityColor(priority *int) PriorityColors {
	if priority == nil {
		return defaultPriorityColors
	}
	if c, ok := priorityColors[*priority]; ok {
		return c
	}
	return defaultPriorityColors
}

// PriorityLabel names a priority, or returns "" when it has none.
func PriorityLabel(priority *int) string {
	if priority == nil {
		return ""
	}
	switch *priority {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return ""
	}
}
