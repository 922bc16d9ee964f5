package board

import "github.com/CrowderSoup/taskboard/api"

// Filters narrow down the tasks a board shows.
type Filters struct {
	Status    []string `json:"status,omitempty"`
	Priority  []string `json:"priority,omitempty"`
	DateRange string   `json:"date_range,omitempty"`
	DateField string   `json:"date_field,omitempty"`
	SortBy    string   `json:"sort_by,omitempty"`
	SortOrder string   `json:"sort_order,omitempty"`

	// AssignedByMe lists the tasks the current manager assigned instead of
	// the tasks the caller created.
	AssignedByMe bool `json:"assigned_by_manager,omitempty"`
}

// DefaultFilters is what the filter menu starts from.
func DefaultFilters() Filters {
	return Filters{
		DateField: "created_at",
		SortBy:    "created_at",
		SortOrder: "asc",
	}
}

func (f Filters) clone() Filters {
	out := f
	if f.Status != nil {
		out.Status = append([]string(nil), f.Status...)
	}
	if f.Priority != nil {
		out.Priority = append([]string(nil), f.Priority...)
	}
	return out
}

func (f Filters) taskFilter() api.TaskFilter {
	tf := api.TaskFilter{
		DateRange:         f.DateRange,
		DateField:         f.DateField,
		SortBy:            f.SortBy,
		SortOrder:         f.SortOrder,
		AssignedByManager: f.AssignedByMe,
	}
	if len(f.Status) > 0 {
		tf.Status = append([]string(nil), f.Status...)
	}
	if len(f.Priority) > 0 {
		tf.Priority = append([]string(nil), f.Priority...)
	}
	return tf
}
