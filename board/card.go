package board

import "github.com/CrowderSoup/taskboard/api"

// Assignee is a user working on a card.
type Assignee struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Card is a task as shown on the board. Status always matches the column
// holding the card.
type Card struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Priority      *int       `json:"priority"`
	EstimatedTime *float64   `json:"estimated_time"`
	ProjectID     int64      `json:"project_id"`
	AssignedUsers []Assignee `json:"assigned_users"`
}

func (c Card) clone() Card {
	out := c
	if c.Priority != nil {
		p := *c.Priority
		out.Priority = &p
	}
	if c.EstimatedTime != nil {
		e := *c.EstimatedTime
		out.EstimatedTime = &e
	}
	if c.AssignedUsers != nil {
		out.AssignedUsers = make([]Assignee, len(c.AssignedUsers))
		copy(out.AssignedUsers, c.AssignedUsers)
	}
	return out
}

// Colors returns the priority colors of the card.
func (c Card) Colors() PriorityColors {
	return PriorityColor(c.Priority)
}

func cardFromTask(t api.Task, col ColumnID, projectID int64) Card {
	card := Card{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        col.Status(),
		Priority:      t.Priority,
		EstimatedTime: t.EstimatedTime,
		ProjectID:     t.ProjectID,
		AssignedUsers: make([]Assignee, 0, len(t.AssignedUsers)),
	}
	if card.ProjectID == 0 {
		card.ProjectID = projectID
	}
	for _, u := range t.AssignedUsers {
		card.AssignedUsers = append(card.AssignedUsers, Assignee{ID: u.ID, Name: u.Name, Avatar: u.Avatar})
	}
	return card
}
