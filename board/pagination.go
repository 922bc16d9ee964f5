package board

import (
	"context"

	"github.com/CrowderSoup/taskboard/api"
)

// Cursor is the page the board shows and what lies around it.
type Cursor struct {
	CurrentPage int  `json:"current_page"`
	LastPage    int  `json:"last_page"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

func firstPage() Cursor {
	return Cursor{CurrentPage: 1, LastPage: 1}
}

func cursorFrom(p api.Pagination) Cursor {
	c := Cursor{
		CurrentPage: p.CurrentPage,
		LastPage:    p.LastPage,
		HasNext:     p.NextPageURL != "",
		HasPrev:     p.PrevPageURL != "",
	}
	if c.LastPage < c.CurrentPage {
		c.LastPage = c.CurrentPage
	}
	return c
}

func (m *Model) Cursor() Cursor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// NextPage reloads the following page. It does nothing, and reports false,
// when the cursor has no next page.
func (m *Model) NextPage(ctx context.Context) (bool, error) {
	m.mu.Lock()
	ok := m.cursor.HasNext
	page := m.cursor.CurrentPage + 1
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, m.reloadPage(ctx, page)
}

// PrevPage reloads the preceding page when there is one.
func (m *Model) PrevPage(ctx context.Context) (bool, error) {
	m.mu.Lock()
	ok := m.cursor.HasPrev
	page := m.cursor.CurrentPage - 1
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, m.reloadPage(ctx, page)
}

// GoToPage reloads an explicit page within [1, last page].
func (m *Model) GoToPage(ctx context.Context, page int) (bool, error) {
	m.mu.Lock()
	ok := page >= 1 && page <= m.cursor.LastPage
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, m.reloadPage(ctx, page)
}

func (m *Model) reloadPage(ctx context.Context, page int) error {
	projectID, filters := m.Selection()
	return m.Reload(ctx, projectID, filters, page)
}
