package board

// ColumnView is one column of a snapshot.
type ColumnView struct {
	ID    ColumnID `json:"id"`
	Title string   `json:"title"`
	Cards []Card   `json:"cards"`
}

// Snapshot is a copy of the board that callers may keep and modify.
type Snapshot struct {
	ProjectID  int64        `json:"project_id"`
	Filters    Filters      `json:"filters"`
	Columns    []ColumnView `json:"columns"`
	Pagination Cursor       `json:"pagination"`
	State      State        `json:"state"`
	Loading    bool         `json:"loading"`
}

func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Model) snapshotLocked() Snapshot {
	snap := Snapshot{
		ProjectID:  m.projectID,
		Filters:    m.filters.clone(),
		Columns:    make([]ColumnView, 0, numColumns),
		Pagination: m.cursor,
		State:      m.stateLocked(),
		Loading:    m.inflight > 0,
	}
	for _, col := range Columns {
		cards := m.columns[col.index()]
		view := ColumnView{ID: col, Title: col.Title(), Cards: make([]Card, len(cards))}
		for i := range cards {
			view.Cards[i] = cards[i].clone()
		}
		snap.Columns = append(snap.Columns, view)
	}
	return snap
}

// Column returns the cards of one column of the snapshot.
func (s Snapshot) Column(id ColumnID) []Card {
	for _, c := range s.Columns {
		if c.ID == id {
			return c.Cards
		}
	}
	return nil
}

// TotalCards counts the cards across every column.
func (s Snapshot) TotalCards() int {
	n := 0
	for _, c := range s.Columns {
		n += len(c.Cards)
	}
	return n
}
