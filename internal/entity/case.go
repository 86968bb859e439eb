package entity

// Case owns the ordered docketing collections for one matter.
// Children are appended in creation order and never removed during a run.
type Case struct {
	ID                string      `json:"case_id"`
	Jurisdiction      string      `json:"jurisdiction"`
	ApplicationNumber *string     `json:"application_number"`
	FilingDate        *Date       `json:"filing_date"`
	Documents         []*Document `json:"documents"`
	Events            []*Event    `json:"events"`
	Deadlines         []*Deadline `json:"deadlines"`
	Tasks             []*Task     `json:"tasks"`
}

func (c *Case) AddDocument(d *Document) {
	c.Documents = append(c.Documents, d)
}

func (c *Case) AddEvent(e *Event) {
	c.Events = append(c.Events, e)
}

func (c *Case) AddDeadline(d *Deadline) {
	c.Deadlines = append(c.Deadlines, d)
}

func (c *Case) AddTask(t *Task) {
	c.Tasks = append(c.Tasks, t)
}

// DocumentByID looks a child document up by its back-reference id.
func (c *Case) DocumentByID(id string) *Document {
	for _, d := range c.Documents {
		if d.ID == id {
			return d
		}
	}
	return nil
}
