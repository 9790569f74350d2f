package schedule

// Dump is the JSON document the task dumper writes for a schedule file.
// Any field may be absent or null; Adapt resolves the defaults.
type Dump struct {
	Properties *DumpProperties `json:"properties"`
	Tasks      []*DumpTask     `json:"tasks"`
	Resources  []*DumpResource `json:"resources"`
}

type DumpProperties struct {
	ProjectTitle string `json:"project_title"`
	Manager      string `json:"manager"`
	StartDate    string `json:"start_date"`
	FinishDate   string `json:"finish_date"`
}

// DumpDuration mirrors the reader's duration: an amount, a unit symbol
// ("eh", "d", "w", ...) and its string form ("40.0eh").
type DumpDuration struct {
	Value *float64 `json:"value"`
	Units string   `json:"units"`
	Text  string   `json:"text"`
}

type DumpRelation struct {
	PredecessorID *int          `json:"predecessor_id"`
	Type          string        `json:"type"`
	Lag           *DumpDuration `json:"lag"`
}

type DumpTask struct {
	ID              *int            `json:"id"`
	UniqueID        *int            `json:"unique_id"`
	WBS             string          `json:"wbs"`
	Name            string          `json:"name"`
	Duration        *DumpDuration   `json:"duration"`
	Start           string          `json:"start"`
	Finish          string          `json:"finish"`
	PercentComplete *float64        `json:"percent_complete"`
	Predecessors    []*DumpRelation `json:"predecessors"`
	ResourceNames   string          `json:"resource_names"`
	Cost            *float64        `json:"cost"`
	Work            string          `json:"work"`
	Critical        *bool           `json:"critical"`
	Milestone       *bool           `json:"milestone"`
	Summary         *bool           `json:"summary"`
	Notes           string          `json:"notes"`
	OutlineLevel    *int            `json:"outline_level"`
}

type DumpResource struct {
	ID           *int     `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Cost         *float64 `json:"cost"`
	StandardRate string   `json:"standard_rate"`
	MaxUnits     *float64 `json:"max_units"`
}
