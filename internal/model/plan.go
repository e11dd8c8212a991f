package model

// PlanStep is one entry of a candidate plan returned by a plan generator.
// It only becomes a Step when the plan is confirmed.
type PlanStep struct {
	Position         int        `json:"position"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Difficulty       Difficulty `json:"difficulty"`
	EstTimeMinutes   int        `json:"est_time_minutes"`
	Substeps         []string   `json:"substeps"`
	ReflectionPrompt string     `json:"reflection_prompt,omitempty"`
}
