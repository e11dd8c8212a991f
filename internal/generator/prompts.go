package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

const planSystemPrompt = `You are LifeQuest AI, an assistant that turns personal goals into clear, linear quests. You ALWAYS respond with pure JSON only, no explanations or extra text.

RULES:
- Each step must be a concrete, highly specific physical or digital ACTION the user can perform.
- Each step must clearly state WHERE and HOW to do it.
- The steps MUST be executable in 25-90 minutes.
- Avoid vague verbs.
- For steps where the user learns something, faces difficulty, makes a decision, or might change strategy, write reflection_prompt as a single, concrete question that helps the user extract value from that action.
- For trivial or purely mechanical steps (e.g. 'open VS Code', 'create folder', 'install tool'), set reflection_prompt = null.

Output strictly JSON of actionable checkpoints.`

const planUserTemplate = `Turn the following goal into a sequence of as many extremely actionable steps as needed to fully complete the goal.
This may be anywhere from 10 to 50 steps depending on complexity.
Do not combine multiple actions into one step. Every step must be a standalone action.

Goal title: %q
Goal description: %q

Each step MUST contain:
- title
- description
- position (integer, strictly sequential)
- difficulty ("easy" | "medium" | "hard")
- est_time_minutes
- substeps: 6-12 atomic micro-actions written as short commands
- reflection_prompt: a single, specific reflection question, or null

SUBSTEP RULES:
- Tell the user exactly what to do, without needing to think
- Include websites, apps, example search text, folder names, numbers and targets
- Break actions down into individual clicks / searches / typing
- Avoid generic verbs like "prepare", "research", "look into", "improve", "practice", "review"

SYSTEM RULES:
- Each step must be a concrete actionable task the user can perform
- No vague tasks
- No planning steps like "break into milestones"
%s
Respond ONLY with a JSON array of steps.
The response MUST begin with '[' and end with ']'.
Do NOT include any explanation, commentary, or markdown fences.`

const summarySystemPrompt = `You are a motivational reflection coach summarizing a completed goal.
Write a warm, natural 3-6 sentence summary.
- Do NOT list steps or bullets.
- Do NOT enumerate actions one by one.
Blend:
- celebration of completion
- the essence of what was accomplished overall
- themes from reflections, without quoting the user verbatim
End by gently encouraging momentum into the next quest.`

func planUserPrompt(req PlanRequest) string {
	previous := ""
	if len(req.Previous) > 0 {
		titles := make([]string, 0, len(req.Previous))
		for _, s := range req.Previous {
			titles = append(titles, s.Title)
		}
		b, _ := json.Marshal(titles)
		previous = fmt.Sprintf("\nThe user rejected a previous plan with these step titles, so propose a different approach:\n%s\n", b)
	}
	return fmt.Sprintf(planUserTemplate, strings.TrimSpace(req.Title), strings.TrimSpace(req.Description), previous)
}

func summaryUserPrompt(req SummaryRequest) string {
	titles, reflections := summarySnippets(req.Steps)
	t, _ := json.Marshal(titles)
	r, _ := json.Marshal(reflections)

	title, description := "", ""
	if req.Goal != nil {
		title = req.Goal.Title
		if req.Goal.Description != nil {
			description = *req.Goal.Description
		}
	}

	return fmt.Sprintf(`Goal title: %s
Goal description: %s

Step titles (context only, NOT for output):
%s

Reflection themes (NOT quotes, just rough ideas):
%s`, title, description, t, r)
}
