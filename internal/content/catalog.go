// Package content holds the static agent catalog and the week-by-week unlock schedule.
package content

import "time"

// MaxWeek is the last week with new content.
const MaxWeek = 4

// Agent is an AI companion unlocked at a given week.
type Agent struct {
	ID          string
	Name        string
	Title       string
	Description string
	Features    []string
	WeekUnlock  int
}

// Week describes what becomes available in a week of the journey.
type Week struct {
	Number   int
	AgentID  string
	Features []string
	Trail    string
}

// Goal is an onboarding objective pointing at the agent that covers it.
type Goal struct {
	ID      string
	Label   string
	AgentID string
}

var agents = []Agent{
	{ID: "lumi", Name: "LUMI", Title: "Attention and Organization", Description: "Focus, ADHD, discipline and routine",
		Features: []string{"Daily planning", "Focus techniques", "Structured routines", "Mental organization"}, WeekUnlock: 1},
	{ID: "auri", Name: "AURI", Title: "Emotional Balance", Description: "Anxiety, crises and guided breathing",
		Features: []string{"Breathing exercises", "Crisis log", "Emotional regulation", "Calming techniques"}, WeekUnlock: 2},
	{ID: "solen", Name: "SOLEN", Title: "Stability", Description: "Mild to moderate bipolarity and mood swings",
		Features: []string{"Mood tracking", "Emotional predictability", "Advanced reports", "Behavior patterns"}, WeekUnlock: 3},
	{ID: "kora", Name: "KORA", Title: "Neurodiversity", Description: "Mild autism, communication and sensory routines",
		Features: []string{"Predictable routines", "Structured communication", "Sensory management", "In-depth content"}, WeekUnlock: 4},
}

var weeks = map[int]Week{
	1: {Number: 1, AgentID: "lumi", Features: []string{"Emotional check-in", "Journal", "Basic exercises"}, Trail: "Organizing a chaotic mind"},
	2: {Number: 2, AgentID: "auri", Features: []string{"Breathing exercises", "Crisis log", "Weekly report"}, Trail: "Balancing emotions"},
	3: {Number: 3, AgentID: "solen", Features: []string{"Advanced reports", "Guided journeys", "AI planning"}, Trail: "Emotional stability"},
	4: {Number: 4, AgentID: "kora", Features: []string{"Full store", "Personalized protocols", "In-depth content"}, Trail: "Conscious neurodiversity"},
}

var goals = []Goal{
	{ID: "focus", Label: "Improve focus and attention", AgentID: "lumi"},
	{ID: "anxiety", Label: "Manage anxiety", AgentID: "auri"},
	{ID: "mood", Label: "Stabilize mood", AgentID: "solen"},
	{ID: "routine", Label: "Build predictable routines", AgentID: "kora"},
	{ID: "organization", Label: "Organize thoughts", AgentID: "lumi"},
	{ID: "emotional", Label: "Regulate emotions", AgentID: "auri"},
}

// Agents returns the agent catalog in unlock order.
func Agents() []Agent {
	out := make([]Agent, len(agents))
	copy(out, agents)
	return out
}

// Goals returns the onboarding goals.
func Goals() []Goal {
	out := make([]Goal, len(goals))
	copy(out, goals)
	return out
}

// IsGoal reports whether id names a known onboarding goal.
func IsGoal(id string) bool {
	for _, g := range goals {
		if g.ID == id {
			return true
		}
	}
	return false
}

// WeekContent returns the content for week n, clamped to the schedule.
func WeekContent(n int) Week {
	return weeks[clampWeek(n)]
}

// CurrentWeek counts whole weeks since start, starting at week 1 and stopping at MaxWeek.
func CurrentWeek(start, now time.Time) int {
	if now.Before(start) {
		return 1
	}
	elapsed := int(now.Sub(start) / (7 * 24 * time.Hour))
	return clampWeek(elapsed + 1)
}

// Unlocked reports whether the agent is available in the given week.
func (a Agent) Unlocked(week int) bool {
	return a.WeekUnlock <= week
}

func clampWeek(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxWeek {
		return MaxWeek
	}
	return n
}
