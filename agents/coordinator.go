// Package agents contains the concrete team: the routing coordinators and
// the worker agents for weather, stays and day planning.
package agents

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/trailnote/organizer"
)

// Intent keyword sets, matched against lowercased, diacritic-folded text so
// "pogoda" also matches sloppy input like "pogóda".
var (
	weatherKeywords = []string{"pogoda", "prognoza", "temperatura", "pada", "wiatr", "wialo", "pochmurnie"}
	staysKeywords   = []string{"nocleg", "hotel", "apartament", "mieszkanie", "zostan", "stay"}
	planKeywords    = []string{"zaplanuj", "plan", "itinerarz", "zorganizuj", "dzien", "czas"}
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldText lowercases and strips combining marks, so Polish diacritics
// compare equal to their ASCII base letters.
func foldText(s string) string {
	folded, _, err := transform.String(foldTransformer, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

func matchesAny(folded string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}

// Coordinator is the deterministic routing coordinator. The contract is the
// same as for an LLM-backed one: it returns a JSON-shaped decision.
type Coordinator struct {
	name string
}

var _ organizer.Coordinator = (*Coordinator)(nil)

// NewCoordinator builds the heuristic coordinator under the default name
// "coordinator".
func NewCoordinator() *Coordinator {
	return &Coordinator{name: "coordinator"}
}

func (c *Coordinator) Name() string { return c.name }

func (c *Coordinator) Description() string {
	return "routes user requests to the weather, stays or planner agent"
}

// Handle exists to satisfy the Agent interface; the coordinator never
// answers the user directly.
func (c *Coordinator) Handle(ctx context.Context, msg organizer.Message) (organizer.AgentResult, error) {
	return organizer.ReplyResult(
		organizer.NewMessage(c.name, "Coordinator does not respond directly."),
	), nil
}

// Decide classifies the user text into an intent and routes to the matching
// capability. Without a match it prefers the planner, then the first
// registered agent.
func (c *Coordinator) Decide(ctx context.Context, userGoal string, teamCtx organizer.TeamMemoryContext, agents []organizer.AgentCapability) (organizer.CoordinatorDecision, error) {
	text := strings.TrimSpace(userGoal)
	low := strings.ToLower(text)
	folded := foldText(text)

	if low == "exit" || low == "quit" || strings.HasPrefix(low, "koniec") {
		return organizer.CoordinatorDecision{
			NextAgent:      c.name,
			Task:           "Stop conversation",
			ExpectedOutput: "No further action",
			Stop:           true,
		}, nil
	}

	available := make(map[string]bool, len(agents))
	for _, a := range agents {
		available[a.Name] = true
	}

	if matchesAny(folded, weatherKeywords) && available["weather"] {
		return organizer.CoordinatorDecision{
			NextAgent:      "weather",
			Task:           "Odpowiedz na pytanie pogodowe: " + text,
			ExpectedOutput: "Krótka prognoza i uzasadnienie (miasto/dzień/warunki).",
			NeededTools:    []string{"weather_tool"},
		}, nil
	}

	if matchesAny(folded, staysKeywords) && available["stays"] {
		return organizer.CoordinatorDecision{
			NextAgent:      "stays",
			Task:           "Pomóż znaleźć nocleg / opcje zakwaterowania: " + text,
			ExpectedOutput: "Lista opcji + krótkie uzasadnienie wyboru.",
			NeededTools:    []string{"housing_tool"},
		}, nil
	}

	if matchesAny(folded, planKeywords) && available["planner"] {
		return organizer.CoordinatorDecision{
			NextAgent:      "planner",
			Task:           "Zaplanuj aktywności: " + text,
			ExpectedOutput: "Proponowany plan dnia + punkty + warunki pogodowe jeśli istotne.",
			NeededTools:    []string{"events_tool", "weather_tool"},
		}, nil
	}

	if available["planner"] {
		return organizer.CoordinatorDecision{
			NextAgent:      "planner",
			Task:           "Spróbuj zinterpretować intencję i pomóc: " + text,
			ExpectedOutput: "Zwięzła odpowiedź + ewentualne pytanie doprecyzowujące.",
		}, nil
	}

	if len(agents) == 0 {
		return organizer.CoordinatorDecision{}, fmt.Errorf("%w: no agents registered", organizer.ErrNoRoute)
	}
	return organizer.CoordinatorDecision{
		NextAgent:      agents[0].Name,
		Task:           "Odpowiedz najlepiej jak potrafisz: " + text,
		ExpectedOutput: "Odpowiedź zgodna z kompetencjami.",
	}, nil
}
