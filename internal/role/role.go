// Package role defines the static registry of perspectives that can
// contribute to a task: their trigger vocabulary, pipeline order, owned
// conflict dimensions, and the fallback graph used when a role is disabled.
package role

// ID identifies a role.
type ID string

const (
	Product   ID = "product"
	Architect ID = "architect"
	Engineer  ID = "engineer"
	Delivery  ID = "delivery"
)

// PatternClass is the coarse task-shape a role responds to. Every role maps
// to exactly one class.
type PatternClass string

const (
	ClassWhatToBuild     PatternClass = "what-to-build"
	ClassHowStructured   PatternClass = "how-it's-structured"
	ClassWhoDeliversWhen PatternClass = "who-delivers-when"
	ClassHowToMakeWork   PatternClass = "how-to-make-it-work"
)

// Role is one row of the registry. Loaded once, immutable afterwards.
type Role struct {
	ID       ID
	Focus    string // short human label, used in disambiguation prompts
	Position int    // pipeline order, ascending
	Class    PatternClass

	// Keywords is the trigger vocabulary. Entries may be multi-word phrases;
	// matching is case-insensitive on token boundaries.
	Keywords []string

	// Owns lists the conflict dimensions this role is authorized to decide.
	Owns []string

	// Fallback is the role that absorbs this role's responsibilities when it
	// is disabled by project configuration.
	Fallback ID

	// Implementation marks roles capable of implementation-level output.
	// At least one such role must remain enabled.
	Implementation bool

	// RefModules names the reference modules this role consults. The core
	// only passes these identifiers through to the step producer.
	RefModules []string
}

// Builtin returns the built-in role table. The slice is freshly allocated on
// each call so callers cannot mutate the canonical definition.
func Builtin() []Role {
	return []Role{
		{
			ID:       Product,
			Focus:    "requirements and scope",
			Position: 1,
			Class:    ClassWhatToBuild,
			Keywords: []string{
				"requirement", "requirements", "user story", "feature", "scope",
				"acceptance criteria", "persona", "mvp", "use case", "stakeholder",
			},
			Owns:       []string{"scope", "acceptance-criteria"},
			Fallback:   Architect,
			RefModules: []string{"product-discovery", "requirements-writing"},
		},
		{
			ID:       Architect,
			Focus:    "system design and structure",
			Position: 2,
			Class:    ClassHowStructured,
			Keywords: []string{
				"design", "architecture", "schema", "api", "interface", "component",
				"data model", "event", "boundary", "contract", "migration", "topology",
			},
			Owns:       []string{"system-design", "data-model", "api-contract"},
			Fallback:   Engineer,
			RefModules: []string{"architecture-patterns", "data-modeling"},
		},
		{
			ID:       Engineer,
			Focus:    "implementation and debugging",
			Position: 3,
			Class:    ClassHowToMakeWork,
			Keywords: []string{
				"fix", "bug", "implement", "refactor", "test", "error", "crash",
				"null pointer", "handler", "debug", "code", "function", "regression",
			},
			Owns:           []string{"implementation", "testing-approach"},
			Fallback:       Architect,
			Implementation: true,
			RefModules:     []string{"coding-standards", "debugging-playbook"},
		},
		{
			ID:       Delivery,
			Focus:    "delivery planning and rollout",
			Position: 4,
			Class:    ClassWhoDeliversWhen,
			Keywords: []string{
				"plan", "rollout", "milestone", "deadline", "release", "timeline",
				"sprint", "sequencing", "launch", "phase", "deliverable",
			},
			Owns:       []string{"rollout-risk", "sequencing", "timeline"},
			Fallback:   Engineer,
			RefModules: []string{"release-management", "risk-assessment"},
		},
	}
}
