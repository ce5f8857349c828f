package orchestrator

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/dusk-indust/roleflow/internal/role"
)

// patternBonus is added to a role's score when the task text matches one of
// the role's pattern-class signals.
const patternBonus = 2.0

// keywordCap limits how many occurrences of a single phrase are counted, so
// repetition cannot dominate the score.
const keywordCap = 3

// prefixRe matches one leading explicit role token, e.g. "@architect".
var prefixRe = regexp.MustCompile(`^@([a-z][a-z0-9-]*)\s*`)

// classSignals maps each pattern class to the signal expressions that earn
// the pattern bonus. Signals are deliberately coarse: classification uses
// deterministic surface patterns only, never free-text understanding.
var classSignals = map[role.PatternClass][]*regexp.Regexp{
	role.ClassWhatToBuild: {
		regexp.MustCompile(`(?i)\bwhat should\b`),
		regexp.MustCompile(`(?i)\bwe need (a|an|to)\b`),
		regexp.MustCompile(`(?i)\bas a user\b`),
		regexp.MustCompile(`(?i)\bfeature request\b`),
	},
	role.ClassHowStructured: {
		regexp.MustCompile(`(?i)\bdesign the\b`),
		regexp.MustCompile(`(?i)\bhow (is|should) .+ structured\b`),
		regexp.MustCompile(`(?i)\bwhat architecture\b`),
		regexp.MustCompile(`(?i)\brestructure\b`),
	},
	role.ClassWhoDeliversWhen: {
		regexp.MustCompile(`(?i)\bplan the\b`),
		regexp.MustCompile(`(?i)\bwhen (can|will|do) we\b`),
		regexp.MustCompile(`(?i)\bwho (will|should) deliver\b`),
		regexp.MustCompile(`(?i)\bship (it|this|by)\b`),
	},
	role.ClassHowToMakeWork: {
		regexp.MustCompile(`(?i)\bfix\b`),
		regexp.MustCompile(`(?i)\bdoesn't work\b`),
		regexp.MustCompile(`(?i)\bbroken\b`),
		regexp.MustCompile(`(?i)\bimplement\b`),
		regexp.MustCompile(`(?i)\bwhy is .+ failing\b`),
	},
}

// Router scores task text against the active roles and selects the
// activation set. It holds no mutable state; classification of the same
// request against the same view is idempotent.
type Router struct {
	view      *role.ActiveView
	threshold float64
	logger    *zap.Logger
}

// NewRouter creates a Router over the post-absorption role view. threshold
// is the activation ratio relative to the maximum score.
func NewRouter(view *role.ActiveView, threshold float64, logger *zap.Logger) *Router {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultOptions().Threshold
	}
	return &Router{view: view, threshold: threshold, logger: logger}
}

// SplitPrefix separates leading explicit @role tokens from the task body.
func SplitPrefix(text string) (ids []string, rest string) {
	rest = strings.TrimSpace(text)
	for {
		m := prefixRe.FindStringSubmatch(rest)
		if m == nil {
			return ids, rest
		}
		ids = append(ids, m[1])
		rest = rest[len(m[0]):]
	}
}

// Classify produces one ActivationDecision per active role, in pipeline
// order. A zero-signal task yields *ActivationAmbiguityError unless the
// request accepts defaults.
func (r *Router) Classify(req TaskRequest) ([]ActivationDecision, error) {
	prefixIDs, body := SplitPrefix(req.Text)

	if len(prefixIDs) > 0 {
		return r.classifyPrefix(prefixIDs)
	}

	if body == "" {
		return r.ambiguity(req)
	}

	text := strings.ToLower(body)

	type scored struct {
		total  float64
		native float64 // matches from the role's own vocabulary only
	}
	scores := make(map[role.ID]scored)
	max := 0.0

	for _, ar := range r.view.Roles() {
		var s scored
		for _, kw := range ar.Triggers {
			n := countPhrase(text, kw.Phrase)
			s.total += float64(n)
			if kw.Origin == ar.ID {
				s.native += float64(n)
			}
		}
		if matchesClass(body, ar.Class) {
			s.total += patternBonus
			s.native += patternBonus
		}
		scores[ar.ID] = s
		if s.total > max {
			max = s.total
		}
	}

	if max == 0 {
		return r.ambiguity(req)
	}

	cut := r.threshold * max
	var decisions []ActivationDecision
	for _, ar := range r.view.Roles() {
		s := scores[ar.ID]
		d := ActivationDecision{Role: ar.ID, Score: s.total}
		if s.total >= cut {
			d.Activated = true
			d.Reason = ReasonScored
			// The activation rests on inherited vocabulary when the role's
			// own signal alone would not have cleared the threshold.
			if s.native < cut {
				d.Reason = ReasonAbsorbed
			}
		}
		decisions = append(decisions, d)
	}

	r.logger.Debug("classified task",
		zap.Float64("max", max),
		zap.Float64("cut", cut),
		zap.Int("activated", countActivated(decisions)))

	return decisions, nil
}

// classifyPrefix activates exactly the named roles, resolving disabled ids
// through absorption. Scoring is skipped entirely.
func (r *Router) classifyPrefix(ids []string) ([]ActivationDecision, error) {
	reasons := make(map[role.ID]ActivationReason)
	for _, raw := range ids {
		id := role.ID(raw)
		target, ok := r.view.Resolve(id)
		if !ok {
			return nil, fmt.Errorf("router: unknown role %q in task prefix", raw)
		}
		reason := ReasonExplicitPrefix
		if target.ID != id {
			reason = ReasonAbsorbed
		}
		// explicit-prefix outranks absorbed when both name the same role.
		if prev, seen := reasons[target.ID]; !seen || prev == ReasonAbsorbed {
			reasons[target.ID] = reason
		}
	}

	var decisions []ActivationDecision
	for _, ar := range r.view.Roles() {
		d := ActivationDecision{Role: ar.ID}
		if reason, ok := reasons[ar.ID]; ok {
			d.Activated = true
			d.Reason = reason
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}

// ambiguity handles zero-signal tasks: halt with the plausible focus areas,
// or route to the implementation role when the requester accepted defaults.
func (r *Router) ambiguity(req TaskRequest) ([]ActivationDecision, error) {
	if req.AcceptDefaults {
		impl := r.view.Implementation()
		var decisions []ActivationDecision
		for _, ar := range r.view.Roles() {
			d := ActivationDecision{Role: ar.ID}
			if ar.ID == impl.ID {
				d.Activated = true
				d.Reason = ReasonAcceptedDefaults
			}
			decisions = append(decisions, d)
		}
		return decisions, nil
	}

	var areas []string
	for _, ar := range r.view.Roles() {
		areas = append(areas, ar.Focus)
	}
	return nil, &ActivationAmbiguityError{FocusAreas: areas}
}

// Activated filters decisions down to the activated roles, pipeline order
// preserved.
func (r *Router) Activated(decisions []ActivationDecision) []role.ActiveRole {
	var out []role.ActiveRole
	for _, d := range decisions {
		if !d.Activated {
			continue
		}
		if ar, ok := r.view.Lookup(d.Role); ok {
			out = append(out, ar)
		}
	}
	return out
}

// countPhrase counts token-boundary occurrences of phrase in text, capped.
// Both arguments are compared case-insensitively; text must already be
// lowercased by the caller.
func countPhrase(text, phrase string) int {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return 0
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
	if err != nil {
		return 0
	}
	n := len(re.FindAllStringIndex(text, keywordCap+1))
	if n > keywordCap {
		n = keywordCap
	}
	return n
}

// matchesClass reports whether any signal of the class fires on the text.
func matchesClass(text string, class role.PatternClass) bool {
	for _, re := range classSignals[class] {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func countActivated(decisions []ActivationDecision) int {
	n := 0
	for _, d := range decisions {
		if d.Activated {
			n++
		}
	}
	return n
}
