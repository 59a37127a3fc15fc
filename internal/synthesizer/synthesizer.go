package synthesizer

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ivlev/script2video/internal/blueprint"
	"github.com/ivlev/script2video/internal/script"
	"github.com/ivlev/script2video/internal/style"
)

// maxTitleLen bounds the leading narration slice used as a scene title.
const maxTitleLen = 50

// Synthesizer derives the visual element set of a scene from its text.
// Extraction is table-driven and deterministic: identical text always
// yields the same elements in the same order. Position, size and timing
// are left for the downstream stages.
type Synthesizer struct {
	style *style.StyleProfile
}

// New creates a Synthesizer bound to a resolved style profile.
func New(profile *style.StyleProfile) *Synthesizer {
	return &Synthesizer{style: profile}
}

// Synthesize extracts the ordered element list for one scene.
//
// Extraction that fails on malformed text is retried once after
// normalizing whitespace and punctuation; a second failure falls back
// to a minimal single-element scene. Returned warnings describe any
// degradation; a bad scene never aborts the script.
func (s *Synthesizer) Synthesize(sc script.Scene) ([]blueprint.VisualElement, []string) {
	var warnings []string

	text := sc.VisualDescription + " " + sc.Narration

	elements, err := s.extract(text, sc.Narration)
	if err != nil {
		elements, err = s.extract(normalize(text), normalize(sc.Narration))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("scene %d: extraction failed after retry: %v", sc.ID, err))
			return []blueprint.VisualElement{s.fallbackElement(sc.Narration)}, warnings
		}
		warnings = append(warnings, fmt.Sprintf("scene %d: extraction recovered after normalization", sc.ID))
	}

	if !hasActors(elements) {
		return []blueprint.VisualElement{s.fallbackElement(sc.Narration)}, warnings
	}
	return elements, warnings
}

// event is a single rule hit positioned within the scanned text.
type event struct {
	start, end int
	rank       int // table position, breaks offset ties
	kind       int // 0 actor, 1 relation, 2 emphasis
	actorType  blueprint.ElementType
	label      string
}

func (s *Synthesizer) extract(text, narration string) ([]blueprint.VisualElement, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("text is not valid UTF-8")
	}

	lower := lowerASCII(text)
	var events []event

	// Actors: first occurrence per keyword only.
	for rank, rule := range actorRules {
		loc := rule.re.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		events = append(events, event{
			start:     loc[0],
			end:       loc[1],
			rank:      rank,
			kind:      0,
			actorType: rule.elemType,
			label:     capitalize(rule.keyword),
		})
	}

	// Relations: all occurrences, overlapping matches collapse into the
	// earliest (longest-pattern-first by table order).
	var relations []event
	for rank, re := range relationRules {
		for _, loc := range re.FindAllStringIndex(lower, -1) {
			relations = append(relations, event{start: loc[0], end: loc[1], rank: rank, kind: 1})
		}
	}
	sort.SliceStable(relations, func(i, j int) bool {
		if relations[i].start != relations[j].start {
			return relations[i].start < relations[j].start
		}
		return relations[i].rank < relations[j].rank
	})
	lastEnd := -1
	for _, rel := range relations {
		if rel.start < lastEnd {
			continue
		}
		lastEnd = rel.end
		events = append(events, rel)
	}

	// Emphasis markers become annotation labels.
	for _, m := range emphasisRule.FindAllStringSubmatchIndex(text, -1) {
		label := submatch(text, m, 1)
		if label == "" {
			label = submatch(text, m, 2)
		}
		events = append(events, event{start: m[0], end: m[1], kind: 2, label: label})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].start != events[j].start {
			return events[i].start < events[j].start
		}
		if events[i].kind != events[j].kind {
			return events[i].kind < events[j].kind
		}
		return events[i].rank < events[j].rank
	})

	return s.assemble(events, narration), nil
}

// assemble turns the ordered event stream into elements. Arrows bind the
// two most recently declared actors; a relation seen before two actors
// exist is bound to the first two actors once the scan completes.
func (s *Synthesizer) assemble(events []event, narration string) []blueprint.VisualElement {
	var elements []blueprint.VisualElement
	var actorIDs []string
	seenPairs := map[string]bool{}
	counter := 0

	nextID := func() string {
		id := fmt.Sprintf("elem_%d", counter)
		counter++
		return id
	}

	for _, ev := range events {
		switch ev.kind {
		case 0:
			el := blueprint.VisualElement{
				ID:    nextID(),
				Type:  ev.actorType,
				Role:  blueprint.RoleActor,
				Label: ev.label,
				Color: s.style.ColorFor(string(ev.actorType)),
			}
			elements = append(elements, el)
			actorIDs = append(actorIDs, el.ID)
		case 1:
			el := blueprint.VisualElement{
				ID:    nextID(),
				Type:  blueprint.TypeArrow,
				Role:  blueprint.RoleDataFlow,
				Color: s.style.ColorFor("arrow"),
			}
			if len(actorIDs) >= 2 {
				el.From = actorIDs[len(actorIDs)-2]
				el.To = actorIDs[len(actorIDs)-1]
				if seenPairs[el.From+">"+el.To] {
					continue
				}
				seenPairs[el.From+">"+el.To] = true
			}
			elements = append(elements, el)
		case 2:
			elements = append(elements, blueprint.VisualElement{
				ID:    nextID(),
				Type:  blueprint.TypeTextLabel,
				Role:  blueprint.RoleAnnotation,
				Label: ev.label,
				Color: s.style.ColorFor("text_label"),
			})
		}
	}

	// Resolve relations that appeared before their endpoints.
	kept := elements[:0]
	for _, el := range elements {
		if el.Type == blueprint.TypeArrow && el.From == "" {
			if len(actorIDs) >= 2 && !seenPairs[actorIDs[0]+">"+actorIDs[1]] {
				el.From = actorIDs[0]
				el.To = actorIDs[1]
				seenPairs[el.From+">"+el.To] = true
			} else {
				continue
			}
		}
		kept = append(kept, el)
	}
	elements = kept

	if len(elements) == 0 {
		return nil
	}

	// Every scene opens with a title label cut from the narration,
	// rendered in the top margin band.
	title := blueprint.VisualElement{
		ID:    "title_text",
		Type:  blueprint.TypeTextLabel,
		Role:  blueprint.RoleAnnotation,
		Label: truncate(strings.TrimSpace(narration), maxTitleLen),
		Color: s.style.ColorFor("text_label"),
	}
	return append([]blueprint.VisualElement{title}, elements...)
}

// fallbackElement is the minimal scene: one generic box labelled with
// the narration's leading words, so no scene ever renders empty.
func (s *Synthesizer) fallbackElement(narration string) blueprint.VisualElement {
	return blueprint.VisualElement{
		ID:    "elem_0",
		Type:  blueprint.TypeBox,
		Role:  blueprint.RoleActor,
		Label: leadingWords(narration, 5),
		Color: s.style.ColorFor("box"),
	}
}

func hasActors(elements []blueprint.VisualElement) bool {
	for i := range elements {
		if elements[i].Role == blueprint.RoleActor {
			return true
		}
	}
	return false
}

// normalize strips control characters, repairs invalid UTF-8 and
// collapses whitespace runs, giving malformed text a second chance.
func normalize(text string) string {
	text = strings.ToValidUTF8(text, " ")
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)
	return strings.Join(strings.Fields(text), " ")
}

// lowerASCII folds A-Z only, leaving every byte offset identical to the
// source text. Rule keywords are ASCII, and emphasis matches against the
// original text; both coordinate spaces stay aligned.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	cut := s[:n]
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

func leadingWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	if len(words) == 0 {
		return "Scene"
	}
	return strings.Join(words, " ")
}

func submatch(text string, m []int, group int) string {
	if 2*group+1 >= len(m) || m[2*group] < 0 {
		return ""
	}
	return text[m[2*group]:m[2*group+1]]
}
