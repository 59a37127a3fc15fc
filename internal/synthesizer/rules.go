package synthesizer

import (
	"regexp"

	"github.com/ivlev/script2video/internal/blueprint"
)

// actorRule maps an entity noun to the primitive it renders as. The
// table is evaluated in declaration order against the scene text, so
// two runs over the same text always yield the same element set.
type actorRule struct {
	keyword  string
	elemType blueprint.ElementType
	re       *regexp.Regexp
}

func newActorRule(keyword string, elemType blueprint.ElementType) actorRule {
	return actorRule{
		keyword:  keyword,
		elemType: elemType,
		re:       regexp.MustCompile(`\b` + keyword + `s?\b`),
	}
}

// actorRules lists the entity nouns technical narrations revolve around.
// Boxes for components, circles for the things that move between them,
// icons for ambient infrastructure.
var actorRules = []actorRule{
	newActorRule("client", blueprint.TypeBox),
	newActorRule("server", blueprint.TypeBox),
	newActorRule("database", blueprint.TypeBox),
	newActorRule("user", blueprint.TypeBox),
	newActorRule("browser", blueprint.TypeBox),
	newActorRule("api", blueprint.TypeBox),
	newActorRule("service", blueprint.TypeBox),
	newActorRule("cache", blueprint.TypeBox),
	newActorRule("queue", blueprint.TypeBox),
	newActorRule("proxy", blueprint.TypeBox),
	newActorRule("gateway", blueprint.TypeBox),
	newActorRule("worker", blueprint.TypeBox),
	newActorRule("application", blueprint.TypeBox),
	newActorRule("scheduler", blueprint.TypeBox),
	newActorRule("node", blueprint.TypeCircle),
	newActorRule("process", blueprint.TypeCircle),
	newActorRule("packet", blueprint.TypeCircle),
	newActorRule("token", blueprint.TypeCircle),
	newActorRule("cloud", blueprint.TypeIcon),
	newActorRule("internet", blueprint.TypeIcon),
	newActorRule("network", blueprint.TypeIcon),
}

// relationRules match directional phrases that become arrows between the
// two most recently declared actors. Evaluated in order after a shared
// scan, ties broken by table position.
var relationRules = []*regexp.Regexp{
	regexp.MustCompile(`\bsends?\b(?:[a-z0-9 ,]{0,40}?\bto\b)?`),
	regexp.MustCompile(`\bflows? to\b`),
	regexp.MustCompile(`\bconnects? to\b`),
	regexp.MustCompile(`\bforwards?\b(?:[a-z0-9 ,]{0,40}?\bto\b)?`),
	regexp.MustCompile(`\brequests?\b`),
	regexp.MustCompile(`\bresponds?\b`),
	regexp.MustCompile(`\breturns?\b`),
	regexp.MustCompile(`\bquer(?:y|ies)\b`),
	regexp.MustCompile(`\bwrites? to\b`),
	regexp.MustCompile(`\breads? from\b`),
	regexp.MustCompile(`->`),
}

// emphasisRule pulls quoted or starred phrases out as annotation labels.
var emphasisRule = regexp.MustCompile(`"([^"\n]{2,60})"|\*([^*\n]{2,60})\*`)
