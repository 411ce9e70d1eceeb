package triage

import "strings"

// Model identifiers known to the tier table.
const (
	ModelSonnet4    = "anthropic.claude-sonnet-4-20250514-v1:0"
	ModelOpus4      = "anthropic.claude-opus-4-20250514-v1:0"
	ModelSonnet37   = "anthropic.claude-3-7-sonnet-20250219-v1:0"
	ModelSonnet35V2 = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	ModelSonnet35   = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	ModelSonnet3    = "anthropic.claude-3-sonnet-20240229-v1:0"
	ModelHaiku3     = "anthropic.claude-3-haiku-20240307-v1:0"
)

// Candidate is one invocation target in the resolved chain. Tier ranks
// are strictly ordered and unique within a resolution.
type Candidate struct {
	Tier    int    // 1 = primary
	Ref     string // model id, or routing profile reference when Profile is true
	Profile bool
}

// tierSet is one region's capability row: primary, secondary and
// fallback model ids in preference order.
type tierSet struct {
	primary   string
	secondary string
	fallback  string
}

// regionTiers is the static per-region capability table. Resolution is a
// pure function over it; it is never mutated after process start.
var regionTiers = map[string]tierSet{
	"us-east-1":      {ModelSonnet4, ModelSonnet37, ModelHaiku3},
	"us-west-2":      {ModelSonnet4, ModelSonnet35V2, ModelHaiku3},
	"eu-west-1":      {ModelSonnet4, ModelSonnet35V2, ModelHaiku3},
	"eu-central-1":   {ModelSonnet37, ModelSonnet35, ModelHaiku3},
	"ap-southeast-1": {ModelSonnet4, ModelSonnet37, ModelHaiku3},
	"ap-northeast-1": {ModelSonnet37, ModelSonnet35V2, ModelHaiku3},
}

// defaultTiers backs any region not present in the table.
var defaultTiers = tierSet{ModelSonnet4, ModelSonnet35V2, ModelHaiku3}

// crossRegionModels lists models that cannot be invoked directly and
// must go through a geography-scoped routing profile.
var crossRegionModels = map[string]bool{
	ModelSonnet4:    true,
	ModelOpus4:      true,
	ModelSonnet37:   true,
	ModelSonnet35V2: true,
}

// profilePrefix maps a region to the geography prefix of its routing
// profiles (us.<model>, eu.<model>, apac.<model>).
func profilePrefix(region string) string {
	switch {
	case strings.HasPrefix(region, "eu-"):
		return "eu"
	case strings.HasPrefix(region, "ap-"):
		return "apac"
	default:
		return "us"
	}
}

// Resolve builds the ordered candidate chain for a region. An explicit
// override yields a single direct candidate and bypasses tiering.
// Resolution is deterministic and side-effect free; the returned list is
// never empty.
func Resolve(region, override string) []Candidate {
	if override != "" {
		return []Candidate{{Tier: 1, Ref: override}}
	}

	tiers, ok := regionTiers[region]
	if !ok {
		tiers = defaultTiers
	}

	prefix := profilePrefix(region)
	out := make([]Candidate, 0, 3)
	for i, model := range []string{tiers.primary, tiers.secondary, tiers.fallback} {
		c := Candidate{Tier: i + 1, Ref: model}
		if crossRegionModels[model] {
			c.Ref = prefix + "." + model
			c.Profile = true
		}
		out = append(out, c)
	}
	return out
}
