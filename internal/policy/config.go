package policy

import (
	"strings"
)

// Filter kinds. Exactly one of a filter's Secrets/Policies/CVEs lists is
// semantically active, selected by Kind.
const (
	KindSecrets  = "secrets"
	KindPolicies = "policies"
	KindTriaged  = "triaged"
)

// Filter is one suppression rule from the policy config. Pattern is a glob
// matched against component paths according to Matches ("file", "path" or
// "root").
type Filter struct {
	Enabled bool
	Matches string
	Pattern string
	Reason  string
	Kind    string

	Secrets    []string
	Policies   []string
	CVEs       []string
	VEXReasons map[string]string
}

// PolicyConfig is the typed configuration extracted from a policy config file:
// the set of disabled policy ids (entries may themselves be globs) plus the
// ordered list of suppression filters. It is immutable once built and safe to
// share across concurrent FilterPolicies calls.
type PolicyConfig struct {
	DisabledPolicies map[string]struct{}
	Filters          []*Filter
}

// NewPolicyConfig returns an empty configuration that disables nothing and
// suppresses nothing.
func NewPolicyConfig() *PolicyConfig {
	return &PolicyConfig{DisabledPolicies: map[string]struct{}{}}
}

// ParseConfig tokenizes and parses policy config text and extracts the typed
// configuration. The parse is best-effort by design: structurally odd input
// yields a partial (possibly empty) configuration, never an error, so a broken
// config file can only under-suppress findings, not hide the parse failure.
func ParseConfig(text string) *PolicyConfig {
	tokens := Tokenize(text)
	cfg := NewPolicyConfig()

	pos := 0
	for pos < len(tokens) {
		tok := tokens[pos]
		switch {
		case tok == "policies" && pos+1 < len(tokens) && tokens[pos+1] == "{":
			// Nested format: policies { profile "name" { processing { ... } } }
			var block *Block
			block, pos = parseBlock(tokens, pos+1)
			cfg.extractProfiles(block)
		case tok == "processing" && pos+1 < len(tokens) && tokens[pos+1] == "{":
			// Flat format (backwards compat): processing { secrets "*.py" { ... } }
			var block *Block
			block, pos = parseBlock(tokens, pos+1)
			cfg.extractProcessing(block)
		case tok == "overrides" && pos+1 < len(tokens) && tokens[pos+1] == "{":
			var block *Block
			block, pos = parseBlock(tokens, pos+1)
			cfg.extractOverrides(block)
		case pos+1 < len(tokens) && tokens[pos+1] == "{":
			// Unrecognized top-level block: parse to stay aligned, then drop.
			_, pos = parseBlock(tokens, pos+1)
		default:
			pos++
		}
	}

	return cfg
}

// extractProfiles walks policies { profile "<name>" { ... } } blocks. Every
// profile's processing and overrides members contribute to the same
// configuration.
func (c *PolicyConfig) extractProfiles(block *Block) {
	for _, profile := range blockList(block.Values["profile"]) {
		if processing := profile.singleBlock("processing"); processing != nil {
			c.extractProcessing(processing)
		}
		if overrides := profile.singleBlock("overrides"); overrides != nil {
			c.extractOverrides(overrides)
		}
	}
}

// extractProcessing collects filters from a processing block. Two shapes are
// supported and may coexist: the new filter{} form and the legacy labeled
// secrets/policies/triaged "<pattern>" {} form. They stay separate extraction
// paths because their defaulting rules genuinely differ (pattern source,
// blocker gate).
func (c *PolicyConfig) extractProcessing(block *Block) {
	for _, fb := range blockList(block.Values["filter"]) {
		if f := newFilter(fb); f != nil {
			c.Filters = append(c.Filters, f)
		}
	}

	for _, kind := range []string{KindSecrets, KindPolicies, KindTriaged} {
		for _, fb := range blockList(block.Values[kind]) {
			if f := newLegacyFilter(fb, kind); f != nil {
				c.Filters = append(c.Filters, f)
			}
		}
	}
}

// extractOverrides collects disabled policy ids from an overrides block. Only
// an explicit enabled=false disables; a missing enabled key means enabled.
func (c *PolicyConfig) extractOverrides(block *Block) {
	for _, p := range blockList(block.Values["policies"]) {
		if strings.ToLower(p.stringValue("enabled", "true")) != "false" {
			continue
		}
		if p.Label != "" {
			c.DisabledPolicies[p.Label] = struct{}{}
		}
	}
}

// newFilter builds a Filter from the new format:
// filter { pattern "*.py" secrets { ... } }. The kind is inferred from which
// item block is present, checked in secrets, policies, triaged priority order;
// a block naming none of them is not a filter.
func newFilter(b *Block) *Filter {
	var kind string
	switch {
	case b.hasKey(KindSecrets):
		kind = KindSecrets
	case b.hasKey(KindPolicies):
		kind = KindPolicies
	case b.hasKey(KindTriaged):
		kind = KindTriaged
	default:
		return nil
	}

	f := &Filter{
		Enabled:    strings.ToLower(b.stringValue("enabled", "true")) != "false",
		Matches:    b.stringValue("matches", "file"),
		Pattern:    b.stringValue("pattern", "*"),
		Reason:     b.stringValue("reason", ""),
		Kind:       kind,
		VEXReasons: map[string]string{},
	}
	f.populateItems(b)
	return f
}

// newLegacyFilter builds a Filter from the legacy labeled form:
// secrets "<pattern>" { ... }. The block label is the path pattern. A legacy
// policies block is only a suppression filter when it declares blocker=pass;
// the blocker=fail form is the override path, not a filter.
func newLegacyFilter(b *Block, kind string) *Filter {
	if kind == KindPolicies {
		if strings.ToLower(b.stringValue("blocker", "fail")) != "pass" {
			return nil
		}
	}

	pattern := "*"
	if b.Labeled {
		pattern = b.Label
	}

	f := &Filter{
		Enabled:    strings.ToLower(b.stringValue("enabled", "true")) != "false",
		Matches:    b.stringValue("matches", "file"),
		Pattern:    pattern,
		Reason:     b.stringValue("reason", ""),
		Kind:       kind,
		VEXReasons: map[string]string{},
	}
	f.populateItems(b)
	return f
}

// populateItems fills the kind-specific list from the filter's nested item
// block. For triaged filters, CVE ids appear either as bare items or as
// key/value pairs whose value is a VEX justification; an id listed in both
// forms is collected once, keeping the justification.
func (f *Filter) populateItems(b *Block) {
	switch f.Kind {
	case KindSecrets:
		if sb := b.singleBlock(KindSecrets); sb != nil {
			f.Secrets = append(f.Secrets, sb.Items...)
		}
	case KindPolicies:
		if pb := b.singleBlock(KindPolicies); pb != nil {
			f.Policies = append(f.Policies, pb.Items...)
		}
	case KindTriaged:
		tb := b.singleBlock(KindTriaged)
		if tb == nil {
			return
		}
		for _, cve := range tb.Items {
			f.addCVE(cve)
		}
		for key, val := range tb.Values {
			if !strings.HasPrefix(key, "CVE-") {
				continue
			}
			f.addCVE(key)
			if reason, ok := val.(string); ok {
				f.VEXReasons[key] = reason
			}
		}
	}
}

func (f *Filter) addCVE(id string) {
	for _, existing := range f.CVEs {
		if existing == id {
			return
		}
	}
	f.CVEs = append(f.CVEs, id)
}
