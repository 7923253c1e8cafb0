package livecheck

import (
	"context"
	"fmt"

	"github.com/andrewh/weaver/internal/policy"
	"github.com/andrewh/weaver/internal/registry"
)

// Statistics aggregates every sample the pipeline has processed (§4.7).
type Statistics struct {
	TotalEntities     int
	NoAdviceCount     int
	AdvisoriesByLevel map[policy.Level]int
	seenAttributes    map[string]int
	totalAttributes   int
}

// NewStatistics returns an empty Statistics, sized against reg's catalog so
// CoverageRatio has a denominator.
func NewStatistics(reg *registry.ResolvedRegistry) *Statistics {
	total := 0
	if reg != nil {
		total = len(reg.Catalog)
	}
	return &Statistics{
		AdvisoriesByLevel: make(map[policy.Level]int),
		seenAttributes:    make(map[string]int),
		totalAttributes:   total,
	}
}

func (s *Statistics) record(sample *Sample, findings []policy.Finding) {
	s.TotalEntities++
	if sample.Kind == KindAttribute {
		s.seenAttributes[sample.Name]++
	}
	if len(findings) == 0 {
		s.NoAdviceCount++
	}
	for _, f := range findings {
		s.AdvisoriesByLevel[f.Level]++
	}
}

// CoverageRatio is the fraction of the registry's catalog attributes that
// have been seen in at least one processed sample.
func (s *Statistics) CoverageRatio() float64 {
	if s.totalAttributes == 0 {
		return 0
	}
	return float64(len(s.seenAttributes)) / float64(s.totalAttributes)
}

// SeenCount returns how many times name has been observed across every
// attribute sample processed so far.
func (s *Statistics) SeenCount(name string) int { return s.seenAttributes[name] }

// Report is the JSON body returned by the live-check admin /stop endpoint
// and printed as the CLI's final report (§6).
type Report struct {
	TotalEntities     int                  `json:"total_entities"`
	NoAdviceCount     int                  `json:"no_advice_count"`
	AdvisoriesByLevel map[policy.Level]int `json:"advisories_by_level"`
	CoverageRatio     float64              `json:"coverage_ratio"`
}

// HasViolations reports whether any violation-level finding was recorded,
// the signal `registry live-check`'s exit code is keyed off (§6/§7).
func (r Report) HasViolations() bool {
	return r.AdvisoriesByLevel[policy.LevelViolation] > 0
}

// Pipeline runs the live-check match + advisor chain + modifier sequence
// over samples against a single ResolvedRegistry (§4.7).
type Pipeline struct {
	Registry *registry.ResolvedRegistry
	Advisors []Advisor
	Modifier *FindingModifier
	Stats    *Statistics

	attrByName  map[string]*registry.ResolvedAttribute
	groupByName map[string]*registry.ResolvedGroup
}

// NewPipeline builds a Pipeline over reg with the built-in advisor chain
// (plus a RegoAdvisor backed by engine, which may be nil) and an optional
// FindingModifier.
func NewPipeline(reg *registry.ResolvedRegistry, engine *policy.Engine, modifier *FindingModifier) *Pipeline {
	p := &Pipeline{
		Registry:    reg,
		Advisors:    DefaultAdvisors(engine),
		Modifier:    modifier,
		Stats:       NewStatistics(reg),
		attrByName:  make(map[string]*registry.ResolvedAttribute),
		groupByName: make(map[string]*registry.ResolvedGroup),
	}
	for i := range reg.Catalog {
		a := &reg.Catalog[i]
		p.attrByName[a.Name] = a
	}
	for i := range reg.Groups {
		g := &reg.Groups[i]
		key := g.Name
		if key == "" {
			key = g.MetricName
		}
		if key == "" {
			key = g.ID
		}
		p.groupByName[key] = g
	}
	return p
}

// Check matches sample against the registry, runs the advisor chain (for
// attribute samples) or a missing-entity check (for composite samples),
// routes every finding through the Finding Modifier, updates Statistics,
// and recurses into the sample's children.
func (p *Pipeline) Check(ctx context.Context, sample *Sample) error {
	var raw []policy.Finding

	if sample.Kind == KindAttribute {
		attr, matched := p.lookupAttribute(sample)
		if !matched {
			raw = append(raw, policy.Finding{
				ID:      "missing_attribute",
				Level:   policy.LevelViolation,
				Message: fmt.Sprintf("no attribute named %q found in registry", sample.Name),
				Context: map[string]any{"attribute_name": sample.Name},
			})
		} else {
			for _, adv := range p.Advisors {
				findings, err := adv.Advise(ctx, sample, attr)
				if err != nil {
					return fmt.Errorf("advising on attribute %s: %w", sample.Name, err)
				}
				raw = append(raw, findings...)
			}
		}
	} else if sample.Name != "" {
		if _, matched := p.lookupGroup(sample); !matched {
			raw = append(raw, policy.Finding{
				ID:      fmt.Sprintf("missing_%s", sample.Kind),
				Level:   policy.LevelViolation,
				Message: fmt.Sprintf("no %s named %q found in registry", sample.Kind, sample.Name),
				Context: map[string]any{"attribute_name": sample.Name},
			})
		}
	}

	kept := make([]policy.Finding, 0, len(raw))
	for _, f := range raw {
		f.SignalType = string(sample.Kind)
		f.SignalName = sample.Name
		if out, ok := p.Modifier.Apply(f); ok {
			kept = append(kept, out)
		}
	}
	sample.Result = &LiveCheckResult{Findings: kept}
	p.Stats.record(sample, kept)

	for _, child := range sample.Attributes {
		if err := p.Check(ctx, child); err != nil {
			return err
		}
	}
	if sample.Resource != nil {
		if err := p.Check(ctx, sample.Resource); err != nil {
			return err
		}
	}
	return nil
}

// Report snapshots the pipeline's Statistics into the wire-level Report
// shape.
func (p *Pipeline) Report() Report {
	return Report{
		TotalEntities:     p.Stats.TotalEntities,
		NoAdviceCount:     p.Stats.NoAdviceCount,
		AdvisoriesByLevel: p.Stats.AdvisoriesByLevel,
		CoverageRatio:     p.Stats.CoverageRatio(),
	}
}

func (p *Pipeline) lookupAttribute(sample *Sample) (*registry.ResolvedAttribute, bool) {
	if attr, ok := p.attrByName[sample.Name]; ok {
		return attr, true
	}
	// Template-type attributes match by prefix (§4.7).
	for name, attr := range p.attrByName {
		if attr.Type.Kind != "template" {
			continue
		}
		if len(sample.Name) > len(name) && sample.Name[:len(name)+1] == name+"." {
			return attr, true
		}
	}
	return nil, false
}

func (p *Pipeline) lookupGroup(sample *Sample) (*registry.ResolvedGroup, bool) {
	g, ok := p.groupByName[sample.Name]
	return g, ok
}
