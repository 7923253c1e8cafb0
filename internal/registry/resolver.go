package registry

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/andrewh/weaver/internal/semconv"
)

// Options configures a single Resolve call.
type Options struct {
	// IncludeUnreferenced skips Phase D's garbage collection, keeping every
	// interned attribute in the final catalog even if no group references
	// it.
	IncludeUnreferenced bool

	SchemaURL string
	Manifest  semconv.Manifest
}

// workingGroup is the mutable, in-progress form of a Group during Phases
// A–C: same shape as semconv.Group, but its Attributes list is rewritten in
// place as extends and include_groups are folded in.
type workingGroup struct {
	group      semconv.Group
	attributes []semconv.AttributeSpec
	resolved   []AttributeRef
	lineage    map[string]*AttributeLineage
}

// Resolve drives the four-phase resolution described in §4.5 over groups,
// returning the finalized ResolvedRegistry plus any non-fatal diagnostics
// (unresolved refs, duplicate ids, invariant violations). A cyclic extends
// or include_groups graph is a fatal error: resolution cannot proceed at
// all without flattening that graph first.
func Resolve(groups []semconv.Group, opts Options) (*ResolvedRegistry, *multierror.Error, error) {
	var diags *multierror.Error

	sorted := make([]semconv.Group, len(groups))
	copy(sorted, groups)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	working := make(map[string]*workingGroup, len(sorted))
	order := make([]string, 0, len(sorted))
	for _, g := range sorted {
		if _, dup := working[g.ID]; dup {
			diags = multierror.Append(diags, fmt.Errorf("duplicate group id %q", g.ID))
			continue
		}
		wg := &workingGroup{group: g, attributes: append([]semconv.AttributeSpec(nil), g.Attributes...)}
		working[g.ID] = wg
		order = append(order, g.ID)
	}

	if err := flattenExtends(working, order); err != nil {
		return nil, diags, err
	}
	if err := foldIncludes(working, order); err != nil {
		return nil, diags, err
	}

	catalog := NewAttributeCatalog()
	resolveDiags := resolveAttributes(working, order, catalog)
	diags = multierror.Append(diags, resolveDiags.Errors...)

	resolvedGroups := make([]ResolvedGroup, 0, len(order))
	liveRefs := make(map[AttributeRef]bool)
	for _, id := range order {
		wg := working[id]
		rg := ResolvedGroup{
			ID:          wg.group.ID,
			Type:        wg.group.Type,
			DisplayName: wg.group.DisplayName,
			Brief:       wg.group.Brief,
			Note:        wg.group.Note,
			Stability:   wg.group.Stability,
			Deprecated:  wg.group.Deprecated,
			SpanKind:    wg.group.SpanKind,
			MetricName:  wg.group.MetricName,
			Instrument:  wg.group.Instrument,
			Unit:        wg.group.Unit,
			Name:        wg.group.Name,
			Origin:      wg.group.Origin,
			Attributes:  wg.resolved,
			Lineage:     wg.lineage,
		}
		for _, ref := range wg.resolved {
			liveRefs[ref] = true
		}
		resolvedGroups = append(resolvedGroups, rg)
	}

	reg := &ResolvedRegistry{
		FileFormat: CurrentFileFormat,
		SchemaURL:  opts.SchemaURL,
		Manifest:   opts.Manifest,
		Groups:     resolvedGroups,
	}

	if opts.IncludeUnreferenced {
		reg.Catalog = catalog.Attributes()
	} else {
		remap := catalog.GC(liveRefs)
		reg.Catalog = catalog.Attributes()
		for gi := range reg.Groups {
			for ai, ref := range reg.Groups[gi].Attributes {
				reg.Groups[gi].Attributes[ai] = remap[ref]
			}
		}
	}

	if err := validateInvariants(reg); err != nil {
		diags = multierror.Append(diags, err)
	}

	return reg, diags, nil
}

// flattenExtends implements Phase A: topologically sort the extends DAG and,
// for each group in order, inherit its parent's (already-flattened)
// attribute list. A child attribute sharing a parent attribute's id/ref
// overrides the matching fields rather than duplicating the entry.
func flattenExtends(working map[string]*workingGroup, order []string) error {
	visited := make(map[string]int) // 0=unvisited, 1=visiting, 2=done
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		switch visited[id] {
		case 2:
			return nil
		case 1:
			cycle := append(append([]string(nil), path...), id)
			return fmt.Errorf("cyclic extends: %s", joinArrow(cycle))
		}
		wg, ok := working[id]
		if !ok {
			return nil
		}
		visited[id] = 1
		path = append(path, id)

		if wg.group.Extends != "" {
			if err := visit(wg.group.Extends); err != nil {
				return err
			}
			if parent, ok := working[wg.group.Extends]; ok {
				wg.attributes = mergeExtendsAttributes(parent.attributes, wg.attributes)
			}
		}

		path = path[:len(path)-1]
		visited[id] = 2
		return nil
	}

	for _, id := range order {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// mergeExtendsAttributes builds a child's flattened attribute list: every
// parent attribute, with any child attribute sharing its id/ref applied as
// an override on top; child attributes with no matching parent entry are
// appended at the end, first-writer-wins among duplicates in the child's
// own list.
func mergeExtendsAttributes(parent, child []semconv.AttributeSpec) []semconv.AttributeSpec {
	result := append([]semconv.AttributeSpec(nil), parent...)
	index := make(map[string]int, len(result))
	for i, a := range result {
		index[attrKey(a)] = i
	}

	childSeen := make(map[string]bool, len(child))
	for _, c := range child {
		key := attrKey(c)
		if childSeen[key] {
			continue
		}
		childSeen[key] = true
		if i, ok := index[key]; ok {
			result[i] = mergeAttributeOverride(result[i], c)
			continue
		}
		result = append(result, c)
		index[key] = len(result) - 1
	}
	return result
}

func attrKey(a semconv.AttributeSpec) string {
	if a.IsRef() {
		return a.Ref
	}
	return a.ID
}

// mergeAttributeOverride applies override's explicitly-set fields onto
// base, keeping base's value for anything override left unset. This is the
// spec-level analogue of the ref-form field inheritance §4.5 describes for
// the catalog, applied one level earlier during extends flattening.
//
// When override's form (ref vs. id) differs from base's — a child
// extending a parent's id-form attribute with its own ref-form spec, or
// vice versa — override replaces base wholesale instead of merging fields
// onto base's form. A ref-form override must stay ref-form: Phase C only
// performs root lookup and records AttributeLineage for ref-form specs, so
// collapsing it into an id-form spec here would silently skip both.
func mergeAttributeOverride(base, override semconv.AttributeSpec) semconv.AttributeSpec {
	if base.IsRef() != override.IsRef() {
		return override
	}
	merged := base
	if override.Brief != "" {
		merged.Brief = override.Brief
	}
	if override.Note != "" {
		merged.Note = override.Note
	}
	if override.Stability != "" {
		merged.Stability = override.Stability
	}
	if len(override.Examples.Values) > 0 {
		merged.Examples = override.Examples
	}
	if override.Deprecated != nil {
		merged.Deprecated = override.Deprecated
	}
	if override.RequirementLevel.Level != "" {
		merged.RequirementLevel = override.RequirementLevel
	}
	merged.SamplingRelevant = override.SamplingRelevant
	if override.Annotations != nil {
		merged.Annotations = override.Annotations
	}
	return merged
}

// foldIncludes implements Phase B: append each include_groups target's
// current attribute list verbatim (no field override), recursively folding
// in the target's own includes first. Cycles through include_groups are
// fatal.
func foldIncludes(working map[string]*workingGroup, order []string) error {
	state := make(map[string]int) // 0=unvisited, 1=visiting, 2=done
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case 2:
			return nil
		case 1:
			cycle := append(append([]string(nil), path...), id)
			return fmt.Errorf("cyclic include_groups: %s", joinArrow(cycle))
		}
		wg, ok := working[id]
		if !ok {
			return nil
		}
		state[id] = 1
		path = append(path, id)

		for _, includedID := range wg.group.IncludeGroups {
			if err := visit(includedID); err != nil {
				return err
			}
			if included, ok := working[includedID]; ok {
				wg.attributes = append(wg.attributes, included.attributes...)
			}
		}

		path = path[:len(path)-1]
		state[id] = 2
		return nil
	}

	for _, id := range order {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// resolveAttributes implements Phase C: materialize id-form attributes
// first (registering every root in one pass), then resolve ref-form
// attributes to a fixed point, since a prefixed ref synthesizes a new root
// that a later ref may itself target.
func resolveAttributes(working map[string]*workingGroup, order []string, catalog *AttributeCatalog) *multierror.Error {
	var diags *multierror.Error

	for _, id := range order {
		wg := working[id]
		for _, spec := range wg.attributes {
			if spec.IsRef() {
				continue
			}
			resolved := resolvedFromID(spec)
			catalog.RegisterRoot(spec.ID, wg.group.ID, resolved)
		}
	}

	resolvedIdx := make(map[string]map[int]bool, len(order))
	for _, id := range order {
		resolvedIdx[id] = make(map[int]bool)
	}

	for pass := 0; pass < len(order)+2; pass++ {
		newRoots := 0
		for _, id := range order {
			wg := working[id]
			for i, spec := range wg.attributes {
				if !spec.IsRef() {
					if !resolvedIdx[id][i] {
						resolvedIdx[id][i] = true
						attr := resolvedFromID(spec)
						ref := catalog.Intern(attr)
						wg.resolved = append(wg.resolved, ref)
					}
					continue
				}
				if resolvedIdx[id][i] {
					continue
				}

				root, rootGroupID, ok := catalog.RootAttribute(spec.Ref)
				if !ok {
					continue
				}

				name := spec.Ref
				if spec.Prefix {
					name = wg.group.Prefix + "." + spec.Ref
				}

				resolved, lineage := resolveRefAttribute(name, root, spec)
				ref := catalog.Intern(resolved)
				wg.resolved = append(wg.resolved, ref)
				if wg.lineage == nil {
					wg.lineage = make(map[string]*AttributeLineage)
				}
				wg.lineage[name] = lineage
				_ = rootGroupID

				if spec.Prefix {
					catalog.RegisterRoot(name, wg.group.ID, resolved)
					newRoots++
				}
				resolvedIdx[id][i] = true
			}
		}
		if newRoots == 0 {
			break
		}
	}

	for _, id := range order {
		wg := working[id]
		for i, spec := range wg.attributes {
			if spec.IsRef() && !resolvedIdx[id][i] {
				diags = multierror.Append(diags, fmt.Errorf(
					"group %s (%s): unresolved attribute reference %q", wg.group.ID, wg.group.Origin, spec.Ref))
			}
		}
	}

	return diags
}

func resolvedFromID(spec semconv.AttributeSpec) ResolvedAttribute {
	return ResolvedAttribute{
		Name:             spec.ID,
		Type:             spec.Type,
		Brief:            spec.Brief,
		Note:             spec.Note,
		Stability:        spec.Stability,
		Deprecated:       spec.Deprecated,
		Examples:         spec.Examples,
		RequirementLevel: spec.RequirementLevel,
		SamplingRelevant: spec.SamplingRelevant,
		Annotations:      spec.Annotations,
	}
}

// resolveRefAttribute materializes a ref-form AttributeSpec against its
// root attribute: overridden fields (those the spec set explicitly) take
// precedence, unset fields inherit from root. Type always comes from root;
// examples, deprecated status, and annotations come from root unless the
// spec sets its own — grounded on weaver_resolver/src/attribute.rs.
func resolveRefAttribute(name string, root ResolvedAttribute, spec semconv.AttributeSpec) (ResolvedAttribute, *AttributeLineage) {
	lineage := &AttributeLineage{Fields: make(map[string]FieldLineage)}

	resolved := ResolvedAttribute{
		Name:        name,
		Type:        root.Type,
		Annotations: root.Annotations,
		Examples:    root.Examples,
		Deprecated:  root.Deprecated,
	}

	pick := func(field string, overridden bool) bool {
		lineage.Fields[field] = FieldLineage{Inherited: !overridden}
		return overridden
	}

	if pick("brief", spec.HasBrief()) {
		resolved.Brief = spec.Brief
	} else {
		resolved.Brief = root.Brief
	}
	if pick("note", spec.HasNote()) {
		resolved.Note = spec.Note
	} else {
		resolved.Note = root.Note
	}
	if pick("stability", spec.HasStability()) {
		resolved.Stability = spec.Stability
	} else {
		resolved.Stability = root.Stability
	}
	if pick("examples", spec.HasExamples()) {
		resolved.Examples = spec.Examples
	}
	if pick("deprecated", spec.HasDeprecated()) {
		resolved.Deprecated = spec.Deprecated
	}
	if pick("annotations", spec.HasAnnotations()) {
		resolved.Annotations = spec.Annotations
	}

	// RequirementLevel and SamplingRelevant always come from the ref, per
	// §4.5: these describe how this *use* of the attribute is required,
	// not an inherent property of the attribute itself.
	resolved.RequirementLevel = spec.RequirementLevel
	resolved.SamplingRelevant = spec.SamplingRelevant
	lineage.Fields["requirement_level"] = FieldLineage{Inherited: false}
	lineage.Fields["sampling_relevant"] = FieldLineage{Inherited: false}

	return resolved, lineage
}

func joinArrow(ids []string) string {
	out := ids[0]
	for _, id := range ids[1:] {
		out += " → " + id
	}
	return out
}
