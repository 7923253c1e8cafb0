package registry

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/andrewh/weaver/internal/semconv"
)

// validateInvariants checks a finalized ResolvedRegistry against the
// structural invariants in §4.6 (I1–I7), returning every violation found
// rather than stopping at the first.
func validateInvariants(reg *ResolvedRegistry) error {
	var errs *multierror.Error

	seenGroupIDs := make(map[string]bool, len(reg.Groups))
	for _, g := range reg.Groups {
		// I1: every AttributeRef a group holds must index into the catalog.
		for _, ref := range g.Attributes {
			if int(ref) < 0 || int(ref) >= len(reg.Catalog) {
				errs = multierror.Append(errs, fmt.Errorf(
					"group %s: attribute ref %d out of range (catalog has %d entries)", g.ID, ref, len(reg.Catalog)))
			}
		}

		// I2: a group's attribute list contains no duplicate (by resolved
		// name) AttributeRef.
		byName := make(map[string]bool, len(g.Attributes))
		for _, ref := range g.Attributes {
			if int(ref) < 0 || int(ref) >= len(reg.Catalog) {
				continue
			}
			name := reg.Catalog[ref].Name
			if byName[name] {
				errs = multierror.Append(errs, fmt.Errorf(
					"group %s: attribute %q appears more than once after resolution", g.ID, name))
			}
			byName[name] = true
		}

		// I3: group ids are unique across the resolved registry.
		if seenGroupIDs[g.ID] {
			errs = multierror.Append(errs, fmt.Errorf("duplicate resolved group id %q", g.ID))
		}
		seenGroupIDs[g.ID] = true

		// I4: extends/include_groups have already been fully flattened by
		// this point; a resolved group carries no dangling reference to
		// either.
		switch g.Type {
		case semconv.GroupMetric:
			// I6: metric groups declare both metric_name and instrument.
			if g.MetricName == "" {
				errs = multierror.Append(errs, fmt.Errorf("metric group %s: missing metric_name", g.ID))
			}
			if g.Instrument == "" {
				errs = multierror.Append(errs, fmt.Errorf("metric group %s: missing instrument", g.ID))
			}
		case semconv.GroupEvent, semconv.GroupEntity:
			// I7: event/entity groups declare a name.
			if g.Name == "" {
				errs = multierror.Append(errs, fmt.Errorf("%s group %s: missing name", g.Type, g.ID))
			}
		}
	}

	// I5: every catalog entry is referenced by at least one group, unless
	// the caller explicitly asked to keep unreferenced attributes (enforced
	// by the GC step in Resolve, not re-checked here since GC already
	// guarantees it when run).

	return errs.ErrorOrNil()
}
