package semconv

import (
	"fmt"
	"regexp"
	"strings"
)

// DeprecatedAction discriminates the three ways a group or attribute can be
// marked deprecated.
type DeprecatedAction string

const (
	DeprecatedRenamed       DeprecatedAction = "renamed"
	DeprecatedRemoved       DeprecatedAction = "removed"
	DeprecatedUncategorized DeprecatedAction = "uncategorized"
)

// Deprecated is the tagged variant describing why and how something was
// deprecated.
type Deprecated struct {
	Action   DeprecatedAction `json:"action"`
	RenameTo string           `json:"rename_to,omitempty"`
	Note     string           `json:"note,omitempty"`
}

func (d Deprecated) String() string {
	switch d.Action {
	case DeprecatedRenamed:
		if d.Note != "" {
			return d.Note
		}
		return fmt.Sprintf("Replaced by `%s`.", d.RenameTo)
	case DeprecatedRemoved:
		if d.Note != "" {
			return d.Note
		}
		return "Removed."
	default:
		return d.Note
	}
}

// renamedRe matches free-form deprecation strings like
// "Replaced by `http.request.method`" or "Use `foo` instead".
var renamedRe = regexp.MustCompile(`(?i)(?:replace[d]? by|use|use the) ` + "`" + `([^` + "`" + `]+)` + "`")

// rawDeprecated is the YAML shape of a deprecated field: either a free-form
// string (old format) or a mapping with an explicit action (new format).
type rawDeprecated struct {
	str      string
	isStr    bool
	Action   string `yaml:"action"`
	RenameTo string `yaml:"rename_to"`
	Note     string `yaml:"note"`
}

func (r *rawDeprecated) UnmarshalYAML(unmarshal func(any) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		r.str = scalar
		r.isStr = true
		return nil
	}

	var mapping struct {
		Action   string `yaml:"action"`
		RenameTo string `yaml:"rename_to"`
		Note     string `yaml:"note"`
	}
	if err := unmarshal(&mapping); err != nil {
		return fmt.Errorf("deprecated: expected string or mapping: %w", err)
	}
	r.Action = mapping.Action
	r.RenameTo = mapping.RenameTo
	r.Note = mapping.Note
	return nil
}

// resolve parses the heuristic free-form string format, or validates the
// structured format, producing a Deprecated.
func (r *rawDeprecated) resolve() (*Deprecated, error) {
	if r.isStr {
		return parseDeprecatedString(r.str), nil
	}

	switch r.Action {
	case "renamed":
		if r.RenameTo == "" {
			return nil, fmt.Errorf("deprecated action %q requires rename_to", r.Action)
		}
		return &Deprecated{Action: DeprecatedRenamed, RenameTo: r.RenameTo, Note: r.Note}, nil
	case "removed":
		return &Deprecated{Action: DeprecatedRemoved, Note: r.Note}, nil
	default:
		return nil, fmt.Errorf("deprecated: missing or unknown action %q", r.Action)
	}
}

// parseDeprecatedString heuristically classifies a free-form deprecation
// message into a Deprecated variant, matching the legacy string format
// semantic conventions used before the structured action/rename_to/note
// shape was introduced.
func parseDeprecatedString(value string) *Deprecated {
	if m := renamedRe.FindStringSubmatch(value); m != nil {
		return &Deprecated{Action: DeprecatedRenamed, RenameTo: m[1], Note: value}
	}
	lower := strings.ToLower(value)
	if strings.Contains(lower, "removed") || strings.Contains(lower, "no replacement") {
		return &Deprecated{Action: DeprecatedRemoved, Note: value}
	}
	return &Deprecated{Action: DeprecatedUncategorized, Note: value}
}
