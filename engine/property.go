package engine

import (
	"fmt"
	"regexp"
)

// PropertySpec describes one property a Module or Checker implementation
// accepts, used by the registry to validate a property group before
// construction (§4.F). Grounded on the teacher's functional-options
// validation style in graph/options.go, generalized from "engine
// construction option" to "declarative property metadata" since modules
// are data-driven from YAML rather than constructed in Go code.
type PropertySpec struct {
	Name     string
	Required bool
	Default  any
	Pattern  *regexp.Regexp // optional validation regex, applied to string values
	Options  []string       // optional enumerated allowed values (string values only)
}

// ValidateProperties checks props against specs, filling in defaults and
// returning the resolved property group. A required property missing from
// props, a value failing its Pattern, or a value outside Options is a
// load error (§4.F, §7).
func ValidateProperties(specs []PropertySpec, props map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(specs))
	for k, v := range props {
		resolved[k] = v
	}

	for _, spec := range specs {
		v, present := resolved[spec.Name]
		if !present {
			if spec.Required {
				return nil, &HarnessError{
					Message: fmt.Sprintf("property %q is required", spec.Name),
					Code:    "MISSING_PROPERTY",
					Cause:   ErrInvalidProperty,
				}
			}
			if spec.Default != nil {
				resolved[spec.Name] = spec.Default
			}
			continue
		}

		s, isString := v.(string)
		if !isString {
			continue
		}
		if spec.Pattern != nil && !spec.Pattern.MatchString(s) {
			return nil, &HarnessError{
				Message: fmt.Sprintf("property %q value %q does not match pattern %s", spec.Name, s, spec.Pattern.String()),
				Code:    "INVALID_PROPERTY",
				Cause:   ErrInvalidProperty,
			}
		}
		if len(spec.Options) > 0 && !contains(spec.Options, s) {
			return nil, &HarnessError{
				Message: fmt.Sprintf("property %q value %q is not one of %v", spec.Name, s, spec.Options),
				Code:    "INVALID_PROPERTY",
				Cause:   ErrInvalidProperty,
			}
		}
	}
	return resolved, nil
}

func contains(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}
