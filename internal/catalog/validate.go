package catalog

import (
	"fmt"
	"sort"
	"strings"
)

const (
	maxNameLength        = 128
	maxDescriptionLength = 65536
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

// ValidateRecord checks the fields a record must carry to be served: a
// non-empty single-line name and a non-empty description.
func ValidateRecord(rec *CommandRecord) error {
	errs := make(map[string]string)

	name := strings.TrimSpace(rec.Name)
	switch {
	case name == "":
		errs["name"] = "name is required"
	case len(name) > maxNameLength:
		errs["name"] = fmt.Sprintf("name must be at most %d characters", maxNameLength)
	case strings.ContainsAny(name, "\t\n"):
		errs["name"] = "name must be a single line"
	}
	desc := strings.TrimSpace(rec.Description)
	if desc == "" {
		errs["description"] = "description is required"
	} else if len(desc) > maxDescriptionLength {
		errs["description"] = fmt.Sprintf("description must be at most %d characters", maxDescriptionLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// Issues runs the full editorial checks applied to newly authored commands
// and returns a human-readable list of problems. An empty list means the
// record can be saved.
func Issues(rec *CommandRecord) []string {
	var issues []string
	if strings.TrimSpace(rec.Name) == "" {
		issues = append(issues, "Missing required 'name'.")
	}
	cat := strings.TrimSpace(rec.Category)
	if cat == "" {
		issues = append(issues, "Missing 'category'.")
	} else if !IsAllowedCategory(cat) {
		issues = append(issues, fmt.Sprintf("Category '%s' not in allowed categories.", cat))
	}
	if strings.TrimSpace(rec.Description) == "" {
		issues = append(issues, "Missing or empty 'description'.")
	}
	if strings.TrimSpace(rec.Syntax) == "" {
		issues = append(issues, "Missing 'usage' or 'syntax'.")
	}
	for i, opt := range rec.Options {
		if strings.TrimSpace(opt.Flag) == "" {
			issues = append(issues, fmt.Sprintf("Option %d has an empty flag.", i+1))
		}
	}
	for i, ex := range rec.Examples {
		if strings.TrimSpace(ex.Command) == "" {
			issues = append(issues, fmt.Sprintf("Example %d has an empty command.", i+1))
		}
	}
	return issues
}
