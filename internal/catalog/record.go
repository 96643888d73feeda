// Package catalog holds the command records parsed from the documentation
// source. Records are validated once at load time; downstream packages only
// ever see the typed CommandRecord.
package catalog

// Option is a single command-line flag and what it does.
type Option struct {
	Flag        string `json:"flag" yaml:"flag"`
	Description string `json:"description" yaml:"description"`
}

// Example is an invocation together with an explanation of what it does.
type Example struct {
	Command     string `json:"cmd" yaml:"cmd"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// CommandRecord is one documented command. Name is the identity and is
// unique within a Store.
type CommandRecord struct {
	Name        string    `json:"name" yaml:"name"`
	Category    string    `json:"category" yaml:"category"`
	Description string    `json:"description" yaml:"description"`
	Syntax      string    `json:"syntax,omitempty" yaml:"syntax,omitempty"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	Examples    []Example `json:"examples,omitempty" yaml:"examples,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Source      string    `json:"source,omitempty" yaml:"-"`
}

// clone returns a deep copy so callers cannot mutate store contents.
func (r CommandRecord) clone() CommandRecord {
	out := r
	if r.Options != nil {
		out.Options = append([]Option(nil), r.Options...)
	}
	if r.Examples != nil {
		out.Examples = append([]Example(nil), r.Examples...)
	}
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	return out
}

// AllowedCategories is the category whitelist enforced for new commands and,
// when strict mode is on, for loaded ones.
var AllowedCategories = []string{
	"File_and_Directory_Management",
	"Archive_Compression_Management",
	"System_Administration",
	"Network_Security",
	"Process_Management",
	"Text_Processing",
	"Package_Management",
	"Hardware_Information",
	"User_Management",
	"Disk_Management",
	"Environment_Variables",
	"Job_Control",
	"Remote_Access",
	"Development_Tools",
	"Monitoring_Performance",
}

// IsAllowedCategory reports whether category is in AllowedCategories.
func IsAllowedCategory(category string) bool {
	for _, c := range AllowedCategories {
		if c == category {
			return true
		}
	}
	return false
}
