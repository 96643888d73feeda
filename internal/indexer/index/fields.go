package index

import (
	"fmt"
	"math"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
)

// Field identifies the part of a record a term was taken from.
type Field uint8

const (
	FieldName Field = iota
	FieldOption
	FieldCategory
	FieldDescription
	numFields
)

var fieldNames = [numFields]string{"name", "option", "category", "description"}

func (f Field) String() string {
	if f < numFields {
		return fieldNames[f]
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// Fields lists every field in weight order.
func Fields() []Field {
	return []Field{FieldName, FieldOption, FieldCategory, FieldDescription}
}

// FieldSet is a bitmask of fields.
type FieldSet uint8

func (s FieldSet) With(f Field) FieldSet {
	return s | 1<<f
}

func (s FieldSet) Has(f Field) bool {
	return s&(1<<f) != 0
}

func (s FieldSet) String() string {
	var parts []string
	for _, f := range Fields() {
		if s.Has(f) {
			parts = append(parts, f.String())
		}
	}
	return strings.Join(parts, "|")
}

// Weights are the per-field scores added when a query token matches.
type Weights struct {
	Name        float64 `json:"name"`
	Option      float64 `json:"option"`
	Category    float64 `json:"category"`
	Description float64 `json:"description"`
}

func DefaultWeights() Weights {
	return Weights{Name: 4, Option: 3, Category: 2, Description: 1}
}

func WeightsFromConfig(cfg config.WeightsConfig) Weights {
	return Weights{
		Name:        cfg.Name,
		Option:      cfg.Option,
		Category:    cfg.Category,
		Description: cfg.Description,
	}
}

// Validate rejects negative or non-finite weights with a *errors.ConfigError.
func (w Weights) Validate() error {
	for _, f := range Fields() {
		v := w.Of(f)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return &apperrors.ConfigError{
				Field:  f.String() + "_weight",
				Reason: fmt.Sprintf("must be a non-negative finite number, got %v", v),
			}
		}
	}
	return nil
}

func (w Weights) Of(f Field) float64 {
	switch f {
	case FieldName:
		return w.Name
	case FieldOption:
		return w.Option
	case FieldCategory:
		return w.Category
	case FieldDescription:
		return w.Description
	}
	return 0
}

// Sum adds the weight of every field in s once.
func (w Weights) Sum(s FieldSet) float64 {
	var total float64
	for _, f := range Fields() {
		if s.Has(f) {
			total += w.Of(f)
		}
	}
	return total
}
