package fields

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Definition describes one searchable field.
type Definition struct {
	// Name is the field name used in filter leaves.
	Name string `yaml:"name" json:"name" msgpack:"name" validate:"required"`

	// Type is the attribute type of the field's values.
	Type AttributeType `yaml:"type" json:"type" msgpack:"type" validate:"required,attrtype"`

	// Multivalued fields hold a list of values per record.
	Multivalued bool `yaml:"multivalued,omitempty" json:"multivalued,omitempty" msgpack:"multivalued,omitempty"`

	// ReadOnly fields are shown but not editable.
	ReadOnly bool `yaml:"readonly,omitempty" json:"readonly,omitempty" msgpack:"readonly,omitempty"`

	// Hidden fields are kept out of field pickers regardless of type.
	Hidden bool `yaml:"hidden,omitempty" json:"hidden,omitempty" msgpack:"hidden,omitempty"`

	// Alias is the display name. Empty means Name.
	Alias string `yaml:"alias,omitempty" json:"alias,omitempty" msgpack:"alias,omitempty"`

	// Enum restricts values to a fixed set when non-empty.
	Enum []string `yaml:"enum,omitempty" json:"enum,omitempty" msgpack:"enum,omitempty" validate:"omitempty,unique,dive,required"`
}

// definitionValidate checks Definition struct tags.
var definitionValidate *validator.Validate

func init() {
	definitionValidate = validator.New()
	_ = definitionValidate.RegisterValidation("attrtype", func(fl validator.FieldLevel) bool {
		return AttributeType(fl.Field().String()).Valid()
	})
}

// Validate reports the first problem with d, wrapped in ErrInvalidDefinition.
func (d Definition) Validate() error {
	err := definitionValidate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w %q: field %s failed %q check (value %v)", ErrInvalidDefinition, d.Name, fe.Field(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("%w %q: %v", ErrInvalidDefinition, d.Name, err)
}

// DisplayName returns the alias, or the name when there is none.
func (d Definition) DisplayName() string {
	if d.Alias != "" {
		return d.Alias
	}
	return d.Name
}
