package api

import (
	"errors"
	"fmt"
)

// ErrMalformedItem means a data bag item was fetched but one of its
// attributes does not have the expected shape.
var ErrMalformedItem = errors.New("malformed data bag item")

const rolesAttribute = "roles"

// Item is a data bag item as returned by the inventory API. The raw
// attribute map is kept as decoded so accessors can report shape problems
// per attribute instead of failing the whole item.
type Item struct {
	bag    string
	name   string
	fields map[string]interface{}
}

// NewItem wraps a decoded attribute map.
func NewItem(bag, name string, fields map[string]interface{}) *Item {
	return &Item{bag: bag, name: name, fields: fields}
}

// Bag returns the name of the data bag the item belongs to.
func (i *Item) Bag() string {
	return i.bag
}

// Name returns the item name.
func (i *Item) Name() string {
	return i.name
}

// Patterns returns the value of the named attribute as a list of strings.
// A missing attribute yields an empty list. Any other shape than a list
// of strings is malformed.
func (i *Item) Patterns(attribute string) ([]string, error) {
	raw, ok := i.fields[attribute]
	if !ok || raw == nil {
		return nil, nil
	}

	patterns, err := toStringSlice(raw)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", attribute, err)
	}

	return patterns, nil
}

// Roles returns the item's fallback roles and whether the roles key is
// present at all. A bare string is normalized to a one-element list.
func (i *Item) Roles() ([]string, bool, error) {
	raw, ok := i.fields[rolesAttribute]
	if !ok {
		return nil, false, nil
	}

	if raw == nil {
		return []string{}, true, nil
	}

	if role, isString := raw.(string); isString {
		return []string{role}, true, nil
	}

	roles, err := toStringSlice(raw)
	if err != nil {
		return nil, true, fmt.Errorf("attribute %q: %w", rolesAttribute, err)
	}

	return roles, true, nil
}

func toStringSlice(raw interface{}) ([]string, error) {
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected a list of strings, got %T", ErrMalformedItem, raw)
	}

	values := make([]string, 0, len(list))
	for idx, element := range list {
		value, ok := element.(string)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T, not a string", ErrMalformedItem, idx, element)
		}

		values = append(values, value)
	}

	return values, nil
}
