package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemPatterns(t *testing.T) {
	tests := map[string]struct {
		fields      map[string]interface{}
		expected    []string
		expectedErr error
	}{
		"list_of_strings": {
			fields: map[string]interface{}{
				"patterns": []interface{}{"web-*.example.com", "db-??.example.com"},
			},
			expected: []string{"web-*.example.com", "db-??.example.com"},
		},
		"empty_list": {
			fields: map[string]interface{}{
				"patterns": []interface{}{},
			},
			expected: []string{},
		},
		"missing_attribute": {
			fields:   map[string]interface{}{"id": "batch-jobs"},
			expected: nil,
		},
		"null_attribute": {
			fields:   map[string]interface{}{"patterns": nil},
			expected: nil,
		},
		"not_a_list": {
			fields:      map[string]interface{}{"patterns": "web-*.example.com"},
			expectedErr: ErrMalformedItem,
		},
		"list_with_non_string": {
			fields: map[string]interface{}{
				"patterns": []interface{}{"web-*.example.com", 42},
			},
			expectedErr: ErrMalformedItem,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			item := NewItem("whitelist", "batch-jobs", tc.fields)

			patterns, err := item.Patterns("patterns")
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, patterns)
		})
	}
}

func TestItemRoles(t *testing.T) {
	tests := map[string]struct {
		fields          map[string]interface{}
		expected        []string
		expectedPresent bool
		expectedErr     error
	}{
		"list_of_strings": {
			fields: map[string]interface{}{
				"roles": []interface{}{"batch", "backup"},
			},
			expected:        []string{"batch", "backup"},
			expectedPresent: true,
		},
		"bare_string": {
			fields:          map[string]interface{}{"roles": "batch"},
			expected:        []string{"batch"},
			expectedPresent: true,
		},
		"empty_list": {
			fields:          map[string]interface{}{"roles": []interface{}{}},
			expected:        []string{},
			expectedPresent: true,
		},
		"null_value": {
			fields:          map[string]interface{}{"roles": nil},
			expected:        []string{},
			expectedPresent: true,
		},
		"missing_key": {
			fields:          map[string]interface{}{"patterns": []interface{}{}},
			expected:        nil,
			expectedPresent: false,
		},
		"list_with_non_string": {
			fields: map[string]interface{}{
				"roles": []interface{}{"batch", true},
			},
			expectedPresent: true,
			expectedErr:     ErrMalformedItem,
		},
		"not_string_or_list": {
			fields:          map[string]interface{}{"roles": 7},
			expectedPresent: true,
			expectedErr:     ErrMalformedItem,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			item := NewItem("whitelist", "batch-jobs", tc.fields)

			roles, present, err := item.Roles()
			require.Equal(t, tc.expectedPresent, present)

			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, roles)
		})
	}
}

func TestNodeHasRole(t *testing.T) {
	node := &Node{
		Name:  "web-1",
		FQDN:  "web-1.example.com",
		Roles: []string{"web", "canary"},
	}

	require.True(t, node.HasRole("web"))
	require.True(t, node.HasRole("canary"))
	require.False(t, node.HasRole("Web"))
	require.False(t, node.HasRole("db"))
}
