package storestub

import (
	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
)

// defaultBags holds the predefined data bag items, keyed by "bag/item", that
// can be used with the inventory API stub in application tests.
func defaultBags() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		"whitelist/web-servers": {
			"id":       "web-servers",
			"patterns": []interface{}{"web-*.example.com", "api-??.example.com"},
			"roles":    []interface{}{"web", "frontend"},
		},
		"whitelist/batch-jobs": {
			"id":       "batch-jobs",
			"patterns": []interface{}{"batch-*.internal"},
		},
		"whitelist/empty-roles": {
			"id":       "empty-roles",
			"patterns": []interface{}{},
			"roles":    []interface{}{},
		},
		"whitelist/single-role": {
			"id":       "single-role",
			"patterns": []interface{}{"*.storage.example.com"},
			"roles":    "backup",
		},
		"whitelist/broken": {
			"id":       "broken",
			"patterns": "web-*.example.com",
		},
		"maintenance/web-servers": {
			"id":       "web-servers",
			"hosts":    []interface{}{"web-1.example.com"},
			"patterns": []interface{}{"web-9?.example.com"},
		},
	}
}

func defaultNodes() map[string]*api.Node {
	return map[string]*api.Node{
		"web-1.example.com": {
			Name:  "web-1",
			FQDN:  "web-1.example.com",
			Roles: []string{"web"},
		},
		"db-01.example.com": {
			Name:  "db-01",
			FQDN:  "db-01.example.com",
			Roles: []string{"database", "backup"},
		},
		"lonely.example.com": {
			Name:  "lonely",
			FQDN:  "lonely.example.com",
			Roles: []string{},
		},
	}
}
