package disk

import (
	"context"
	"fmt"
	"io/ioutil"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"gitlab.com/fleetops/whitelistd/internal/config"
	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
	"gitlab.com/fleetops/whitelistd/whitelist"
)

// Disk is a whitelist source that reads data bags and nodes from a single
// file on disk. The file is parsed once on startup and again on Reload.
type Disk struct {
	path    string
	content *fileContent
	lock    *sync.RWMutex
}

// fileContent mirrors the layout of the whitelist file. Attribute values
// are kept as decoded so they go through the same shape checks as inventory
// API responses.
type fileContent struct {
	Bags  map[string]map[string]map[string]interface{} `yaml:"bags"`
	Nodes map[string]nodeContent                       `yaml:"nodes"`
}

type nodeContent struct {
	Name  string   `yaml:"name"`
	Roles []string `yaml:"roles"`
}

// New is a factory method for the Disk source. It reads the whitelist file
// eagerly so that configuration mistakes surface on startup.
func New(cfg *config.Config) (*Disk, error) {
	d := &Disk{
		path: cfg.Store.File,
		lock: &sync.RWMutex{},
	}

	if err := d.Reload(); err != nil {
		return nil, err
	}

	return d, nil
}

// Reload re-reads the whitelist file. When reading or parsing fails the
// previous content stays in place.
func (d *Disk) Reload() error {
	raw, err := ioutil.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("reading whitelist file: %w", err)
	}

	content := &fileContent{}
	if err := yaml.Unmarshal(raw, content); err != nil {
		return fmt.Errorf("parsing whitelist file %s: %w", d.path, err)
	}

	d.lock.Lock()
	d.content = content
	d.lock.Unlock()

	log.WithFields(log.Fields{
		"path":  d.path,
		"bags":  len(content.Bags),
		"nodes": len(content.Nodes),
	}).Info("Whitelist file loaded")

	return nil
}

// GetWhitelist extracts a whitelist Record from a data bag item declared in
// the whitelist file
func (d *Disk) GetWhitelist(ctx context.Context, bag, item, attribute string) (*whitelist.Record, error) {
	fields, err := d.itemFields(bag, item)
	if err != nil {
		return nil, err
	}

	parsed := api.NewItem(bag, item, fields)

	patterns, err := parsed.Patterns(attribute)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %s: %w", bag, item, err, whitelist.ErrMalformedWhitelist)
	}

	roles, present, err := parsed.Roles()
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %s: %w", bag, item, err, whitelist.ErrMalformedWhitelist)
	}

	record := &whitelist.Record{Patterns: patterns}
	if present {
		record.Roles = roles
	}

	return record, nil
}

// GetNode returns a node declared in the whitelist file
func (d *Disk) GetNode(ctx context.Context, fqdn string) (*api.Node, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	node, ok := d.content.Nodes[fqdn]
	if !ok {
		return nil, api.ErrNodeNotFound
	}

	name := node.Name
	if name == "" {
		name = fqdn
	}

	return &api.Node{Name: name, FQDN: fqdn, Roles: node.Roles}, nil
}

// IsReady returns true once a whitelist file has been parsed successfully
func (d *Disk) IsReady() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()

	return d.content != nil
}

func (d *Disk) itemFields(bag, item string) (map[string]interface{}, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	items, ok := d.content.Bags[bag]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bag, item, whitelist.ErrWhitelistNotFound)
	}

	fields, ok := items[item]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bag, item, whitelist.ErrWhitelistNotFound)
	}

	return fields, nil
}
