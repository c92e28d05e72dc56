package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/namsral/flag"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"gitlab.com/fleetops/whitelistd/internal/config"
	"gitlab.com/fleetops/whitelistd/internal/host"
	"gitlab.com/fleetops/whitelistd/internal/source"
	"gitlab.com/fleetops/whitelistd/internal/subject"
	"gitlab.com/fleetops/whitelistd/whitelist"
)

const usage = `usage: whitelist-check [options] WHITELIST HOST [HOST...]

Checks whether each HOST is a member of WHITELIST. Exits 0 when every host
is a member, 1 when at least one is not and 2 on usage or configuration
errors.

options:
`

var (
	fs = flag.NewFlagSetWithEnvPrefix("whitelist-check", "WHITELIST_CHECK", flag.ExitOnError)

	whitelistSource = fs.String("whitelist-source", "inventory", "Where to read whitelist data bags and nodes from: 'inventory' or 'disk'")
	whitelistFile   = fs.String("whitelist-file", "", "YAML file with data bags and nodes, used when whitelist-source is 'disk'")

	inventoryServer   = fs.String("inventory-server", "", "Inventory server used for data bag and node API requests")
	apiSecretKey      = fs.String("api-secret-key", "", "File with secret key used to authenticate with the inventory API")
	clientHTTPTimeout = fs.Duration("inventory-client-http-timeout", 10*time.Second, "Inventory API HTTP client connection timeout")
	clientJWTExpiry   = fs.Duration("inventory-client-jwt-expiry", 30*time.Second, "JWT Token expiry time")

	defaultBag       = fs.String("default-bag", "whitelist", "The data bag holding whitelist items when -bag is not given")
	defaultAttribute = fs.String("default-attribute", "patterns", "The item attribute holding host patterns when -attribute is not given")
	bagName          = fs.String("bag", "", "The data bag to read the whitelist item from")
	attribute        = fs.String("attribute", "", "The item attribute holding host patterns")

	retrievalTimeout = fs.Duration("whitelist-retrieval-timeout", 30*time.Second, "The maximum time to wait for a response from the inventory API per request")
	timeout          = fs.Duration("timeout", time.Minute, "The maximum time to wait for all checks to finish")

	quiet   = fs.Bool("quiet", false, "Do not print per host results, only set the exit code")
	verbose = fs.Bool("log-verbose", false, "Verbose logging")

	assumeRoles config.MultiStringFlag
)

func main() {
	fs.Var(&assumeRoles, "assume-role", "Check against the given role(s) instead of the host's inventory node, repeatable")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}

	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) < 2 {
		fs.Usage()
		os.Exit(2)
	}

	configureLogging(*verbose)

	cfg, err := storeConfig()
	if err != nil {
		fail(err)
	}

	src, err := source.NewSource(cfg)
	if err != nil {
		fail(err)
	}

	checker := whitelist.NewChecker(src,
		whitelist.WithDefaultBag(cfg.Store.DefaultBag),
		whitelist.WithDefaultAttribute(cfg.Store.DefaultAttribute),
	)

	var opts []whitelist.CheckOption
	if *bagName != "" {
		opts = append(opts, whitelist.WithBag(*bagName))
	}
	if *attribute != "" {
		opts = append(opts, whitelist.WithAttribute(*attribute))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	name, hosts := args[0], args[1:]

	results := make([]whitelist.Result, len(hosts))

	g, ctx := errgroup.WithContext(ctx)
	for i, h := range hosts {
		i, fqdn := i, host.FromString(h)

		g.Go(func() error {
			results[i] = checker.Check(ctx, name, newSubject(fqdn, src), opts...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fail(err)
	}

	exitCode := 0
	for i, h := range hosts {
		if !results[i].Member {
			exitCode = 1
		}

		if !*quiet {
			printResult(host.FromString(h), results[i])
		}
	}

	os.Exit(exitCode)
}

func storeConfig() (*config.Config, error) {
	cfg := &config.Config{
		Inventory: config.Inventory{
			Server:             strings.TrimRight(*inventoryServer, "/"),
			ClientHTTPTimeout:  *clientHTTPTimeout,
			JWTTokenExpiration: *clientJWTExpiry,
		},
		Store: config.Store{
			Source:           *whitelistSource,
			File:             *whitelistFile,
			DefaultBag:       *defaultBag,
			DefaultAttribute: *defaultAttribute,
			Cache: config.Cache{
				NegativeCaching:      true,
				RetrievalTimeout:     *retrievalTimeout,
				MaxRetrievalInterval: time.Second,
				MaxRetrievalRetries:  3,
			},
		},
	}

	if *apiSecretKey != "" {
		key, err := config.ReadAPISecretKey(*apiSecretKey)
		if err != nil {
			return nil, err
		}

		cfg.Inventory.APISecretKey = key
	}

	if err := config.ValidateStore(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newSubject answers role questions from the inventory node unless the
// caller assumed roles, hosts not yet registered can be checked that way.
func newSubject(fqdn string, src source.Source) whitelist.Subject {
	if assumeRoles.Len() > 0 {
		return subject.NewStatic(fqdn, assumeRoles.Split())
	}

	return subject.New(fqdn, src)
}

func printResult(fqdn string, result whitelist.Result) {
	if result.Member {
		fmt.Printf("%s: member (%s)\n", fqdn, result.MatchedBy)
		return
	}

	fmt.Printf("%s: not a member\n", fqdn)
}

func configureLogging(verbose bool) {
	log.SetOutput(os.Stderr)

	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.ErrorLevel)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "whitelist-check: %v\n", err)
	os.Exit(2)
}
