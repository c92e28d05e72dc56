package main

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/fleetops/whitelistd/test/storestub"
)

var (
	apiSecretKey = flag.String("api-secret-key", "", "Base64 encoded secret key, empty disables request authentication")
	keyFile      = flag.String("key-file", "", "Path to key file")
	certFile     = flag.String("cert-file", "", "Path to file certificate")
)

func main() {
	flag.Parse()

	var opts []storestub.Option

	if *keyFile != "" && *certFile != "" {
		log.Printf("Loading key pair: (%s) - (%s)", *certFile, *keyFile)
		cert, err := tls.LoadX509KeyPair(*certFile, *keyFile)
		if err != nil {
			log.Fatalf("error loading certificate: %v", err)
		}

		opts = append(opts, storestub.WithCertificate(cert))
	}

	if *apiSecretKey != "" {
		key, err := base64.StdEncoding.DecodeString(*apiSecretKey)
		if err != nil {
			log.Fatalf("error decoding the secret key: %v", err)
		}

		opts = append(opts, storestub.WithSecretKey(key))
	}

	server := storestub.NewUnstartedServer(opts...)

	if server.TLS != nil {
		server.StartTLS()
	} else {
		server.Start()
	}

	log.Printf("listening on %s\n", server.URL)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Config.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("error shutting down %v", err)
	}
}
