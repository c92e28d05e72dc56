package storestub

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"
)

const apiRequestHeader = "Whitelistd-Api-Request"

func defaultBagHandler(conf *config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorize(w, r, conf) {
			return
		}

		vars := mux.Vars(r)
		key := vars["bag"] + "/" + vars["item"]

		fields, ok := conf.bags[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)

			log.Printf("data bag stub served 404 for %s", key)
			return
		}

		if err := json.NewEncoder(w).Encode(fields); err != nil {
			log.Fatal(err)
		}

		log.Printf("data bag stub served item %s", key)
	}
}

func defaultNodeHandler(conf *config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorize(w, r, conf) {
			return
		}

		fqdn := mux.Vars(r)["fqdn"]

		node, ok := conf.nodes[fqdn]
		if !ok {
			w.WriteHeader(http.StatusNotFound)

			log.Printf("node stub served 404 for %s", fqdn)
			return
		}

		if err := json.NewEncoder(w).Encode(node); err != nil {
			log.Fatal(err)
		}
	}
}

func defaultStatusHandler(conf *config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorize(w, r, conf) {
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// authorize checks the request token when the stub is configured with a
// secret key. It writes the error response itself and reports whether the
// handler may continue.
func authorize(w http.ResponseWriter, r *http.Request, conf *config) bool {
	// to test slow responses from the API
	if conf.delay > 0 {
		time.Sleep(conf.delay)
	}

	if conf.secretKey == nil {
		return true
	}

	tokenString := r.Header.Get(apiRequestHeader)
	if tokenString == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return conf.secretKey, nil
	})

	if err != nil || !token.Valid {
		w.WriteHeader(http.StatusUnauthorized)
		return false
	}

	return true
}
