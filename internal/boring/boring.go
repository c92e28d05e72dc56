//go:build boringcrypto
// +build boringcrypto

package boring

import (
	"crypto/boring"

	"gitlab.com/gitlab-org/labkit/log"
)

// CheckBoring logs whether the daemon is running with BoringSSL enabled
func CheckBoring() {
	if boring.Enabled() {
		log.Info("FIPS mode is enabled. Using BoringSSL.")
		return
	}

	log.Info("whitelistd was compiled with FIPS mode but BoringSSL is not enabled.")
}
