//go:build !boringcrypto
// +build !boringcrypto

package boring

// CheckBoring logs whether the daemon is running with BoringSSL enabled
func CheckBoring() {}
