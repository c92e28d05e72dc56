package inventory

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	// maxPollingTime is the maximum duration to try to call the status API
	maxPollingTime = 60 * time.Minute
)

// poll tries to call the /api/v1/status endpoint once plus for
// `maxElapsedTime`
func (i *Inventory) poll(interval, maxElapsedTime time.Duration) {
	backOff := backoff.NewExponentialBackOff()
	backOff.InitialInterval = interval
	backOff.MaxElapsedTime = maxElapsedTime

	operation := func() error {
		log.Info("Checking inventory API availability")

		return i.client.Status()
	}

	err := backoff.Retry(operation, backOff)
	if err != nil {
		log.WithError(err).Errorf("Failed to connect to the inventory API after %.2fs", maxElapsedTime.Seconds())
		return
	}

	i.mu.Lock()
	i.isReady = true
	i.mu.Unlock()

	log.Info("Inventory status API connected successfully")
}
