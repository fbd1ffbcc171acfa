package analytics

import (
	"encoding/base64"
	"time"

	"github.com/PizzaHomicide/kava/internal/version"
)

const (
	// DefaultBaseURL is the analytics endpoint used when none is configured
	DefaultBaseURL = "https://analytics.kaltura.com/api_v3/index.php"

	// DefaultDVRThreshold is how far behind the live edge playback must be to be reported as DVR
	DefaultDVRThreshold = 2 * time.Minute

	// DefaultApplicationID identifies this client in the default referrer
	DefaultApplicationID = "kava"
)

// Config is everything the tracker needs to know about the analytics account it reports to
type Config struct {
	PartnerID    int
	BaseURL      string
	Referrer     string // Already encoded.  Empty means DefaultReferrer is used.
	DVRThreshold time.Duration
	ClientTag    string // Sent as clientVer and clientTag.  Defaults to version.ClientTag().

	PlaybackContext string
	CustomVar1      string
	CustomVar2      string
	CustomVar3      string
	KS              string
	UIConfID        int
}

// PartnerIDValid reports whether a usable partner id is configured
func (c Config) PartnerIDValid() bool {
	return c.PartnerID > 0
}

// DefaultReferrer builds the referrer reported when the embedding application does not supply one
func DefaultReferrer(applicationID string) string {
	return base64.StdEncoding.EncodeToString([]byte("app://" + applicationID))
}

// withDefaults fills the unset fields with their defaults
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Referrer == "" {
		c.Referrer = DefaultReferrer(DefaultApplicationID)
	}
	if c.DVRThreshold <= 0 {
		c.DVRThreshold = DefaultDVRThreshold
	}
	if c.ClientTag == "" {
		c.ClientTag = version.ClientTag()
	}
	return c
}
