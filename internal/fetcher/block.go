package fetcher

import (
	"errors"
	"net/http"
	"strings"
)

// ErrBlocked is returned when a page is an anti-bot challenge instead of content.
var ErrBlocked = errors.New("page blocked by anti-bot protection")

// BlockKind describes the kind of block detected.
type BlockKind string

const (
	BlockNone       BlockKind = ""
	BlockCloudflare BlockKind = "cloudflare"
	BlockCaptcha    BlockKind = "captcha"
	BlockJSShell    BlockKind = "js_shell"
)

// challengeMaxBytes is the size under which captcha and JS-shell markers are
// treated as a challenge page. Larger pages embed captcha widgets in forms.
const challengeMaxBytes = 20000

// DetectBlock checks a response and its body for signs of anti-bot protection.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockKind) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("server") == "cloudflare" {
			return true, BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") {
		return true, BlockCloudflare
	}

	if len(body) >= challengeMaxBytes {
		return false, BlockNone
	}

	if strings.Contains(lower, "captcha") {
		return true, BlockCaptcha
	}
	if strings.Contains(lower, "<noscript") && strings.Contains(lower, "enable javascript") {
		return true, BlockJSShell
	}
	if strings.Contains(lower, `meta http-equiv="refresh"`) {
		return true, BlockJSShell
	}

	return false, BlockNone
}
