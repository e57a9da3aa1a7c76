package cf

import (
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/gocolly/colly"
)

// Info describes why a response was classified as a challenge.
type Info struct {
	StatusCode   int
	Indicators   []string
	RayID        string
	ServerHeader string
	Turnstile    bool
}

// strong indicators each mark a challenge on their own
var strongChecks = map[string]string{
	"cf-browser-verification":         "JS browser verification challenge",
	"cloudflare-browser-verification": "JS browser verification challenge",
	"challenge-form":                  "Cloudflare challenge form",
	"cf-chl-":                         "Cloudflare challenge token",
	"attention required":              "Cloudflare BIC",
	"checking your browser":           "Cloudflare browser check",
	"verify you are human":            "Cloudflare human verification",
}

// "just a moment" must only match inside <title>; product plots may contain the phrase.
var justAMomentRe = regexp.MustCompile(`(?i)<title[^>]*>[^<]*just a moment[^<]*</title>`)

// Detect inspects a response and reports whether it is a challenge page.
// A challenge needs a body signal; a bare 403/503 from a non-Cloudflare server
// is an ordinary HTTP error.
func Detect(statusCode int, header http.Header, body []byte) (bool, *Info) {
	lower := strings.ToLower(string(body))

	info := &Info{
		StatusCode:   statusCode,
		ServerHeader: header.Get("Server"),
		RayID:        header.Get("CF-Ray"),
	}

	keys := make([]string, 0, len(strongChecks))
	for k := range strongChecks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, substr := range keys {
		if strings.Contains(lower, substr) {
			info.Indicators = appendUnique(info.Indicators, strongChecks[substr])
		}
	}

	if justAMomentRe.Match(body) {
		info.Indicators = append(info.Indicators, "Cloudflare challenge page")
	}

	if strings.Contains(lower, "cf-turnstile") {
		info.Turnstile = true
		info.Indicators = append(info.Indicators, "Turnstile CAPTCHA")
	}

	if len(info.Indicators) == 0 {
		return false, nil
	}

	if statusCode == http.StatusForbidden || statusCode == http.StatusServiceUnavailable {
		info.Indicators = append(info.Indicators, http.StatusText(statusCode))
	}
	if strings.Contains(strings.ToLower(info.ServerHeader), "cloudflare") {
		info.Indicators = append(info.Indicators, "Cloudflare server header")
	}

	slog.Debug("challenge page detected", "status", statusCode, "ray", info.RayID, "indicators", info.Indicators)
	return true, info
}

// DetectFromColly wraps Detect for colly responses
func DetectFromColly(r *colly.Response) (bool, *Info) {
	if r == nil {
		return false, nil
	}
	var header http.Header
	if r.Headers != nil {
		header = *r.Headers
	}
	return Detect(r.StatusCode, header, r.Body)
}

// AsError converts detection info into a ChallengeError for url.
func (i *Info) AsError(url string) *ChallengeError {
	return &ChallengeError{
		URL:        url,
		StatusCode: i.StatusCode,
		Indicators: i.Indicators,
	}
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
