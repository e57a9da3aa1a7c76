package cf

import (
	"net/http"
	"strings"

	"github.com/gocolly/colly"
)

// DefaultUserAgent is sent when no user agent is configured.
// The catalog site rejects the default Go and colly user agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// BrowserProfile is the identity presented to the origin site.
type BrowserProfile struct {
	UserAgent      string
	AcceptLanguage string
}

func (p BrowserProfile) userAgent() string {
	if p.UserAgent == "" {
		return DefaultUserAgent
	}
	return p.UserAgent
}

// ApplyHeaders sets browser-like headers on a standard request header set.
func (p BrowserProfile) ApplyHeaders(h http.Header) {
	ua := p.userAgent()

	h.Set("User-Agent", ua)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Encoding", "gzip, br")
	if p.AcceptLanguage != "" {
		h.Set("Accept-Language", p.AcceptLanguage)
	}
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")

	if strings.Contains(ua, "Chrome") {
		h.Set("sec-ch-ua", `"Chromium";v="114", "Not_A Brand";v="99"`)
		h.Set("sec-ch-ua-mobile", "?0")
	}
}

// ApplyToCollector makes every request of c carry the profile's headers.
func (p BrowserProfile) ApplyToCollector(c *colly.Collector) {
	c.UserAgent = p.userAgent()

	c.OnRequest(func(r *colly.Request) {
		p.ApplyHeaders(*r.Headers)
	})
}
