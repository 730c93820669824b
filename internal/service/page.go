package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxPageBytes = 5 << 20

// skipped elements never contribute visible text
var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
}

// blockElements end a line of text
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Title: true, atom.Ul: true, atom.Ol: true, atom.Table: true,
}

// PageFetcher downloads a webpage and reduces it to prompt-sized text
type PageFetcher struct {
	client   *http.Client
	maxRunes int
	log      logrus.FieldLogger
}

// NewPageFetcher creates a new PageFetcher instance. Unless allowPrivate is
// set, every connection to a non-public address is refused at dial time.
func NewPageFetcher(timeout time.Duration, maxRunes int, allowPrivate bool, log logrus.FieldLogger) *PageFetcher {
	dialer := &net.Dialer{Timeout: timeout}
	if !allowPrivate {
		dialer.Control = rejectPrivateAddress
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &PageFetcher{
		client:   &http.Client{Timeout: timeout, Transport: transport},
		maxRunes: maxRunes,
		log:      log.WithField("component", "page_fetcher"),
	}
}

func rejectPrivateAddress(_, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlockedHost, err)
	}
	ip := addrPort.Addr().Unmap()
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified() || ip.IsMulticast() || ip.IsInterfaceLocalMulticast() {
		return fmt.Errorf("%w: %s", ErrBlockedHost, ip)
	}
	return nil
}

// ParsePageURL accepts only absolute http(s) URLs
func ParsePageURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// Fetch returns the page's JSON-LD blocks followed by its visible text
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	u, err := ParsePageURL(pageURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageFetch, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; RecipeImporter/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if errors.Is(err, ErrBlockedHost) {
		f.log.WithField("host", u.Host).Warn("refused page fetch to non-public address")
		return "", fmt.Errorf("%w: %s", ErrBlockedHost, u.Hostname())
	}
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("page").Inc()
		return "", fmt.Errorf("%w: %v", ErrPageFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamErrorsTotal.WithLabelValues("page").Inc()
		return "", fmt.Errorf("%w: status %d", ErrPageFetch, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageFetch, err)
	}

	text := truncateRunes(ExtractPageText(doc), f.maxRunes)
	f.log.WithFields(logrus.Fields{"host": u.Host, "chars": len(text)}).Debug("page fetched")
	return text, nil
}

// ExtractPageText collects JSON-LD recipe data and the visible text of doc
func ExtractPageText(doc *html.Node) string {
	var structured []string
	var text strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.DataAtom == atom.Script && isJSONLD(n) {
				if data := scriptText(n); strings.Contains(data, "Recipe") {
					structured = append(structured, strings.TrimSpace(data))
				}
				return
			}
			if skippedElements[n.DataAtom] {
				return
			}
		}
		if n.Type == html.TextNode {
			text.WriteString(strings.Join(strings.Fields(n.Data), " "))
			text.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			text.WriteByte('\n')
		}
	}
	walk(doc)

	lines := make([]string, 0, len(structured)+1)
	lines = append(lines, structured...)
	for _, line := range strings.Split(text.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func isJSONLD(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "type" && strings.EqualFold(strings.TrimSpace(attr.Val), "application/ld+json") {
			return true
		}
	}
	return false
}

func scriptText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
