// Package verification checks that a website claims ownership by a certifier
// through a meta tag such as <meta name="ca-key" content="ca-key-alice">.
package verification

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/fetch"
)

// Verifier fetches pages and looks for the ownership tag.
type Verifier struct {
	client *fetch.Client
	logger *zap.Logger
}

func NewVerifier(client *fetch.Client, logger *zap.Logger) *Verifier {
	return &Verifier{client: client, logger: logger}
}

// ExpectedContent is the tag content a site publishes for the named certifier.
func ExpectedContent(prefix, certifierName string) string {
	return prefix + certifierName
}

// Verify fetches url once and reports whether it carries a meta element with
// name tagName and content expectedContent. A page that cannot be fetched is
// an error, never false. The status code is not checked.
func (v *Verifier) Verify(ctx context.Context, url, tagName, expectedContent string) (bool, error) {
	resp, err := v.client.Get(ctx, url)
	if err != nil {
		return false, err
	}

	found, err := ContainsMetaTag(bytes.NewReader(resp.Body), tagName, expectedContent)
	if err != nil {
		return false, err
	}

	v.logger.Info("Ownership tag checked",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Bool("found", found))
	return found, nil
}

// ContainsMetaTag parses r as HTML and reports whether any meta element has
// both attributes name=tagName and content=expectedContent. Matching is exact
// and case-sensitive on the values.
func ContainsMetaTag(r io.Reader, tagName, expectedContent string) (bool, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return false, fmt.Errorf("failed to parse html: %w", err)
	}

	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "meta" && metaMatches(n, tagName, expectedContent) {
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	return walk(doc), nil
}

func metaMatches(n *html.Node, tagName, expectedContent string) bool {
	var name, content *string
	for i := range n.Attr {
		a := &n.Attr[i]
		switch a.Key {
		case "name":
			name = &a.Val
		case "content":
			content = &a.Val
		}
	}
	return name != nil && content != nil && *name == tagName && *content == expectedContent
}
