package linkpreview

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const maxDescriptionChars = 300

type Preview struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Fetch downloads the page and pulls out Open Graph metadata, falling
// back to <title>/meta description and finally to the page text.
func (c *Client) Fetch(ctx context.Context, targetURL string) (*Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; pulse-linkpreview/1.0)")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, targetURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	p := &Preview{
		Title:       metaContent(doc, "og:title"),
		Description: metaContent(doc, "og:description"),
		ImageURL:    metaContent(doc, "og:image"),
	}
	if p.Title == "" {
		p.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if p.Description == "" {
		p.Description = metaByName(doc, "description")
	}
	if p.Description == "" {
		p.Description = firstParagraph(doc)
	}
	if len(p.Description) > maxDescriptionChars {
		p.Description = p.Description[:maxDescriptionChars]
	}
	if p.Title == "" && p.Description == "" {
		return nil, fmt.Errorf("no preview metadata in %s", targetURL)
	}
	return p, nil
}

func metaContent(doc *goquery.Document, property string) string {
	sel := fmt.Sprintf(`meta[property=%q]`, property)
	content, _ := doc.Find(sel).First().Attr("content")
	return strings.TrimSpace(content)
}

func metaByName(doc *goquery.Document, name string) string {
	sel := fmt.Sprintf(`meta[name=%q]`, name)
	content, _ := doc.Find(sel).First().Attr("content")
	return strings.TrimSpace(content)
}

// firstParagraph walks the parsed tree for the first non-empty <p>
// text node.
func firstParagraph(doc *goquery.Document) string {
	var text string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if text != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "p" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			if t := strings.TrimSpace(sb.String()); t != "" {
				text = t
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
	return text
}
