package portal

import (
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockPageLimit = 64 * 1024

// blockPageTitle returns the <title> of an HTML response, which is usually the
// only hint about why the portal answered with a page instead of the archive.
func blockPageTitle(resp *http.Response) string {
	if !strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "html") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, blockPageLimit))
	if err != nil {
		return ""
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	return strings.Join(strings.Fields(title), " ")
}
