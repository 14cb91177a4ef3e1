package raidbots

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const reportPath = "/simbot/report/"

// ExtractLinks returns every anchor target in text that points at a simbot report on host,
// in document order. Repeated links are kept.
func ExtractLinks(text, host string) []string {
	var links []string

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		slog.Error("Error parsing input html", "error", err)
		return links
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if link, ok := MatchReportLink(href, host); ok {
			links = append(links, link)
		}
	})

	slog.Info("Extracted report links", "count", len(links))
	return links
}

// MatchReportLink reports whether raw is https://<host>/simbot/report/<id>.
func MatchReportLink(raw, host string) (string, bool) {
	prefix := "https://" + host + reportPath
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	id := raw[len(prefix):]
	if id == "" || strings.ContainsAny(id, "\" \t\r\n") {
		return "", false
	}
	return raw, true
}
