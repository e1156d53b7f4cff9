package lyrics

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// containerSelectors are tried in order; the first one matching anything wins.
// Desktop pages use data-lyrics-container, the legacy/mobile layout uses
// .lyrics and API embeds use .rg_embed_body.
var containerSelectors = []string{
	`[data-lyrics-container]`,
	`.lyrics`,
	`.rg_embed_body`,
}

// excludedSelector marks page chrome injected inside lyric containers
// (contributor counts, "Read more" blurbs).
const excludedSelector = `[data-exclude-from-selection="true"]`

var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Normalized is the line sequence extracted from one markup blob.
type Normalized struct {
	Lines []string
	// Degraded is set when no lyric container was found and the lines come
	// from the whole document body.
	Degraded bool
}

// Normalize turns raw lyric markup into trimmed, non-empty lines. Every <br>
// is a line break and all other tags are stripped. Text without any closing
// tag or <br> is taken as already normalized and only split, so decoded
// entities such as "x<y" survive a second pass unchanged.
func Normalize(markup string) Normalized {
	if isPlainText(markup) {
		return Normalized{Lines: SplitLines(markup), Degraded: true}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		// The html5 parser accepts any input, this only fails on reader errors.
		log.Warnf("failed to parse lyric markup: %v", err)
		return Normalized{Degraded: true}
	}

	for _, selector := range containerSelectors {
		containers := doc.Find(selector)
		if containers.Length() == 0 {
			continue
		}

		var sb strings.Builder
		containers.Each(func(_ int, s *goquery.Selection) {
			s.Find(excludedSelector).Remove()
			writeText(s, &sb, false)
			sb.WriteString("\n")
		})
		log.Tracef("normalized %d container(s) matching %s", containers.Length(), selector)
		return Normalized{Lines: SplitLines(sb.String())}
	}

	doc.Find("script, style, noscript, template").Remove()
	var sb strings.Builder
	writeText(doc.Find("body"), &sb, true)
	return Normalized{Lines: SplitLines(sb.String()), Degraded: true}
}

// HasContainer reports whether markup holds any lyric container. Challenge
// and consent pages come back with 200 but without one.
func HasContainer(markup string) bool {
	if isPlainText(markup) {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return false
	}
	for _, selector := range containerSelectors {
		if doc.Find(selector).Length() > 0 {
			return true
		}
	}
	return false
}

func isPlainText(markup string) bool {
	lower := strings.ToLower(markup)
	return !strings.Contains(lower, "</") && !strings.Contains(lower, "<br")
}

// SplitLines splits text on newlines, trims each line and drops blank ones.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func writeText(s *goquery.Selection, sb *strings.Builder, blockBreaks bool) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			sb.WriteString(c.Text())
		case name == "br":
			sb.WriteString("\n")
		case blockBreaks && blockElements[name]:
			sb.WriteString("\n")
			writeText(c, sb, blockBreaks)
			sb.WriteString("\n")
		default:
			writeText(c, sb, blockBreaks)
		}
	})
}
