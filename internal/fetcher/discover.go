package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mhofmann/dpwt-tracker/internal/logger"
)

// tournamentSlugPattern matches tournament paths on the tour website, e.g.
// /dpworld-tour/open-de-espana-2026.
var tournamentSlugPattern = regexp.MustCompile(`^/dpworld-tour/[^/]+-20\d{2}/?$`)

// DiscoverCurrentTournament scrapes the player's profile page for the
// "Playing this week" tournament link. It is a fallback for when the results
// API lags behind a tournament that is already underway.
func (c *Client) DiscoverCurrentTournament(ctx context.Context, playerID int) (string, error) {
	target := fmt.Sprintf("%s/players/player-%d/?tour=dpworld-tour", c.baseURL, playerID)

	resp, err := c.get(ctx, target)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("player page status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing player page: %w", err)
	}

	slug := findTournamentSlug(doc)
	if slug == "" {
		return "", fmt.Errorf("no tournament link on player page")
	}

	logger.Debug("discovered current tournament", logger.Fields{
		"player_id": playerID,
		"slug":      slug,
	})
	return c.baseURL + slug, nil
}

func findTournamentSlug(doc *goquery.Document) string {
	slug := ""
	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if strings.HasPrefix(href, "http") {
			if parsed, err := url.Parse(href); err == nil {
				href = parsed.Path
			}
		}
		href = strings.TrimSuffix(href, "/")
		if tournamentSlugPattern.MatchString(href) {
			slug = href
			return false
		}
		return true
	})
	return slug
}
