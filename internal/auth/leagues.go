package auth

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// placeholderLeague is returned when the landing page yields nothing.
// Downstream code always receives at least one descriptor.
func placeholderLeague() LeagueDescriptor {
	return LeagueDescriptor{
		ID:     "0",
		Name:   "My Leagues",
		Sport:  "football",
		Season: strconv.Itoa(time.Now().Year()),
	}
}

// discoverLeagues scrapes the authenticated landing page for league
// metadata. Strictly best-effort: any failure degrades to the
// placeholder rather than touching the authentication result.
func discoverLeagues(ctx context.Context, cfg Config, log zerolog.Logger) []LeagueDescriptor {
	html, err := pageHTML(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("league scrape skipped")
		return []LeagueDescriptor{placeholderLeague()}
	}
	leagues := parseLeagues(html, cfg)
	if len(leagues) == 0 {
		return []LeagueDescriptor{placeholderLeague()}
	}
	log.Debug().Int("count", len(leagues)).Msg("leagues discovered")
	return leagues
}

// parseLeagues extracts league descriptors from landing-page markup
// using the configured selector set.
func parseLeagues(html string, cfg Config) []LeagueDescriptor {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var (
		out  []LeagueDescriptor
		seen = map[string]bool{}
	)
	for _, sel := range cfg.LeagueSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			league := leagueFromLink(strings.TrimSpace(s.Text()), href)
			if league.ID == "" || seen[league.ID] {
				return
			}
			seen[league.ID] = true
			out = append(out, league)
		})
	}
	return out
}

// sportSlugs maps ESPN fantasy URL path fragments to sport names.
var sportSlugs = map[string]string{
	"ffl":        "football",
	"football":   "football",
	"flb":        "baseball",
	"baseball":   "baseball",
	"fba":        "basketball",
	"basketball": "basketball",
	"fhl":        "hockey",
	"hockey":     "hockey",
}

func leagueFromLink(text, href string) LeagueDescriptor {
	u, err := url.Parse(href)
	if err != nil {
		return LeagueDescriptor{}
	}
	q := u.Query()

	id := q.Get("leagueId")
	if id == "" {
		// Path-style links: /football/league/12345
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i, p := range parts {
			if p == "league" && i+1 < len(parts) {
				id = parts[i+1]
				break
			}
		}
	}
	if id == "" {
		return LeagueDescriptor{}
	}

	sport := "football"
	for _, p := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if s, ok := sportSlugs[strings.ToLower(p)]; ok {
			sport = s
			break
		}
	}

	season := q.Get("seasonId")
	if season == "" {
		season = strconv.Itoa(time.Now().Year())
	}

	name := text
	if name == "" {
		name = "League " + id
	}
	return LeagueDescriptor{ID: id, Name: name, Sport: sport, Season: season}
}
