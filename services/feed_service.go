package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/mc-discord-bots/config"
	"github.com/fenilmodi00/mc-discord-bots/models"
	"github.com/fenilmodi00/mc-discord-bots/shared"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// ShowFeed is the parsed state of one show's RSS feed, newest episode first
type ShowFeed struct {
	Name      string
	Title     string
	ImageURL  string
	Episodes  []models.Episode
	FetchedAt time.Time
}

// FeedService keeps an in-memory copy of every configured show feed and answers
// episode lookups against it
type FeedService struct {
	sources     []config.FeedSource
	politeness  *config.FeedPolitenessConfig
	rateLimiter *shared.HTTPRequestRateLimiter
	timeout     time.Duration

	mutex sync.RWMutex
	shows map[string]*ShowFeed
}

var episodeNumberPattern = regexp.MustCompile(`(?i)(?:#|episode\s+|ep\.?\s*)(\d+)`)

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC3339,
}

// NewFeedService creates a feed service for sources. A nil politeness config
// uses the defaults.
func NewFeedService(sources []config.FeedSource, politeness *config.FeedPolitenessConfig) *FeedService {
	if politeness == nil {
		politeness = config.DefaultFeedPolitenessConfig()
	}
	return &FeedService{
		sources:     sources,
		politeness:  politeness,
		rateLimiter: shared.NewHTTPRequestRateLimiter(politeness.MinimumDelay),
		timeout:     30 * time.Second,
		shows:       make(map[string]*ShowFeed),
	}
}

// Refresh re-fetches every feed. A feed that fails keeps its previous episodes;
// all failures are returned joined.
func (s *FeedService) Refresh(ctx context.Context) error {
	var errs []error
	for _, source := range s.sources {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		show, err := s.fetchFeed(source)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"component": "FeedService",
				"show":      source.Name,
				"url":       source.URL,
				"error":     err.Error(),
			}).Warn("Failed to refresh feed")
			errs = append(errs, fmt.Errorf("feed %s: %w", source.Name, err))
			continue
		}

		s.mutex.Lock()
		s.shows[source.Name] = show
		s.mutex.Unlock()

		logrus.WithFields(logrus.Fields{
			"component": "FeedService",
			"show":      source.Name,
			"episodes":  len(show.Episodes),
		}).Debug("Refreshed feed")
	}
	return errors.Join(errs...)
}

func (s *FeedService) fetchFeed(source config.FeedSource) (*ShowFeed, error) {
	collector := colly.NewCollector(
		colly.UserAgent(s.politeness.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(s.timeout)

	show := &ShowFeed{Name: source.Name, FetchedAt: time.Now()}
	var fetchErr error

	collector.OnXML("//channel", func(e *colly.XMLElement) {
		show.Title = e.ChildText("title")
		show.ImageURL = e.ChildText("image/url")
		if show.ImageURL == "" {
			show.ImageURL = e.ChildAttr("itunes:image", "href")
		}
	})

	collector.OnXML("//item", func(e *colly.XMLElement) {
		show.Episodes = append(show.Episodes, parseItem(source.Name, e))
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := collector.Visit(source.URL); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, err
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	for i := range show.Episodes {
		if show.Episodes[i].ImageURL == "" {
			show.Episodes[i].ImageURL = show.ImageURL
		}
	}
	sortNewestFirst(show.Episodes)
	return show, nil
}

func parseItem(showName string, e *colly.XMLElement) models.Episode {
	title := strings.TrimSpace(e.ChildText("title"))
	episode := models.Episode{
		Show:     showName,
		Title:    title,
		URL:      strings.TrimSpace(e.ChildText("link")),
		Summary:  htmlToText(e.ChildText("description")),
		ImageURL: e.ChildAttr("itunes:image", "href"),
	}

	if published := strings.TrimSpace(e.ChildText("pubDate")); published != "" {
		for _, layout := range pubDateLayouts {
			if t, err := time.Parse(layout, published); err == nil {
				episode.Published = t
				break
			}
		}
	}

	if number, err := strconv.Atoi(strings.TrimSpace(e.ChildText("itunes:episode"))); err == nil {
		episode.EpisodeNumber = number
	} else if match := episodeNumberPattern.FindStringSubmatch(title); match != nil {
		episode.EpisodeNumber, _ = strconv.Atoi(match[1])
	}

	return episode
}

const textBlockSelector = "p, div, li, h1, h2, h3, h4, blockquote"

// htmlToText flattens an HTML description into single-spaced plain text
func htmlToText(fragment string) string {
	if fragment == "" {
		return ""
	}
	document, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	// Text() concatenates sibling blocks, so pad them to keep word boundaries
	document.Find("br").ReplaceWithHtml(" ")
	document.Find(textBlockSelector).Each(func(_ int, block *goquery.Selection) {
		block.AppendHtml(" ")
	})
	return strings.Join(strings.Fields(document.Text()), " ")
}

func sortNewestFirst(episodes []models.Episode) {
	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].Published.After(episodes[j].Published)
	})
}

// Load installs a show's episodes without fetching. Used to seed the service in tests.
func (s *FeedService) Load(name, title, imageURL string, episodes []models.Episode) {
	sorted := make([]models.Episode, len(episodes))
	copy(sorted, episodes)
	sortNewestFirst(sorted)

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.shows[name] = &ShowFeed{
		Name:      name,
		Title:     title,
		ImageURL:  imageURL,
		Episodes:  sorted,
		FetchedAt: time.Now(),
	}
}

// RequestCount returns how many feed fetches have been made
func (s *FeedService) RequestCount() int64 {
	return s.rateLimiter.GetRequestCount()
}

// HasShow reports whether name is a configured or loaded show
func (s *FeedService) HasShow(name string) bool {
	s.mutex.RLock()
	_, loaded := s.shows[name]
	s.mutex.RUnlock()
	if loaded {
		return true
	}
	for _, source := range s.sources {
		if source.Name == name {
			return true
		}
	}
	return false
}

// HasEpisodes reports whether name has been fetched with at least one episode
func (s *FeedService) HasEpisodes(name string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	show, ok := s.shows[name]
	return ok && len(show.Episodes) > 0
}

// Show returns the current state of one feed
func (s *FeedService) Show(name string) (ShowFeed, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	show, ok := s.shows[name]
	if !ok {
		return ShowFeed{}, false
	}
	return *show, true
}

// ShowNames lists configured shows in configuration order, followed by any
// shows only loaded directly
func (s *FeedService) ShowNames() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	seen := make(map[string]bool, len(s.sources))
	names := make([]string, 0, len(s.sources))
	for _, source := range s.sources {
		seen[source.Name] = true
		names = append(names, source.Name)
	}
	var extra []string
	for name := range s.shows {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// GetEpisodeByURL finds an episode of show by its link
func (s *FeedService) GetEpisodeByURL(show, link string) (*models.Episode, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	feed, ok := s.shows[show]
	if !ok {
		return nil, false
	}
	target := normalizeLink(link)
	if target == "" {
		return nil, false
	}
	for i := range feed.Episodes {
		if normalizeLink(feed.Episodes[i].URL) == target {
			episode := feed.Episodes[i]
			return &episode, true
		}
	}
	return nil, false
}

// FindEpisodeByURL searches every show in configuration order and returns the
// first match
func (s *FeedService) FindEpisodeByURL(link string) (*models.Episode, bool) {
	for _, name := range s.ShowNames() {
		if episode, ok := s.GetEpisodeByURL(name, link); ok {
			return episode, true
		}
	}
	return nil, false
}

// GetEpisodeByNumber finds an episode of show by its episode number
func (s *FeedService) GetEpisodeByNumber(show string, number int) (*models.Episode, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	feed, ok := s.shows[show]
	if !ok {
		return nil, false
	}
	for i := range feed.Episodes {
		if feed.Episodes[i].EpisodeNumber == number {
			episode := feed.Episodes[i]
			return &episode, true
		}
	}
	return nil, false
}

// Search returns episodes of show mentioning term, title matches ranked above
// summary matches and newer episodes first within a rank
func (s *FeedService) Search(show, term string) []models.Episode {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	feed, ok := s.shows[show]
	if !ok {
		return nil
	}

	type scored struct {
		episode models.Episode
		score   int
	}
	var matches []scored
	for _, episode := range feed.Episodes {
		score := 2*strings.Count(strings.ToLower(episode.Title), term) +
			strings.Count(strings.ToLower(episode.Summary), term)
		if score > 0 {
			matches = append(matches, scored{episode: episode, score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	results := make([]models.Episode, len(matches))
	for i, match := range matches {
		results[i] = match.episode
	}
	return results
}

// FetchRecent returns the newest episode of show
func (s *FeedService) FetchRecent(show string) (*models.Episode, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	feed, ok := s.shows[show]
	if !ok || len(feed.Episodes) == 0 {
		return nil, false
	}
	episode := feed.Episodes[0]
	return &episode, true
}

func normalizeLink(link string) string {
	return strings.TrimRight(strings.TrimSpace(link), "/")
}
