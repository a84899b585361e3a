package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nbmusic/remote/internal/models"
)

const (
	searchURL  = "https://api.bilibili.com/x/web-interface/search/type"
	viewURL    = "https://api.bilibili.com/x/web-interface/view"
	playURLURL = "https://api.bilibili.com/x/player/playurl"
)

// BilibiliService is a Source backed by the Bilibili web API.
type BilibiliService struct {
	httpClient *http.Client
	userAgent  string
}

type bilibiliSearchResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Result []bilibiliSearchItem `json:"result"`
	} `json:"data"`
}

type bilibiliSearchItem struct {
	BVID        string `json:"bvid"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Pic         string `json:"pic"`
	Duration    string `json:"duration"`
	Play        int64  `json:"play"`
	Description string `json:"description"`
}

type bilibiliViewResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		CID int64 `json:"cid"`
	} `json:"data"`
}

type bilibiliPlayURLResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Dash struct {
			Audio []struct {
				BaseURL   string   `json:"baseUrl"`
				BackupURL []string `json:"backupUrl"`
			} `json:"audio"`
		} `json:"dash"`
	} `json:"data"`
}

// NewBilibiliService creates a BilibiliService with the given request timeout.
func NewBilibiliService(timeout time.Duration) *BilibiliService {
	return &BilibiliService{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
	}
}

// Search queries the catalog for videos matching the keyword, ordered by
// popularity, one page at a time.
func (s *BilibiliService) Search(ctx context.Context, keyword string, page int) ([]models.CatalogEntry, error) {
	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("search_type", "video")
	q.Set("keyword", keyword)
	q.Set("page", strconv.Itoa(page))
	q.Set("order", "click")

	var searchResp bilibiliSearchResponse
	if err := s.getJSON(ctx, searchURL+"?"+q.Encode(), &searchResp); err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if searchResp.Code != 0 {
		return nil, fmt.Errorf("search rejected by upstream: code %d: %s", searchResp.Code, searchResp.Message)
	}

	entries := make([]models.CatalogEntry, len(searchResp.Data.Result))
	for i, item := range searchResp.Data.Result {
		entries[i] = models.CatalogEntry{
			ID:              item.BVID,
			Title:           cleanTitle(item.Title),
			Artist:          artistOrDefault(item.Author),
			ArtworkURL:      normalizeArtworkURL(item.Pic),
			DurationSeconds: parseClockDuration(item.Duration),
			PlayCount:       item.Play,
			Description:     item.Description,
		}
	}

	return entries, nil
}

// ResolveMediaURLs resolves a video identifier to its audio stream URLs. It
// returns a primary URL, a fallback, and the stream's cid.
func (s *BilibiliService) ResolveMediaURLs(ctx context.Context, id string) (MediaURLs, error) {
	q := url.Values{}
	q.Set("bvid", id)

	var viewResp bilibiliViewResponse
	if err := s.getJSON(ctx, viewURL+"?"+q.Encode(), &viewResp); err != nil {
		return MediaURLs{}, fmt.Errorf("view request failed: %w", err)
	}
	if viewResp.Code != 0 {
		return MediaURLs{}, fmt.Errorf("view rejected by upstream: code %d: %s", viewResp.Code, viewResp.Message)
	}

	q.Set("cid", strconv.FormatInt(viewResp.Data.CID, 10))
	q.Set("fnval", "16") // request DASH streams

	var playResp bilibiliPlayURLResponse
	if err := s.getJSON(ctx, playURLURL+"?"+q.Encode(), &playResp); err != nil {
		return MediaURLs{}, fmt.Errorf("playurl request failed: %w", err)
	}
	if playResp.Code != 0 {
		return MediaURLs{}, fmt.Errorf("playurl rejected by upstream: code %d: %s", playResp.Code, playResp.Message)
	}
	if len(playResp.Data.Dash.Audio) == 0 {
		return MediaURLs{}, fmt.Errorf("no audio streams for %s", id)
	}

	audio := playResp.Data.Dash.Audio[0]
	urls := MediaURLs{
		Primary:     audio.BaseURL,
		AuxStreamID: strconv.FormatInt(viewResp.Data.CID, 10),
	}
	if len(audio.BackupURL) > 0 {
		urls.Fallback = audio.BackupURL[0]
	} else {
		urls.Fallback = audio.BaseURL
	}

	return urls, nil
}

func (s *BilibiliService) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Referer", "https://www.bilibili.com")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// keywordTagRe matches the highlight markup the search API embeds in titles.
var keywordTagRe = regexp.MustCompile(`<em class="keyword">|</em>`)

// cleanTitle strips search-highlight markup from a result title.
func cleanTitle(title string) string {
	return keywordTagRe.ReplaceAllString(title, "")
}

// artistOrDefault substitutes the placeholder artist for empty authors.
func artistOrDefault(author string) string {
	if author == "" {
		return "Unknown Artist"
	}
	return author
}

// normalizeArtworkURL upgrades protocol-relative artwork URLs to https.
func normalizeArtworkURL(pic string) string {
	switch {
	case pic == "":
		return ""
	case strings.HasPrefix(pic, "http"):
		return pic
	case strings.HasPrefix(pic, "//"):
		return "https:" + pic
	default:
		return "https://" + pic
	}
}

// parseClockDuration parses a "MM:SS" or "HH:MM:SS" duration to seconds.
func parseClockDuration(d string) int {
	if d == "" {
		return 0
	}
	parts := strings.Split(d, ":")
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}
