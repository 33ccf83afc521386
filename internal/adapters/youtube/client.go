package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"workflowsvc/internal/metrics"
	"workflowsvc/pkg/errors"
)

const (
	DefaultBaseURL = "https://www.youtube.com"

	innertubeClientName    = "ANDROID"
	innertubeClientVersion = "20.10.38"
)

var (
	innertubeKeyPattern = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)
	markupPattern       = regexp.MustCompile(`<[^>]*>`)
)

// Track is one caption track advertised for a video
type Track struct {
	BaseURL      string
	LanguageCode string
	Name         string
	Generated    bool
}

// TrackList is the caption listing plus the video's playability
type TrackList struct {
	VideoID string
	Status  string // playability status, "OK" when the video can be played
	Reason  string
	Tracks  []Track
}

// Playable reports whether the video can be played at all
func (l TrackList) Playable() bool { return l.Status == "OK" }

// Segment is one timed caption line
type Segment struct {
	Text     string
	Start    float64 // seconds
	Duration float64 // seconds
}

// TrackLister lists the caption tracks of a video without downloading any of them
type TrackLister interface {
	ListTracks(ctx context.Context, videoID string) (TrackList, error)
}

// SegmentFetcher downloads the segments of one caption track
type SegmentFetcher interface {
	FetchSegments(ctx context.Context, track Track) ([]Segment, error)
}

// CaptionProvider is the full transcript provider port
type CaptionProvider interface {
	TrackLister
	SegmentFetcher
}

// Config configures the caption client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to YouTube's innertube player endpoint for caption listings
// and to the timedtext endpoint for caption segments.
type Client struct {
	http *resty.Client
}

// NewClient creates a caption client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept-Language", "en-US")

	return &Client{http: client}
}

type playerRequest struct {
	Context struct {
		Client struct {
			ClientName    string `json:"clientName"`
			ClientVersion string `json:"clientVersion"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		Renderer struct {
			CaptionTracks []struct {
				BaseURL string `json:"baseUrl"`
				Name    struct {
					Runs []struct {
						Text string `json:"text"`
					} `json:"runs"`
				} `json:"name"`
				LanguageCode string `json:"languageCode"`
				Kind         string `json:"kind"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// ListTracks implements TrackLister
func (c *Client) ListTracks(ctx context.Context, videoID string) (TrackList, error) {
	apiKey, err := c.fetchInnertubeKey(ctx, videoID)
	if err != nil {
		return TrackList{}, err
	}

	var body playerRequest
	body.Context.Client.ClientName = innertubeClientName
	body.Context.Client.ClientVersion = innertubeClientVersion
	body.VideoID = videoID

	var player playerResponse
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", apiKey).
		SetBody(body).
		SetResult(&player).
		Post("/youtubei/v1/player")
	metrics.RecordTranscriptAPICall("player", time.Since(start), callErr(resp, err))
	if err != nil {
		return TrackList{}, transportErr(ctx, err, "innertube player request for %s", videoID)
	}
	if resp.StatusCode() != http.StatusOK {
		return TrackList{}, errors.Wrapf(errors.ErrExternal, "innertube player returned HTTP %d for %s", resp.StatusCode(), videoID)
	}

	list := TrackList{
		VideoID: videoID,
		Status:  player.PlayabilityStatus.Status,
		Reason:  player.PlayabilityStatus.Reason,
	}
	if player.Captions == nil {
		return list, nil
	}

	for _, t := range player.Captions.Renderer.CaptionTracks {
		var name strings.Builder
		for _, run := range t.Name.Runs {
			name.WriteString(run.Text)
		}
		list.Tracks = append(list.Tracks, Track{
			BaseURL:      strings.Replace(t.BaseURL, "&fmt=srv3", "", 1),
			LanguageCode: t.LanguageCode,
			Name:         name.String(),
			Generated:    t.Kind == "asr",
		})
	}

	return list, nil
}

func (c *Client) fetchInnertubeKey(ctx context.Context, videoID string) (string, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("v", videoID).
		Get("/watch")
	metrics.RecordTranscriptAPICall("watch", time.Since(start), callErr(resp, err))
	if err != nil {
		return "", transportErr(ctx, err, "watch page for %s", videoID)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return "", errors.Wrapf(errors.ErrRateLimitExceeded, "watch page for %s", videoID)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", errors.Wrapf(errors.ErrExternal, "watch page returned HTTP %d for %s", resp.StatusCode(), videoID)
	}

	page := resp.String()
	if strings.Contains(page, `class="g-recaptcha"`) {
		return "", errors.Wrapf(errors.ErrRateLimitExceeded, "captcha challenge on watch page for %s", videoID)
	}

	m := innertubeKeyPattern.FindStringSubmatch(page)
	if m == nil {
		return "", errors.Wrapf(errors.ErrExternal, "innertube api key not found on watch page for %s", videoID)
	}
	return m[1], nil
}

type timedText struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

// FetchSegments implements SegmentFetcher
func (c *Client) FetchSegments(ctx context.Context, track Track) ([]Segment, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		Get(track.BaseURL)
	metrics.RecordTranscriptAPICall("timedtext", time.Since(start), callErr(resp, err))
	if err != nil {
		return nil, transportErr(ctx, err, "timedtext request for %s", track.LanguageCode)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrExternal, "timedtext returned HTTP %d", resp.StatusCode())
	}

	return parseTimedText(resp.Body())
}

func parseTimedText(raw []byte) ([]Segment, error) {
	var doc timedText
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "parse timedtext: %v", err)
	}

	segments := make([]Segment, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		text := strings.TrimSpace(markupPattern.ReplaceAllString(html.UnescapeString(line.Text), ""))
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(line.Start, 64)
		dur, _ := strconv.ParseFloat(line.Dur, 64)
		segments = append(segments, Segment{Text: text, Start: start, Duration: dur})
	}
	return segments, nil
}

// transportErr keeps cancellation visible to callers and classifies the rest as external
func transportErr(ctx context.Context, err error, format string, args ...interface{}) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Wrapf(ctxErr, format, args...)
	}
	return errors.Wrapf(errors.ErrExternal, format+": %v", append(args, err)...)
}

func callErr(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp != nil && resp.IsError() {
		return fmt.Errorf("HTTP %d", resp.StatusCode())
	}
	return nil
}
