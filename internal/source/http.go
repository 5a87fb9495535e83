package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/camilorojas87/mixtaped/internal/constants"
	"github.com/camilorojas87/mixtaped/internal/domain"
	"github.com/camilorojas87/mixtaped/internal/httpclient"
	"github.com/camilorojas87/mixtaped/internal/logger"
)

// Thumbnail availability markers in the song service response.
const (
	thumbnailExists  = 1
	thumbnailPending = 0
	thumbnailMissing = -1
)

// songResponse is the song service wire format.
type songResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Album     string `json:"album"`
	Artist    string `json:"artist"`
	Genre     string `json:"genre"`
	StreamURL string `json:"streamUrl"`
	Thumbnail int    `json:"thumbnail"`
}

// HTTPProvider fetches random tracks from the remote song service.
type HTTPProvider struct {
	baseURL string
	client  *httpclient.Client
	log     *logger.Logger
}

func NewHTTPProvider(baseURL string, client *httpclient.Client, log *logger.Logger) *HTTPProvider {
	if client == nil {
		client = httpclient.NewClient(nil, constants.MinRequestInterval)
	}
	if log == nil {
		log = logger.Default()
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     log.WithComponent("source"),
	}
}

func (p *HTTPProvider) FetchOne(ctx context.Context, genre domain.Genre) (*domain.Track, error) {
	endpoint := p.baseURL + "/api/music/random"
	if genre != "" {
		endpoint += "?genre=" + url.QueryEscape(string(genre))
	}

	var resp songResponse
	if err := p.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	track, err := p.toTrack(ctx, resp)
	if err != nil {
		return nil, err
	}
	return track, nil
}

func (p *HTTPProvider) FetchMany(ctx context.Context, genre domain.Genre, count int) ([]domain.Track, error) {
	if count <= 0 {
		count = constants.DefaultBatchSize
	}
	endpoint := fmt.Sprintf("%s/api/music/randomMany/%d", p.baseURL, count)
	if genre != "" {
		endpoint += "?genre=" + url.QueryEscape(string(genre))
	}

	var resps []songResponse
	if err := p.getJSON(ctx, endpoint, &resps); err != nil {
		return nil, err
	}

	tracks := make([]domain.Track, 0, len(resps))
	for _, resp := range resps {
		track, err := p.toTrack(ctx, resp)
		if err != nil {
			p.log.Warn("skipping malformed track in batch", "id", resp.ID, "error", err)
			continue
		}
		tracks = append(tracks, *track)
	}
	return tracks, nil
}

// toTrack converts a wire response, fetching the thumbnail when the service
// says one exists. Thumbnail failures are non-fatal; the track still plays.
func (p *HTTPProvider) toTrack(ctx context.Context, resp songResponse) (*domain.Track, error) {
	genre, err := domain.ParseGenre(resp.Genre)
	if err != nil {
		return nil, fmt.Errorf("song %d: %w", resp.ID, err)
	}

	track := &domain.Track{
		ID:            resp.ID,
		Title:         resp.Title,
		Artist:        resp.Artist,
		Album:         resp.Album,
		Genre:         genre,
		StreamLocator: resp.StreamURL,
	}

	if resp.Thumbnail == thumbnailExists {
		data, err := p.fetchThumbnail(ctx, resp.StreamURL)
		if err != nil {
			p.log.Warn("thumbnail fetch failed", "track_id", resp.ID, "error", err)
		} else {
			track.Thumbnail = data
		}
	}

	return track, nil
}

// fetchThumbnail derives the cover image URL from the stream locator: the
// cover sits next to the stream manifest under a fixed file name.
func (p *HTTPProvider) fetchThumbnail(ctx context.Context, streamURL string) ([]byte, error) {
	coverURL := strings.Replace(streamURL, "output.m3u8", "cover.jpg", 1)
	if !strings.HasPrefix(coverURL, "http://") && !strings.HasPrefix(coverURL, "https://") {
		coverURL = p.baseURL + "/" + strings.TrimLeft(coverURL, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // deferred cleanup

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thumbnail request returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (p *HTTPProvider) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", constants.MimeTypeJSON)

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("song service request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // deferred cleanup

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("song service returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode song service response: %w", err)
	}
	return nil
}
