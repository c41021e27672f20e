package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"curator/internal/services"
)

// TMDBClient talks to The Movie Database API v3.
type TMDBClient struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ Provider = (*TMDBClient)(nil)

// TMDBOption configures a TMDBClient.
type TMDBOption func(*TMDBClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) TMDBOption {
	return func(c *TMDBClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewTMDB creates a TMDB-backed catalog provider.
func NewTMDB(apiKey, baseURL, language string, timeout time.Duration, opts ...TMDBOption) (*TMDBClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "new", "tmdb api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "new", "tmdb base url required", nil)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &TMDBClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	MediaType    string  `json:"media_type"`
	Popularity   float64 `json:"popularity"`
	Adult        bool    `json:"adult"`
}

// Search queries TMDB. With a media-type hint it hits the dedicated movie
// or TV endpoint; without one it uses multi search so both types cost a
// single call.
func (c *TMDBClient) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "catalog", "search", "query must not be empty", nil)
	}

	var path string
	params := url.Values{}
	switch opts.MediaTypeHint {
	case MediaMovie:
		path = "/search/movie"
		if opts.Year > 0 {
			params.Set("primary_release_year", strconv.Itoa(opts.Year))
		}
	case MediaTV:
		path = "/search/tv"
		if opts.Year > 0 {
			params.Set("first_air_date_year", strconv.Itoa(opts.Year))
		}
	default:
		path = "/search/multi"
		if opts.Year > 0 {
			params.Set("year", strconv.Itoa(opts.Year))
		}
	}
	params.Set("query", query)
	if opts.IncludeAdult {
		params.Set("include_adult", "true")
	}

	var payload searchResponse
	if err := c.getJSON(ctx, path, params, &payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Results))
	for _, entry := range payload.Results {
		result, ok := entry.toResult(opts.MediaTypeHint)
		if !ok {
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

func (r searchResult) toResult(hint MediaType) (Result, bool) {
	mediaType := MediaType(r.MediaType)
	if mediaType == "" {
		mediaType = hint
	}
	if mediaType != MediaMovie && mediaType != MediaTV {
		return Result{}, false
	}
	title := r.Title
	date := r.ReleaseDate
	if mediaType == MediaTV {
		title = r.Name
		date = r.FirstAirDate
	}
	if strings.TrimSpace(title) == "" {
		// Provider data error: a result without a title is unusable.
		return Result{}, false
	}
	return Result{
		ID:         r.ID,
		MediaType:  mediaType,
		Title:      title,
		Year:       yearFromDate(date),
		Overview:   r.Overview,
		Popularity: r.Popularity,
		Adult:      r.Adult,
	}, true
}

func yearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

type releaseDatesResponse struct {
	Results []struct {
		Country      string `json:"iso_3166_1"`
		ReleaseDates []struct {
			Certification string `json:"certification"`
		} `json:"release_dates"`
	} `json:"results"`
}

type contentRatingsResponse struct {
	Results []struct {
		Country string `json:"iso_3166_1"`
		Rating  string `json:"rating"`
	} `json:"results"`
}

// FetchCertification resolves a certification age for the accepted result.
// ok is false when no understood certification board rated the title.
func (c *TMDBClient) FetchCertification(ctx context.Context, mediaType MediaType, id int64) (int, bool, error) {
	if id <= 0 {
		return 0, false, services.Wrap(services.ErrValidation, "catalog", "certification", "id must be positive", nil)
	}
	byCountry := make(map[string]string)
	switch mediaType {
	case MediaMovie:
		var payload releaseDatesResponse
		if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d/release_dates", id), url.Values{}, &payload); err != nil {
			return 0, false, err
		}
		for _, entry := range payload.Results {
			for _, release := range entry.ReleaseDates {
				if cert := strings.TrimSpace(release.Certification); cert != "" {
					byCountry[strings.ToUpper(entry.Country)] = cert
					break
				}
			}
		}
	case MediaTV:
		var payload contentRatingsResponse
		if err := c.getJSON(ctx, fmt.Sprintf("/tv/%d/content_ratings", id), url.Values{}, &payload); err != nil {
			return 0, false, err
		}
		for _, entry := range payload.Results {
			if rating := strings.TrimSpace(entry.Rating); rating != "" {
				byCountry[strings.ToUpper(entry.Country)] = rating
			}
		}
	default:
		return 0, false, services.Wrap(services.ErrValidation, "catalog", "certification", "unknown media type", nil)
	}
	age, ok := resolveCertAge(byCountry)
	return age, ok, nil
}

type detailsResponse struct {
	Title  string `json:"title"`
	Name   string `json:"name"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

// FetchGenres returns the lowercase genre names for a catalog record.
func (c *TMDBClient) FetchGenres(ctx context.Context, mediaType MediaType, id int64) ([]string, error) {
	if id <= 0 {
		return nil, services.Wrap(services.ErrValidation, "catalog", "genres", "id must be positive", nil)
	}
	if mediaType != MediaMovie && mediaType != MediaTV {
		return nil, services.Wrap(services.ErrValidation, "catalog", "genres", "unknown media type", nil)
	}
	var payload detailsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/%d", mediaType, id), url.Values{}, &payload); err != nil {
		return nil, err
	}
	genres := make([]string, 0, len(payload.Genres))
	for _, genre := range payload.Genres {
		if name := strings.ToLower(strings.TrimSpace(genre.Name)); name != "" {
			genres = append(genres, name)
		}
	}
	return genres, nil
}

// FetchEnglishTitle fetches the record's en-US title regardless of the
// configured search language.
func (c *TMDBClient) FetchEnglishTitle(ctx context.Context, mediaType MediaType, id int64) (string, error) {
	if id <= 0 {
		return "", services.Wrap(services.ErrValidation, "catalog", "english title", "id must be positive", nil)
	}
	if mediaType != MediaMovie && mediaType != MediaTV {
		return "", services.Wrap(services.ErrValidation, "catalog", "english title", "unknown media type", nil)
	}
	params := url.Values{}
	params.Set("language", "en-US")
	var payload detailsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/%d", mediaType, id), params, &payload); err != nil {
		return "", err
	}
	title := payload.Title
	if mediaType == MediaTV {
		title = payload.Name
	}
	return strings.TrimSpace(title), nil
}

type findResponse struct {
	MovieResults []searchResult `json:"movie_results"`
	TVResults    []searchResult `json:"tv_results"`
}

// FindByIMDbID resolves a tt-prefixed IMDb identifier to a catalog record.
func (c *TMDBClient) FindByIMDbID(ctx context.Context, imdbID string) (*Result, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, services.Wrap(services.ErrValidation, "catalog", "find", "imdb id must not be empty", nil)
	}
	params := url.Values{}
	params.Set("external_source", "imdb_id")

	var payload findResponse
	if err := c.getJSON(ctx, "/find/"+url.PathEscape(imdbID), params, &payload); err != nil {
		return nil, err
	}
	for _, entry := range payload.MovieResults {
		if result, ok := entry.toResult(MediaMovie); ok {
			return &result, nil
		}
	}
	for _, entry := range payload.TVResults {
		if result, ok := entry.toResult(MediaTV); ok {
			return &result, nil
		}
	}
	return nil, services.Wrap(services.ErrNotFound, "catalog", "find", "no record for "+imdbID, nil)
}

func (c *TMDBClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "catalog", "request", "parse tmdb url", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" && params.Get("language") == "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "catalog", "request", "build request", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, "catalog", "request", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		return services.Wrap(services.ErrConfiguration, "catalog", "request", "tmdb rejected api key", nil)
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "catalog", "request", fmt.Sprintf("tmdb returned 404 for %s", path), nil)
	default:
		return services.Wrap(services.ErrTransient, "catalog", "request", fmt.Sprintf("tmdb returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternalTool, "catalog", "request", "decode tmdb response", err)
	}
	return nil
}
