package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/tidwall/gjson"
)

// DefaultOpenWeatherURL is the public OpenWeatherMap API root.
const DefaultOpenWeatherURL = "https://api.openweathermap.org"

// OpenWeatherFetcher fetches current conditions from the OpenWeatherMap API in metric units.
type OpenWeatherFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewOpenWeatherFetcher creates a fetcher for baseURL. An empty baseURL uses DefaultOpenWeatherURL.
func NewOpenWeatherFetcher(baseURL, apiKey string) *OpenWeatherFetcher {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	return &OpenWeatherFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{},
	}
}

// Fetch calls /data/2.5/weather for the given coordinates.
func (f *OpenWeatherFetcher) Fetch(ctx context.Context, lat, lon float64) (Observation, error) {
	if f.APIKey == "" {
		return Observation{}, ErrMissingCredentials
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", f.APIKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return Observation{}, platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "failed to create weather request")
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Observation{}, platformerrors.Wrap(err, platformerrors.CodeTimeout, "weather request timed out")
		}
		return Observation{}, platformerrors.Wrap(err, platformerrors.CodeNetwork, "weather request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Observation{}, platformerrors.Wrap(err, platformerrors.CodeNetwork, "failed to read weather response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := platformerrors.Newf(platformerrors.CodeUnavailable, "weather provider returned status %d", resp.StatusCode)
		return Observation{}, platformerrors.WithContext(err, "message", gjson.GetBytes(body, "message").String())
	}

	return parseObservation(body)
}

// parseObservation reads the fields of an OpenWeatherMap current-weather payload.
func parseObservation(body []byte) (Observation, error) {
	if !gjson.ValidBytes(body) {
		return Observation{}, platformerrors.New(platformerrors.CodeInvalidInput, "weather response is not valid JSON")
	}

	doc := gjson.ParseBytes(body)
	temp := doc.Get("main.temp")
	if !temp.Exists() {
		return Observation{}, platformerrors.New(platformerrors.CodeInvalidInput, "weather response has no main.temp")
	}

	return Observation{
		PlaceName:   doc.Get("name").String(),
		Temperature: temp.Float(),
		FeelsLike:   doc.Get("main.feels_like").Float(),
		Humidity:    int(doc.Get("main.humidity").Int()),
		Condition:   doc.Get("weather.0.main").String(),
		Description: doc.Get("weather.0.description").String(),
		Icon:        doc.Get("weather.0.icon").String(),
	}, nil
}

func (f *OpenWeatherFetcher) String() string {
	return fmt.Sprintf("openweathermap(%s)", f.BaseURL)
}
