package marketdata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"DriftSentinel/internal/model"
)

const (
	defaultDataURL     = "https://data.alpaca.markets/v2/stocks/bars"
	defaultCalendarURL = "https://paper-api.alpaca.markets/v2/calendar"

	// Alpaca caps bar responses at 10000 rows per page.
	pageLimit = "10000"
)

// AlpacaSource implements BarSource using the Alpaca Market Data API.
// Credentials are passed in explicitly; there is no process-wide state.
type AlpacaSource struct {
	DataURL     string
	CalendarURL string
	KeyID       string
	SecretKey   string
	Client      *http.Client
}

// NewAlpacaSource creates a source with optional proxy support.
func NewAlpacaSource(keyID, secretKey, proxyURL string) *AlpacaSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &AlpacaSource{
		DataURL:     defaultDataURL,
		CalendarURL: defaultCalendarURL,
		KeyID:       keyID,
		SecretKey:   secretKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (s *AlpacaSource) Name() string { return "alpaca" }

// alpacaBar is the bar shape returned by the bars endpoint.
type alpacaBar struct {
	Open   float64   `json:"o"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume int64     `json:"v"`
	Time   time.Time `json:"t"`
}

type alpacaBarsResponse struct {
	Bars          map[string][]alpacaBar `json:"bars"`
	NextPageToken string                 `json:"next_page_token"`
}

// FetchBars pulls all pages for the requested range into one ordered slice.
func (s *AlpacaSource) FetchBars(ticker string, tf Timeframe, start, end time.Time) ([]model.Bar, error) {
	var all []model.Bar
	pageToken := ""

	for {
		q := url.Values{}
		q.Set("symbols", ticker)
		q.Set("timeframe", tf.String())
		q.Set("start", start.UTC().Truncate(time.Minute).Format(time.RFC3339))
		q.Set("end", end.UTC().Truncate(time.Minute).Format(time.RFC3339))
		q.Set("limit", pageLimit)
		q.Set("adjustment", "raw")
		q.Set("feed", "sip")
		q.Set("sort", "asc")
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}

		body, err := s.get(s.DataURL + "?" + q.Encode())
		if err != nil {
			return nil, fmt.Errorf("fetch bars %s: %w", ticker, err)
		}

		var resp alpacaBarsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode bars: %w", err)
		}

		page := resp.Bars[ticker]
		if len(page) == 0 {
			if len(all) == 0 {
				return nil, fmt.Errorf("fetch bars %s: %w", ticker, ErrNoData)
			}
			break
		}
		for _, b := range page {
			all = append(all, model.Bar{
				Timestamp: b.Time.UTC(),
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    b.Volume,
			})
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	// Ensure chronological order
	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp.Before(all[j].Timestamp) })
	return all, nil
}

// FetchTradingDays returns the market calendar for one year.
func (s *AlpacaSource) FetchTradingDays(year int) ([]string, error) {
	q := url.Values{}
	q.Set("start", fmt.Sprintf("%d-01-01", year))
	q.Set("end", fmt.Sprintf("%d-12-31", year))

	body, err := s.get(s.CalendarURL + "?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch trading days %d: %w", year, err)
	}

	var calendar []struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(body, &calendar); err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}
	if len(calendar) == 0 {
		return nil, fmt.Errorf("trading calendar %d: %w", year, ErrNoData)
	}

	days := make([]string, len(calendar))
	for i, d := range calendar {
		days[i] = d.Date
	}
	return days, nil
}

func (s *AlpacaSource) get(endpoint string) ([]byte, error) {
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("APCA-API-KEY-ID", s.KeyID)
	req.Header.Set("APCA-API-SECRET-KEY", s.SecretKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
