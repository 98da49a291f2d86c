/*
Package market fetches currency price series from Twelve Data.

Purely decorative: the dashboard performance chart plots a 5-minute series of
a currency pair. Failures surface as a generic external-service error and
never block anything else.
*/
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ablelink/invest-engine/invest"
)

const defaultTimeSeriesURL = "https://api.twelvedata.com/time_series"

// maxPoints is how much history the chart shows.
const maxPoints = 30

// Point is one chart sample. Time is the "HH:MM" wall-clock label the chart
// renders.
type Point struct {
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// Fetcher returns a chronological price series for a currency pair.
type Fetcher interface {
	Series(ctx context.Context, from, to string) ([]Point, error)
}

// TwelveData implements Fetcher against the Twelve Data REST API.
type TwelveData struct {
	APIKey  string
	BaseURL string // test override
	Client  *http.Client
}

var _ Fetcher = (*TwelveData)(nil)

type timeSeriesResponse struct {
	Values []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Series fetches the 5-minute series for from/to (e.g. "USD", "NGN"),
// oldest-first, capped at the last 30 points.
func (t *TwelveData) Series(ctx context.Context, from, to string) ([]Point, error) {
	base := t.BaseURL
	if base == "" {
		base = defaultTimeSeriesURL
	}
	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	q := url.Values{}
	q.Set("symbol", from+"/"+to)
	q.Set("interval", "5min")
	q.Set("apikey", t.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &invest.ExternalServiceError{Service: "twelvedata", Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &invest.ExternalServiceError{Service: "twelvedata", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &invest.ExternalServiceError{
			Service: "twelvedata",
			Err:     fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &invest.ExternalServiceError{Service: "twelvedata", Err: err}
	}

	var parsed timeSeriesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &invest.ExternalServiceError{Service: "twelvedata", Err: err}
	}
	if parsed.Status == "error" || len(parsed.Values) == 0 {
		return nil, &invest.ExternalServiceError{
			Service: "twelvedata",
			Err:     fmt.Errorf("api error: %s", parsed.Message),
		}
	}

	// The API returns newest-first; reverse into chart order.
	points := make([]Point, 0, len(parsed.Values))
	for i := len(parsed.Values) - 1; i >= 0; i-- {
		v := parsed.Values[i]
		price, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			continue // skip malformed samples rather than failing the chart
		}
		points = append(points, Point{Time: clockLabel(v.Datetime), Price: price})
	}

	if len(points) > maxPoints {
		points = points[len(points)-maxPoints:]
	}
	return points, nil
}

// clockLabel extracts "HH:MM" from "2006-01-02 15:04:05" timestamps.
func clockLabel(datetime string) string {
	if len(datetime) >= 16 {
		return datetime[11:16]
	}
	return datetime
}
