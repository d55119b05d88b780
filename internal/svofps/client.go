// Package svofps is a client for the SVO Filter Profile Service, the
// remote source of filter index and transmission data. It implements
// the cache package's Fetcher interface.
package svofps

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"filtercache/internal/votable"
)

// DefaultBaseURL is the FPS query endpoint.
const DefaultBaseURL = "http://svo2.cab.inta-csic.es/svo/theory/fps/fps.php"

const defaultTimeout = 60 * time.Second

// Client queries the FPS over HTTP. Timeout policy lives here, not in
// the cache core.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the given endpoint. An empty baseURL selects
// DefaultBaseURL; a zero timeout selects a 60s default.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchIndex retrieves the index of all filters known to the FPS.
func (c *Client) FetchIndex(ctx context.Context) (votable.Table, error) {
	// The FPS has no "list everything" call; the documented trick is a
	// wavelength-effective range query covering all physical filters.
	table, err := c.query(ctx, url.Values{
		"WavelengthEff_min": {"0"},
		"WavelengthEff_max": {"100000000000"},
	})
	if err != nil {
		return votable.Table{}, fmt.Errorf("fetching filter index: %w", err)
	}

	return table, nil
}

// FetchTransmission retrieves the transmission table for one filter
// given its canonical SVO ID ("facility/instrument.filter").
func (c *Client) FetchTransmission(ctx context.Context, svoID string) (votable.Table, error) {
	table, err := c.query(ctx, url.Values{"ID": {svoID}})
	if err != nil {
		return votable.Table{}, fmt.Errorf("fetching transmission data for %s: %w", svoID, err)
	}

	return table, nil
}

func (c *Client) query(ctx context.Context, params url.Values) (votable.Table, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if reqErr != nil {
		return votable.Table{}, reqErr
	}

	resp, doErr := c.http.Do(req)
	if doErr != nil {
		return votable.Table{}, doErr
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return votable.Table{}, fmt.Errorf("FPS returned status %d", resp.StatusCode)
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return votable.Table{}, readErr
	}

	return parseResponse(body)
}

type queryInfo struct {
	Name   string `xml:"name,attr"`
	Value  string `xml:"value,attr"`
	Reason string `xml:",chardata"`
}

// parseResponse decodes an FPS VOTable response body. The FPS reports
// errors (unknown filter ID, bad parameters) as an INFO element inside
// an otherwise empty VOTable rather than an HTTP error status.
func parseResponse(body []byte) (votable.Table, error) {
	var probe struct {
		Infos    []queryInfo `xml:"INFO"`
		ResInfos []queryInfo `xml:"RESOURCE>INFO"`
	}

	if err := xml.Unmarshal(body, &probe); err == nil {
		for _, info := range append(probe.Infos, probe.ResInfos...) {
			if info.Name == "QUERY_STATUS" && info.Value == "ERROR" {
				return votable.Table{}, fmt.Errorf("FPS query failed: %s", strings.TrimSpace(info.Reason))
			}
		}
	}

	table, err := votable.ReadFrom(bytes.NewReader(body))
	if err != nil {
		return votable.Table{}, err
	}

	return table, nil
}
