package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const userAgent = "civic-portal/1.0 (+https://github.com/civic-portal)"

func defaultClient() *http.Client { return &http.Client{Timeout: 8 * time.Second} }

func getJSON(ctx context.Context, c *http.Client, endpoint string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return fmt.Errorf("status %d", res.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(out)
}

func coord(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// Nominatim queries an OpenStreetMap Nominatim /reverse endpoint.
type Nominatim struct {
	BaseURL string
	Client  *http.Client
}

func NewNominatim(baseURL string) *Nominatim {
	return &Nominatim{BaseURL: strings.TrimRight(baseURL, "/"), Client: defaultClient()}
}

func (n *Nominatim) Name() string { return "nominatim" }

func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (Address, error) {
	var body struct {
		DisplayName string            `json:"display_name"`
		Address     map[string]string `json:"address"`
		Error       string            `json:"error"`
	}
	q := url.Values{
		"format":         {"jsonv2"},
		"lat":            {coord(lat)},
		"lon":            {coord(lon)},
		"zoom":           {"18"},
		"addressdetails": {"1"},
	}
	if err := getJSON(ctx, n.Client, n.BaseURL+"/reverse", q, &body); err != nil {
		return Address{}, err
	}
	if body.Error != "" {
		return Address{}, fmt.Errorf("nominatim: %s", body.Error)
	}
	parts := 0
	for _, k := range []string{"road", "neighbourhood", "suburb", "city", "town", "village", "state_district", "state", "postcode", "country"} {
		if strings.TrimSpace(body.Address[k]) != "" {
			parts++
		}
	}
	return Address{Display: body.DisplayName, Components: parts}, nil
}

// BigDataCloud queries the keyless reverse-geocode-client endpoint.
type BigDataCloud struct {
	BaseURL string
	Client  *http.Client
}

func NewBigDataCloud(baseURL string) *BigDataCloud {
	return &BigDataCloud{BaseURL: strings.TrimRight(baseURL, "/"), Client: defaultClient()}
}

func (b *BigDataCloud) Name() string { return "bigdatacloud" }

func (b *BigDataCloud) Reverse(ctx context.Context, lat, lon float64) (Address, error) {
	var body struct {
		Locality             string `json:"locality"`
		City                 string `json:"city"`
		PrincipalSubdivision string `json:"principalSubdivision"`
		Postcode             string `json:"postcode"`
		CountryName          string `json:"countryName"`
	}
	q := url.Values{
		"latitude":         {coord(lat)},
		"longitude":        {coord(lon)},
		"localityLanguage": {"en"},
	}
	if err := getJSON(ctx, b.Client, b.BaseURL+"/data/reverse-geocode-client", q, &body); err != nil {
		return Address{}, err
	}
	var parts []string
	seen := map[string]bool{}
	for _, p := range []string{body.Locality, body.City, body.PrincipalSubdivision, body.Postcode, body.CountryName} {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		parts = append(parts, p)
	}
	return Address{Display: strings.Join(parts, ", "), Components: len(parts)}, nil
}
