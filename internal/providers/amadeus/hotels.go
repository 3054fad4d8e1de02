// internal/providers/amadeus/hotels.go
package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HotelIDsByCity returns up to limit lodging identifiers for a city code.
func (c *Client) HotelIDsByCity(ctx context.Context, token, cityCode string, limit int) ([]string, error) {
	endpoint := c.baseURL + "/v1/reference-data/locations/hotels/by-city?cityCode=" + url.QueryEscape(cityCode)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create hotels-by-city request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute hotels-by-city request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("hotels-by-city request failed with status %d: %s", resp.StatusCode, string(snippet))
	}

	var decoded hotelsByCityResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode hotels-by-city response: %w", err)
	}

	ids := make([]string, 0, len(decoded.Data))
	for _, h := range decoded.Data {
		if h.HotelID != "" {
			ids = append(ids, h.HotelID)
		}
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	return ids, nil
}

// HotelOffers fetches offers for a set of hotel IDs over a stay window.
func (c *Client) HotelOffers(ctx context.Context, token string, hotelIDs []string, checkIn, checkOut, currency string) ([]HotelOfferSet, error) {
	params := url.Values{}
	params.Set("hotelIds", strings.Join(hotelIDs, ","))
	params.Set("checkInDate", checkIn)
	params.Set("checkOutDate", checkOut)
	params.Set("currencyCode", currency)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v3/shopping/hotel-offers?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create hotel-offers request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute hotel-offers request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("hotel-offers request failed with status %d: %s", resp.StatusCode, string(snippet))
	}

	var decoded hotelOffersResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode hotel-offers response: %w", err)
	}

	return decoded.Data, nil
}
