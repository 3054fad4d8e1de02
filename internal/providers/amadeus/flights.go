// internal/providers/amadeus/flights.go
package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// SearchFlightOffers posts one offer-search request and returns the decoded
// envelope. The caller owns timeouts through ctx; a day-window query passes a
// per-day deadline.
func (c *Client) SearchFlightOffers(ctx context.Context, token string, body *FlightOffersRequest) (*FlightOffersResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v2/shopping/flight-offers", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("flight-offers request failed with status %d: %s", resp.StatusCode, string(snippet))
	}

	var decoded FlightOffersResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode flight-offers response: %w", err)
	}

	return &decoded, nil
}
