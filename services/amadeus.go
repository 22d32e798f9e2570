package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ─── Types ────────────────────────────────────────────────────────────────────

type Flight struct {
	Price               float64 `json:"price"`
	Currency            string  `json:"currency,omitempty"`
	Airline             string  `json:"airline"`
	AirlineCode         string  `json:"airline_code,omitempty"`
	FlightNumber        string  `json:"flight_number,omitempty"`
	DepartureTime       string  `json:"departure_time"`
	ArrivalTime         string  `json:"arrival_time"`
	Duration            string  `json:"duration"`
	Stops               int     `json:"stops"`
	ReturnDepartureTime string  `json:"return_departure_time,omitempty"`
	ReturnArrivalTime   string  `json:"return_arrival_time,omitempty"`
	ReturnDuration      string  `json:"return_duration,omitempty"`
	ReturnStops         int     `json:"return_stops,omitempty"`
}

type Hotel struct {
	Name       string  `json:"name"`
	HotelID    string  `json:"hotel_id,omitempty"`
	TotalPrice float64 `json:"total_price"`
	Currency   string  `json:"currency,omitempty"`
	Rating     float64 `json:"rating"`
	Location   string  `json:"location"`
}

// FlightQuery carries the round-trip search parameters. Origin and
// Destination may be IATA codes or city names.
type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
	MaxPrice      float64
}

// HotelQuery carries the stay search parameters. MaxTotal caps the price of
// the whole stay; zero means no cap.
type HotelQuery struct {
	Destination string
	CheckIn     string
	CheckOut    string
	Adults      int
	MaxTotal    float64
}

// ─── Amadeus Client ───────────────────────────────────────────────────────────

type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
}

func NewAmadeusClient(clientID, clientSecret, baseURL string) *AmadeusClient {
	return &AmadeusClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether client credentials were supplied.
func (c *AmadeusClient) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return result.AccessToken, nil
}

// getToken returns the cached token, refreshing it once it is within 30s of
// expiry. Flight and hotel searches share the token concurrently.
func (c *AmadeusClient) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		return c.refreshToken(ctx)
	}
	return token, nil
}

func (c *AmadeusClient) get(ctx context.Context, path string, query url.Values, out any) error {
	token, err := c.getToken(ctx)
	if err != nil {
		return fmt.Errorf("auth failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("amadeus error (%d): %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}

// ─── Location resolution ──────────────────────────────────────────────────────

// resolveCityCode turns a free-text destination into an IATA city code.
// Three-letter inputs are taken as codes already.
func (c *AmadeusClient) resolveCityCode(ctx context.Context, place string) (string, error) {
	place = strings.TrimSpace(place)
	if isIATACode(place) {
		return strings.ToUpper(place), nil
	}

	q := url.Values{}
	q.Set("subType", "CITY")
	q.Set("keyword", place)
	q.Set("page[limit]", "1")

	var resp struct {
		Data []struct {
			IataCode string `json:"iataCode"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/v1/reference-data/locations", q, &resp); err != nil {
		return "", fmt.Errorf("location lookup failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].IataCode == "" {
		return "", fmt.Errorf("no IATA city code for %q", place)
	}
	return resp.Data[0].IataCode, nil
}

func isIATACode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

// ─── Flight Search ────────────────────────────────────────────────────────────

type amadeusSegment struct {
	Departure struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
	Number      string `json:"number"`
}

type amadeusItinerary struct {
	Duration string           `json:"duration"`
	Segments []amadeusSegment `json:"segments"`
}

type amadeusFlightOffer struct {
	Price struct {
		GrandTotal string `json:"grandTotal"`
		Currency   string `json:"currency"`
	} `json:"price"`
	Itineraries            []amadeusItinerary `json:"itineraries"`
	ValidatingAirlineCodes []string           `json:"validatingAirlineCodes"`
}

// SearchFlights returns round-trip offers priced at or under MaxPrice.
func (c *AmadeusClient) SearchFlights(ctx context.Context, fq FlightQuery) ([]Flight, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	origin, err := c.resolveCityCode(ctx, fq.Origin)
	if err != nil {
		return nil, err
	}
	destination, err := c.resolveCityCode(ctx, fq.Destination)
	if err != nil {
		return nil, err
	}

	adults := fq.Adults
	if adults <= 0 {
		adults = 1
	}

	q := url.Values{}
	q.Set("originLocationCode", origin)
	q.Set("destinationLocationCode", destination)
	q.Set("departureDate", fq.DepartureDate)
	q.Set("returnDate", fq.ReturnDate)
	q.Set("adults", strconv.Itoa(adults))
	q.Set("currencyCode", "EUR")
	q.Set("max", "6")
	if fq.MaxPrice > 0 {
		q.Set("maxPrice", strconv.Itoa(int(fq.MaxPrice)))
	}

	var resp struct {
		Data []amadeusFlightOffer `json:"data"`
	}
	if err := c.get(ctx, "/v2/shopping/flight-offers", q, &resp); err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}

	flights := make([]Flight, 0, len(resp.Data))
	for _, offer := range resp.Data {
		if f, ok := flightFromOffer(offer); ok {
			flights = append(flights, f)
		}
	}
	return flights, nil
}

func flightFromOffer(offer amadeusFlightOffer) (Flight, bool) {
	if len(offer.Itineraries) < 1 {
		return Flight{}, false
	}
	price := parsePrice(offer.Price.GrandTotal)
	if price <= 0 {
		return Flight{}, false
	}

	outbound := offer.Itineraries[0]
	airlineCode := ""
	if len(outbound.Segments) > 0 {
		airlineCode = outbound.Segments[0].CarrierCode
	} else if len(offer.ValidatingAirlineCodes) > 0 {
		airlineCode = offer.ValidatingAirlineCodes[0]
	}

	f := Flight{
		Price:       price,
		Currency:    offer.Price.Currency,
		Airline:     airlineName(airlineCode),
		AirlineCode: airlineCode,
		Stops:       max(0, len(outbound.Segments)-1),
		Duration:    parseDuration(outbound.Duration),
	}
	if n := len(outbound.Segments); n > 0 {
		f.DepartureTime = outbound.Segments[0].Departure.At
		f.ArrivalTime = outbound.Segments[n-1].Arrival.At
		f.FlightNumber = airlineCode + outbound.Segments[0].Number
	}

	if len(offer.Itineraries) >= 2 {
		ret := offer.Itineraries[1]
		f.ReturnStops = max(0, len(ret.Segments)-1)
		f.ReturnDuration = parseDuration(ret.Duration)
		if n := len(ret.Segments); n > 0 {
			f.ReturnDepartureTime = ret.Segments[0].Departure.At
			f.ReturnArrivalTime = ret.Segments[n-1].Arrival.At
		}
	}
	return f, true
}

// ─── Hotel Search ─────────────────────────────────────────────────────────────

// SearchHotels lists hotels in the destination city and returns the offers
// whose stay total fits MaxTotal.
func (c *AmadeusClient) SearchHotels(ctx context.Context, hq HotelQuery) ([]Hotel, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	cityCode, err := c.resolveCityCode(ctx, hq.Destination)
	if err != nil {
		return nil, err
	}

	hotelIDs, err := c.hotelIDsByCity(ctx, airportToCity(cityCode))
	if err != nil {
		return nil, fmt.Errorf("hotel list failed: %w", err)
	}
	if len(hotelIDs) == 0 {
		return nil, fmt.Errorf("no hotels found for city %s", cityCode)
	}
	// Offers lookups are rate limited per hotel id.
	if len(hotelIDs) > 20 {
		hotelIDs = hotelIDs[:20]
	}

	return c.hotelOffers(ctx, hotelIDs, hq)
}

func (c *AmadeusClient) hotelIDsByCity(ctx context.Context, cityCode string) ([]string, error) {
	q := url.Values{}
	q.Set("cityCode", cityCode)
	q.Set("radius", "5")
	q.Set("radiusUnit", "KM")
	q.Set("hotelSource", "ALL")

	var resp struct {
		Data []struct {
			HotelID string `json:"hotelId"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/v1/reference-data/locations/hotels/by-city", q, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Data))
	for _, h := range resp.Data {
		ids = append(ids, h.HotelID)
	}
	return ids, nil
}

type amadeusHotelOffers struct {
	Data []struct {
		Hotel struct {
			HotelID  string `json:"hotelId"`
			Name     string `json:"name"`
			CityCode string `json:"cityCode"`
			Address  struct {
				CityName string `json:"cityName"`
			} `json:"address"`
			Rating string `json:"rating"`
		} `json:"hotel"`
		Available bool `json:"available"`
		Offers    []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

func (c *AmadeusClient) hotelOffers(ctx context.Context, hotelIDs []string, hq HotelQuery) ([]Hotel, error) {
	adults := hq.Adults
	if adults <= 0 {
		adults = 1
	}

	q := url.Values{}
	q.Set("hotelIds", strings.Join(hotelIDs, ","))
	q.Set("checkInDate", hq.CheckIn)
	q.Set("checkOutDate", hq.CheckOut)
	q.Set("adults", strconv.Itoa(adults))
	q.Set("roomQuantity", "1")
	q.Set("currency", "EUR")
	q.Set("bestRateOnly", "true")

	var resp amadeusHotelOffers
	if err := c.get(ctx, "/v3/shopping/hotel-offers", q, &resp); err != nil {
		return nil, fmt.Errorf("hotel offers failed: %w", err)
	}

	hotels := make([]Hotel, 0, len(resp.Data))
	for _, item := range resp.Data {
		if !item.Available || len(item.Offers) == 0 {
			continue
		}
		price := parsePrice(item.Offers[0].Price.Total)
		if price <= 0 {
			continue
		}
		if hq.MaxTotal > 0 && price > hq.MaxTotal {
			continue
		}

		location := item.Hotel.Address.CityName
		if location == "" {
			location = item.Hotel.CityCode
		}
		hotels = append(hotels, Hotel{
			Name:       item.Hotel.Name,
			HotelID:    item.Hotel.HotelID,
			TotalPrice: price,
			Currency:   item.Offers[0].Price.Currency,
			Rating:     parseRating(item.Hotel.Rating),
			Location:   location,
		})
	}
	return hotels, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// parseDuration converts ISO 8601 duration (PT5H30M) to human readable (5h 30m)
func parseDuration(iso string) string {
	iso = strings.TrimPrefix(iso, "PT")
	if iso == "" {
		return ""
	}
	var parts []string
	if h, rest, ok := strings.Cut(iso, "H"); ok {
		parts = append(parts, h+"h")
		iso = rest
	}
	if m, _, ok := strings.Cut(iso, "M"); ok && m != "" {
		parts = append(parts, m+"m")
	}
	return strings.Join(parts, " ")
}

func parsePrice(s string) float64 {
	price, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return price
}

// parseRating reads the 1-5 star rating, defaulting unrated hotels to 4.
func parseRating(s string) float64 {
	r, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || r <= 0 {
		return 4.0
	}
	return min(r, 5)
}

// airportToCity maps airport IATA codes to the city codes hotel search expects.
func airportToCity(code string) string {
	mapping := map[string]string{
		"LHR": "LON", "LGW": "LON", "STN": "LON", "LTN": "LON",
		"CDG": "PAR", "ORY": "PAR",
		"JFK": "NYC", "LGA": "NYC", "EWR": "NYC",
		"SXF": "BER",
		"FCO": "ROM", "CIA": "ROM",
		"NRT": "TYO", "HND": "TYO",
		"MXP": "MIL", "LIN": "MIL",
	}
	if city, ok := mapping[code]; ok {
		return city
	}
	return code
}

func airlineName(code string) string {
	names := map[string]string{
		"AF": "Air France",
		"BA": "British Airways",
		"LH": "Lufthansa",
		"KL": "KLM",
		"IB": "Iberia",
		"AZ": "ITA Airways",
		"TK": "Turkish Airlines",
		"EK": "Emirates",
		"QR": "Qatar Airways",
		"FR": "Ryanair",
		"U2": "EasyJet",
		"V7": "Volotea",
		"TO": "Transavia France",
		"VY": "Vueling",
		"LX": "Swiss International Air Lines",
		"TP": "TAP Air Portugal",
		"AT": "Royal Air Maroc",
		"DL": "Delta Air Lines",
		"UA": "United Airlines",
		"AC": "Air Canada",
	}
	if name, ok := names[code]; ok {
		return name
	}
	if code != "" {
		return code + " Airlines"
	}
	return "Unknown Airline"
}
