package cbr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/config"
)

const keyRateCacheKey = "key_rate"

// ReferenceRate is the central bank key rate plus the configured margin,
// offered as a suggested COK. Rates are percentages.
type ReferenceRate struct {
	KeyRate   decimal.Decimal `json:"key_rate"`
	Margin    decimal.Decimal `json:"margin"`
	Suggested decimal.Decimal `json:"suggested_cok"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// CBRClient fetches the Bank of Russia key rate used as a discount-rate reference.
type CBRClient struct {
	url    string
	margin decimal.Decimal
	client *http.Client
	cache  *cache.Cache
	log    *logrus.Logger
	now    func() time.Time
}

// NewCBRClient initializes a new CBR client. Fetched rates stay cached for a day.
func NewCBRClient(cfg *config.Config, log *logrus.Logger) *CBRClient {
	return &CBRClient{
		url:    cfg.CBRURL,
		margin: decimal.NewFromFloat(cfg.CBRMargin),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: cache.New(24*time.Hour, 48*time.Hour),
		log:   log,
		now:   time.Now,
	}
}

// buildSOAPRequest creates a SOAP request for the key rate over the last 30 days
func (c *CBRClient) buildSOAPRequest() string {
	now := c.now()
	fromDate := now.AddDate(0, 0, -30).Format("2006-01-02")
	toDate := now.Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<KeyRate xmlns="http://web.cbr.ru/">
					<fromDate>%s</fromDate>
					<ToDate>%s</ToDate>
				</KeyRate>
			</soap12:Body>
		</soap12:Envelope>`, fromDate, toDate)
}

// sendRequest posts the KeyRate envelope and returns the raw body.
func (c *CBRClient) sendRequest(ctx context.Context, soapRequest string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(soapRequest))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("CBR XML response: %s", string(body))
	return body, nil
}

// parseXMLResponse extracts the latest key rate from the diffgram
func parseXMLResponse(rawBody []byte) (decimal.Decimal, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse XML: %w", err)
	}

	krElements := doc.FindElements("//diffgram/KeyRate/KR")
	if len(krElements) == 0 {
		return decimal.Zero, fmt.Errorf("no key rate data found in XML")
	}

	// The service lists the newest rate first.
	rateElement := krElements[0].FindElement("./Rate")
	if rateElement == nil {
		return decimal.Zero, fmt.Errorf("rate element not found in XML")
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(rateElement.Text()))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse rate: %w", err)
	}
	return rate, nil
}

// Refresh fetches the key rate and replaces the cached value
func (c *CBRClient) Refresh(ctx context.Context) (ReferenceRate, error) {
	body, err := c.sendRequest(ctx, c.buildSOAPRequest())
	if err != nil {
		return ReferenceRate{}, err
	}

	keyRate, err := parseXMLResponse(body)
	if err != nil {
		return ReferenceRate{}, err
	}

	rate := ReferenceRate{
		KeyRate:   keyRate,
		Margin:    c.margin,
		Suggested: keyRate.Add(c.margin),
		FetchedAt: c.now(),
	}
	c.cache.Set(keyRateCacheKey, rate, cache.DefaultExpiration)

	c.log.Infof("Retrieved key rate: %s%% (suggested COK %s%% including %s%% margin)",
		keyRate.StringFixed(2), rate.Suggested.StringFixed(2), c.margin.StringFixed(2))
	return rate, nil
}

// GetReferenceRate returns the cached rate, fetching it on a miss
func (c *CBRClient) GetReferenceRate(ctx context.Context) (ReferenceRate, error) {
	if cached, found := c.cache.Get(keyRateCacheKey); found {
		return cached.(ReferenceRate), nil
	}
	return c.Refresh(ctx)
}
