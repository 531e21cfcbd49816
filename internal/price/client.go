// Package price fetches hourly electricity spot prices.
package price

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/temoto/spotlcd/log2"
)

const (
	DefaultBaseURL      = "https://web.fortum.fi/api/v2"
	DefaultPath         = "/spot-price-anonymous"
	DefaultPriceListKey = 1047
	DefaultMaxCount     = 12
	DefaultTimeout      = 30 * time.Second

	maxResponseBodySize = 1 << 20
)

type Client struct {
	baseURL      string
	path         string
	priceListKey int
	http         *http.Client
	timeout      time.Duration
	loc          *time.Location // request window, hour boundary
	source       *time.Location // startDate wall clock
	now          func() time.Time
	log          *log2.Log
	validate     *validator.Validate
}

type Option func(*Client)

func WithBaseURL(s string) Option          { return func(c *Client) { c.baseURL = s } }
func WithPath(s string) Option             { return func(c *Client) { c.path = s } }
func WithPriceListKey(key int) Option      { return func(c *Client) { c.priceListKey = key } }
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }
func WithLog(log *log2.Log) Option         { return func(c *Client) { c.log = log } }
func WithNow(f func() time.Time) Option    { return func(c *Client) { c.now = f } }

// WithTimeout bounds whole request including body read. Zero keeps default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLocation sets zone for "today" and current hour.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithSourceOffset sets zone used to read startDate values, they carry no offset.
func WithSourceOffset(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.source = loc
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		path:         DefaultPath,
		priceListKey: DefaultPriceListKey,
		timeout:      DefaultTimeout,
		loc:          time.Local,
		source:       time.UTC,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	c.validate = newValidator()
	return c
}

// Error flag is checked before series shape.
type rawResponse struct {
	Error  *bool           `json:"error" validate:"required"`
	Series json.RawMessage `json:"series"`
}

type rawSeries struct {
	Series []rawPoint `json:"series" validate:"required,dive"`
}

type rawPoint struct {
	StartDate *string  `json:"startDate" validate:"required"`
	Value     *float64 `json:"value" validate:"required"`
	Unit      *string  `json:"unit" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// URL for request window at `now`.
func (self *Client) URL(now time.Time, daysOffset int) string {
	from, to := Window(now.In(self.loc), daysOffset)
	q := url.Values{}
	q.Set("priceListKey", strconv.Itoa(self.priceListKey))
	q.Set("from", FormatQueryTime(from))
	q.Set("to", FormatQueryTime(to))
	return self.baseURL + self.path + "?" + q.Encode()
}

// Fetch makes exactly one request. Result is sorted, starts at current hour
// and has at most maxCount points, maxCount<0 means no limit.
// Empty result is not an error.
func (self *Client) Fetch(ctx context.Context, daysOffset, maxCount int) (Series, error) {
	now := self.now().In(self.loc)
	u := self.URL(now, daysOffset)

	ctx, cancel := context.WithTimeout(ctx, self.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Annotate(err, "price request")
	}
	req.Header.Set("Accept", "application/json")
	self.log.Debugf("price fetch url=%s", u)

	resp, err := self.http.Do(req)
	if err != nil {
		return nil, errors.Trace(&FetchError{URL: u, Err: err})
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
		return nil, errors.Trace(&FetchError{URL: u, StatusCode: resp.StatusCode, Status: resp.Status})
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, errors.Trace(&FetchError{URL: u, StatusCode: resp.StatusCode, Status: resp.Status, Err: err})
	}

	series, err := self.parse(body)
	if err != nil {
		return nil, err
	}
	series.Sort()
	series = series.Since(StartOfHour(now)).Limit(maxCount)
	self.log.Debugf("price fetch points=%d", len(series))
	return series, nil
}

func (self *Client) parse(body []byte) (Series, error) {
	var raw rawResponse
	if err := self.decode(body, &raw); err != nil {
		return nil, err
	}
	if *raw.Error {
		var items []json.RawMessage
		_ = json.Unmarshal(raw.Series, &items)
		return nil, errors.Trace(&APIError{Count: len(items)})
	}

	var rs rawSeries
	if err := self.decode(body, &rs); err != nil {
		return nil, err
	}
	series := make(Series, 0, len(rs.Series))
	seen := make(map[int64]int, len(rs.Series))
	for i, rp := range rs.Series {
		field := "series[" + strconv.Itoa(i) + "].startDate"
		t, err := ParseStartDate(*rp.StartDate, self.source)
		if err != nil {
			return nil, errors.Trace(&SchemaError{Fields: []string{field}, Err: err})
		}
		// one price per hour, repeated instant is ambiguous
		if j, ok := seen[t.UnixNano()]; ok {
			return nil, errors.Trace(&SchemaError{Fields: []string{field},
				Err: errors.Errorf("startDate=%s repeats series[%d]", *rp.StartDate, j)})
		}
		seen[t.UnixNano()] = i
		series = append(series, Point{Start: t, Value: *rp.Value, Unit: *rp.Unit})
	}
	return series, nil
}

// decode unmarshals and validates, any failure is SchemaError.
func (self *Client) decode(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		se := &SchemaError{Err: err}
		if te, ok := err.(*json.UnmarshalTypeError); ok {
			se.Fields = []string{te.Field}
		}
		return errors.Trace(se)
	}
	if err := self.validate.Struct(v); err != nil {
		se := &SchemaError{Err: err}
		if ves, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ves {
				ns := fe.Namespace()
				if i := strings.IndexByte(ns, '.'); i >= 0 {
					ns = ns[i+1:]
				}
				se.Fields = append(se.Fields, ns)
			}
		}
		return errors.Trace(se)
	}
	return nil
}
