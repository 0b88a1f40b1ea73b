package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/liquidhire/internal/jobs"
)

const (
	SearchPath = "/vacancies"

	scheduleRemote = "remote"
	maxPeriodDays  = 30
)

type SearchParams struct {
	Text string `yaml:"text"`
	// hhparam is custom tag for reflect. Please see below.
	Areas     []int    `hhparam:"area"`
	OrderBy   string   `yaml:"order_by"`
	Schedules []string `hhparam:"schedule"`
	PerPage   string   `yaml:"per_page" mapstructure:"per_page"`
	Period    uint     `yaml:"period"`
}

// NewSearchParams maps a board query onto hh.ru search parameters.
// A "remote" location becomes the remote schedule; other locations are
// free-text names hh.ru can only filter by area id, so they are not sent.
func NewSearchParams(q jobs.Query) *SearchParams {
	params := &SearchParams{
		Text:    q.Term,
		OrderBy: "publication_time",
	}

	if strings.EqualFold(strings.TrimSpace(q.Location), scheduleRemote) {
		params.Schedules = []string{scheduleRemote}
	}

	perPage := maxPerPage
	if q.Limit > 0 && q.Limit < perPage {
		perPage = q.Limit
	}
	params.PerPage = strconv.Itoa(perPage)

	if q.HoursOld > 0 {
		days := (q.HoursOld + 23) / 24
		if days > maxPeriodDays {
			days = maxPeriodDays
		}
		params.Period = uint(days)
	}

	return params
}

func (c *Client) search(ctx context.Context, params *SearchParams, limit int, pace func(context.Context) error) (*Vacancies, error) {
	var vacancies []*Vacancy

	q := buildParams(params)
	apiURLSearch := fmt.Sprintf("%s%s", c.APIURL, SearchPath)

	items, err := c.GetItems(ctx, apiURLSearch, q, limit, pace)
	if err != nil {
		return nil, err
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &vacancies,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode vacancies: %w", err)
	}

	return &Vacancies{
		Items: vacancies,
	}, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	fields := reflect.VisibleFields(reflect.TypeOf(*params))
	for _, field := range fields {
		// Our custom tag is using here.
		key := field.Tag.Get("hhparam")
		if key == "" {
			// Failover to default tag if our tag do not exist.
			key = field.Tag.Get("yaml")
		}
		kind := field.Type.Kind()
		switch kind {
		case reflect.Slice:

			s := reflect.ValueOf(params).Elem().Field(field.Index[0]).Interface()
			switch v := s.(type) {
			case []int:
				for _, value := range v {
					q.Add(key, strconv.Itoa(value))
				}

			case []string:
				for _, value := range v {
					q.Add(key, value)
				}
			}

		default:
			value := fmt.Sprintf("%v", reflect.ValueOf(params).Elem().Field(field.Index[0]).Interface())
			if value != "" && value != "0" {
				q.Set(key, value)
			}
		}
	}

	return q
}
