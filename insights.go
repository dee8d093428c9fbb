package gmaw

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrs "github.com/metapub/go-meta-api-wrapper/pkg/errors"
	"github.com/metapub/go-meta-api-wrapper/pkg/types"
	"github.com/metapub/go-meta-api-wrapper/pkg/validation"
)

// InsightService queries page and business account metrics.
type InsightService struct {
	client *Client
}

// InsightQuery selects the metrics and time window of an insights call.
type InsightQuery struct {
	// Metrics to fetch, for example "impressions" or "reach".
	Metrics []string
	// Period is the aggregation period: "day", "week", "days_28", or
	// "lifetime". Optional.
	Period string
	// Since and Until bound the time window. Optional.
	Since time.Time
	Until time.Time
}

func (q InsightQuery) params() (url.Values, error) {
	if len(q.Metrics) == 0 {
		return nil, &pkgerrs.ValidationError{Field: "Metrics", Message: "at least one metric is required"}
	}
	if err := validation.ValidateMetrics(q.Metrics); err != nil {
		return nil, &pkgerrs.ValidationError{Field: "Metrics", Message: err.Error()}
	}
	params := url.Values{"metric": {strings.Join(q.Metrics, ",")}}
	if q.Period != "" {
		params.Set("period", q.Period)
	}
	if !q.Since.IsZero() {
		params.Set("since", strconv.FormatInt(q.Since.Unix(), 10))
	}
	if !q.Until.IsZero() {
		params.Set("until", strconv.FormatInt(q.Until.Unix(), 10))
	}
	return params, nil
}

// Media returns the metrics of a single published media.
func (s *InsightService) Media(ctx context.Context, mediaID string, query InsightQuery) (*types.InsightsResponse, error) {
	params, err := query.params()
	if err != nil {
		return nil, err
	}
	var resp types.InsightsResponse
	if err := s.client.graph.Get(ctx, mediaID+"/insights", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Business returns account-level metrics for the business account.
func (s *InsightService) Business(ctx context.Context, query InsightQuery) (*types.InsightsResponse, error) {
	accountID, err := s.client.requireBusiness()
	if err != nil {
		return nil, err
	}
	return s.account(ctx, accountID, query)
}

// Page returns account-level metrics for the page.
func (s *InsightService) Page(ctx context.Context, query InsightQuery) (*types.InsightsResponse, error) {
	pageID, err := s.client.requirePage()
	if err != nil {
		return nil, err
	}
	return s.account(ctx, pageID, query)
}

func (s *InsightService) account(ctx context.Context, accountID string, query InsightQuery) (*types.InsightsResponse, error) {
	params, err := query.params()
	if err != nil {
		return nil, err
	}
	var resp types.InsightsResponse
	if err := s.client.graph.Get(ctx, accountID+"/insights", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FollowersCount returns the business account's current follower count.
func (s *InsightService) FollowersCount(ctx context.Context) (int64, error) {
	accountID, err := s.client.requireBusiness()
	if err != nil {
		return 0, err
	}
	var resp struct {
		FollowersCount int64 `json:"followers_count"`
	}
	params := url.Values{"fields": {"followers_count"}}
	if err := s.client.graph.Get(ctx, accountID, params, &resp); err != nil {
		return 0, err
	}
	return resp.FollowersCount, nil
}
