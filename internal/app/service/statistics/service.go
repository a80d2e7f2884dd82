package statistics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mlyaho/ai-mem-generator/internal/models"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

var ErrUnknownStatistic = errors.New("unknown statistic")

type StatisticType string

const (
	// Daily counts and GMV over payments
	StatisticTypeDailyPaymentCount StatisticType = "daily_payment_count"
	StatisticTypeDailyGmv          StatisticType = "daily_gmv"
	StatisticTypeTotalGmv          StatisticType = "total_gmv"

	// Ledger
	StatisticTypeDailyCreditsSold  StatisticType = "daily_credits_sold"
	StatisticTypeDailyCreditsSpent StatisticType = "daily_credits_spent"

	// Subscriptions
	StatisticTypeActiveSubscriptionCount StatisticType = "active_subscription_count"
)

// paymentFilterColumns are the payment columns request filters may target. Filters only apply
// to payment based statistics.
var paymentFilterColumns = []string{"provider", "status", "currency", "user_id"}

type DataItem struct {
	ID StatisticType `json:"id"`
}

type Request struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*DataItem           `json:"data_items"`
}

type ResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type Response struct {
	DataItems map[StatisticType][]ResponseDataItem `json:"data_items"`
}

// Service provides statistics operations
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

// dateExpr renders created_at as YYYY-MM-DD in the current dialect. SQLite stores times as
// text, so the prefix is the date.
func (s *Service) dateExpr() string {
	switch s.db.Dialector.Name() {
	case "sqlite":
		return "substr(created_at, 1, 10)"
	case "mysql":
		return "DATE_FORMAT(created_at, '%Y-%m-%d')"
	default:
		return "TO_CHAR(created_at, 'YYYY-MM-DD')"
	}
}

func (s *Service) paymentFilters(request *Request) clause.Expression {
	return types.CommonFilters{Filters: request.Filters, Allowed: paymentFilterColumns}
}

func (s *Service) getDailyPaymentCount(ctx context.Context, request *Request) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	day := s.dateExpr()
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select(day + " as date, count(*) as value").
		Where(clause.Where{Exprs: []clause.Expression{s.paymentFilters(request)}}).
		Group(day).
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyGmv(ctx context.Context, request *Request) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	day := s.dateExpr()
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select(day+" as date, currency AS label, sum(amount) as value").
		Where("status = ?", types.PaymentStatusSucceeded).
		Where(clause.Where{Exprs: []clause.Expression{s.paymentFilters(request)}}).
		Group(day).
		Group("currency").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true}).
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getTotalGmv accumulates daily GMV per currency, newest day first.
func (s *Service) getTotalGmv(ctx context.Context, request *Request) ([]ResponseDataItem, error) {
	daily, err := s.getDailyGmv(ctx, request)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(daily, func(i, j int) bool {
		if daily[i].Date != daily[j].Date {
			return daily[i].Date < daily[j].Date
		}
		return daily[i].Label < daily[j].Label
	})
	running := map[string]int64{}
	results := make([]ResponseDataItem, 0, len(daily))
	for _, d := range daily {
		running[d.Label] += d.Value
		results = append(results, ResponseDataItem{Date: d.Date, Label: d.Label, Value: running[d.Label]})
	}
	return lo.Reverse(results), nil
}

func (s *Service) getDailyCredits(ctx context.Context, txType types.CreditTransactionType, sign int64) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	day := s.dateExpr()
	q := s.db.WithContext(ctx).Table((models.CreditTransaction{}).TableName()).
		Select(fmt.Sprintf("%s as date, sum(amount) * %d as value", day, sign)).
		Where("type = ?", txType).
		Group(day).
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getActiveSubscriptionCount(ctx context.Context, _ *Request) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Subscription{}).TableName()).
		Select("plan as label, count(*) as value").
		Where("plan <> ?", types.PlanFree).
		Where("status IN ?", []types.SubscriptionStatus{types.SubscriptionStatusActive, types.SubscriptionStatusTrialing}).
		Group("plan").
		Order("plan")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getStatistic(ctx context.Context, request *Request, dataItem *DataItem) ([]ResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyPaymentCount:
		return s.getDailyPaymentCount(ctx, request)
	case StatisticTypeDailyGmv:
		return s.getDailyGmv(ctx, request)
	case StatisticTypeTotalGmv:
		return s.getTotalGmv(ctx, request)
	case StatisticTypeDailyCreditsSold:
		return s.getDailyCredits(ctx, types.CreditTransactionTypePurchase, 1)
	case StatisticTypeDailyCreditsSpent:
		return s.getDailyCredits(ctx, types.CreditTransactionTypeGeneration, -1)
	case StatisticTypeActiveSubscriptionCount:
		return s.getActiveSubscriptionCount(ctx, request)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatistic, dataItem.ID)
	}
}

// GetStatistics computes the requested data items concurrently. Filters are ignored by
// statistics that are not computed over payments.
func (s *Service) GetStatistics(ctx context.Context, request *Request) (*Response, error) {
	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []ResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *DataItem) {
			defer wg.Done()
			res, err := s.getStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []ResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)
	if err := <-errChan; err != nil {
		return nil, err
	}

	results := make(map[StatisticType][]ResponseDataItem, len(request.DataItems))
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &Response{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
