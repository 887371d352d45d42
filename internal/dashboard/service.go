package dashboard

import (
	"context"
	"time"
)

// Stats backs the four headline cards.
type Stats struct {
	TotalLinens     int `json:"total_linens"`
	PendingRequests int `json:"pending_requests"`
	ApprovedToday   int `json:"approved_today"`
	DamagedItems    int `json:"damaged_items"`
}

// DailyPoint is one day of scan activity.
type DailyPoint struct {
	Name   string `json:"name"`
	Use    int    `json:"use"`
	Wash   int    `json:"wash"`
	Damage int    `json:"damage"`
}

// TrendPoint is one month of a six month series.
type TrendPoint struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Active bool   `json:"active"`
}

// ChartData bundles every chart payload into one response.
type ChartData struct {
	PieData       []CategoryCount `json:"pieData"`
	DailyData     []DailyPoint    `json:"dailyData"`
	RequestData   []TrendPoint    `json:"requestData"`
	DamagedData   []TrendPoint    `json:"damagedData"`
	QuarterlyData []DailyPoint    `json:"quarterlyData"`
}

// StatsSource is the aggregate query surface the service consumes.
type StatsSource interface {
	CountLinens(ctx context.Context) (int, error)
	CountPendingRequests(ctx context.Context) (int, error)
	CountApprovedSince(ctx context.Context, since time.Time) (int, error)
	CountDamagedItems(ctx context.Context) (int, error)
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
	DailyActivity(ctx context.Context, since time.Time) ([]ActivityCount, error)
	MonthlyRequests(ctx context.Context, since time.Time) ([]MonthCount, error)
	MonthlyDamaged(ctx context.Context, since time.Time) ([]MonthCount, error)
}

// Service computes the dashboard aggregates behind a Redis cache.
type Service struct {
	repo  StatsSource
	cache *Cache
	now   func() time.Time
}

// NewService wires the dashboard service.
func NewService(repo StatsSource, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Stats returns the headline counters, cached per version.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard", "stats")
	if err != nil {
		return Stats{}, err
	}
	var out Stats
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.loadStats(ctx)
	})
	return out, err
}

func (s *Service) loadStats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.TotalLinens, err = s.repo.CountLinens(ctx); err != nil {
		return Stats{}, err
	}
	if st.PendingRequests, err = s.repo.CountPendingRequests(ctx); err != nil {
		return Stats{}, err
	}
	today := startOfDay(s.now())
	if st.ApprovedToday, err = s.repo.CountApprovedSince(ctx, today); err != nil {
		return Stats{}, err
	}
	if st.DamagedItems, err = s.repo.CountDamagedItems(ctx); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// Charts returns every chart series, cached per version.
func (s *Service) Charts(ctx context.Context) (ChartData, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard", "charts")
	if err != nil {
		return ChartData{}, err
	}
	var out ChartData
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.loadCharts(ctx)
	})
	return out, err
}

func (s *Service) loadCharts(ctx context.Context) (ChartData, error) {
	var cd ChartData
	var err error
	if cd.PieData, err = s.repo.CategoryCounts(ctx); err != nil {
		return ChartData{}, err
	}
	if cd.PieData == nil {
		cd.PieData = []CategoryCount{}
	}

	now := s.now()
	weekStart := startOfDay(now).AddDate(0, 0, -6)
	activity, err := s.repo.DailyActivity(ctx, weekStart)
	if err != nil {
		return ChartData{}, err
	}
	cd.DailyData = buildDailySeries(weekStart, activity)
	cd.QuarterlyData = cd.DailyData

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -5, 0)
	requests, err := s.repo.MonthlyRequests(ctx, monthStart)
	if err != nil {
		return ChartData{}, err
	}
	cd.RequestData = buildMonthlySeries(monthStart, now, requests)

	damaged, err := s.repo.MonthlyDamaged(ctx, monthStart)
	if err != nil {
		return ChartData{}, err
	}
	cd.DamagedData = buildMonthlySeries(monthStart, now, damaged)
	return cd, nil
}

// Invalidate drops every cached aggregate. Mutating modules call this
// through the jobs layer after writes.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Warm precomputes both payloads so the first page load hits the cache.
func (s *Service) Warm(ctx context.Context) error {
	if _, err := s.Stats(ctx); err != nil {
		return err
	}
	_, err := s.Charts(ctx)
	return err
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func buildDailySeries(start time.Time, activity []ActivityCount) []DailyPoint {
	points := make([]DailyPoint, 7)
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		points[i] = DailyPoint{Name: day.Format("Mon")}
		index[day.Format("2006-01-02")] = i
	}
	for _, ac := range activity {
		i, ok := index[ac.Day.Format("2006-01-02")]
		if !ok {
			continue
		}
		switch ac.Activity {
		case "ISSUE":
			points[i].Use += ac.Count
		case "RETURN":
			points[i].Wash += ac.Count
		case "DAMAGE":
			points[i].Damage += ac.Count
		}
	}
	return points
}

func buildMonthlySeries(start, now time.Time, counts []MonthCount) []TrendPoint {
	points := make([]TrendPoint, 6)
	index := make(map[string]int, 6)
	for i := 0; i < 6; i++ {
		month := start.AddDate(0, i, 0)
		points[i] = TrendPoint{
			Name:   month.Format("Jan"),
			Active: month.Year() == now.Year() && month.Month() == now.Month(),
		}
		index[month.Format("2006-01")] = i
	}
	for _, mc := range counts {
		if i, ok := index[mc.Month.Format("2006-01")]; ok {
			points[i].Count += mc.Count
		}
	}
	return points
}
