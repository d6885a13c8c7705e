package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stromwerk/loadshaper"
	"github.com/stromwerk/loadshaper/calendar"
	"github.com/stromwerk/loadshaper/loadcsv"
	"github.com/stromwerk/loadshaper/remap"
	"github.com/stromwerk/loadshaper/stats"
	"github.com/stromwerk/loadshaper/timedataset"
)

type regionInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type profileSummary struct {
	Region            string    `json:"region"`
	SourceYear        int       `json:"source_year"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	Samples           int       `json:"samples"`
	CompleteDays      int       `json:"complete_days"`
	PublicHolidayDays int       `json:"public_holiday_days"`
	SchoolHolidayDays int       `json:"school_holiday_days"`
	WeekendDays       int       `json:"weekend_days"`
	NormalDays        int       `json:"normal_days"`
}

type simulationSummary struct {
	Year             int           `json:"year"`
	MappedDays       int           `json:"mapped_days"`
	Gaps             int           `json:"gaps"`
	FallbackFraction float64       `json:"fallback_fraction"`
	Records          int           `json:"records"`
	Stats            stats.Summary `json:"stats"`
}

func (s *Server) listRegions(w http.ResponseWriter, r *http.Request) {
	regions := calendar.Regions()
	out := make([]regionInfo, 0, len(regions))
	for _, region := range regions {
		out = append(out, regionInfo{
			Code: string(region),
			Name: region.DisplayName(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// uploadProfile reads a semicolon CSV body, starts a fresh session for the
// requested region and builds the source corpus. Previous simulation
// results are discarded.
func (s *Server) uploadProfile(w http.ResponseWriter, r *http.Request) {
	opt := *s.opt
	if region := r.URL.Query().Get("region"); region != "" {
		opt.Region = calendar.Region(region)
	}

	sim, err := loadshaper.New(&opt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ds, err := loadcsv.Parse(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := sim.LoadSeries(ds); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	s.sim = sim
	s.results = make(map[int]*remap.Result)
	summary := s.profileSummaryLocked()
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sim == nil {
		writeError(w, http.StatusNotFound, loadshaper.ErrNoSourceProfile)
		return
	}
	writeJSON(w, http.StatusOK, s.profileSummaryLocked())
}

type simulateRequest struct {
	Years []int `json:"years"`
}

func (s *Server) runSimulations(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Years) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no target years"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sim == nil {
		writeError(w, http.StatusConflict, loadshaper.ErrNoSourceProfile)
		return
	}

	results, err := s.sim.SimulateAll(req.Years)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]simulationSummary, 0, len(req.Years))
	for _, year := range req.Years {
		res := results[year]
		s.results[year] = res
		out = append(out, summarize(res))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getSimulation(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resultFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summarize(res))
}

func (s *Server) downloadCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resultFor(w, r)
	if !ok {
		return
	}
	withProvenance := r.URL.Query().Get("provenance") != "0"

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="load_profile_%d.csv"`, res.Year))
	if err := loadcsv.Write(w, res.Records(), withProvenance); err != nil {
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) renderChart(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resultFor(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	source := s.sim.Source()
	s.mu.Unlock()

	page := loadshaper.ReportPage(map[int]*remap.Result{res.Year: res})
	page.AddCharts(loadshaper.LineDailyOverlay(source, res))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) getAnomalies(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resultFor(w, r)
	if !ok {
		return
	}

	threshold := stats.DefaultAnomalyThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		threshold = v
	}

	records := res.Records()
	t := make([]time.Time, 0, len(records))
	y := make([]float64, 0, len(records))
	for _, rec := range records {
		t = append(t, rec.Timestamp)
		y = append(y, rec.Load)
	}

	anomalies := stats.DetectAnomalies(t, y, threshold)
	if anomalies == nil {
		anomalies = []stats.Anomaly{}
	}
	writeJSON(w, http.StatusOK, anomalies)
}

type patternsResponse struct {
	Hourly   stats.HourlyPattern          `json:"hourly"`
	Seasonal map[string]stats.SeasonStats `json:"seasonal"`
}

func (s *Server) getPatterns(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resultFor(w, r)
	if !ok {
		return
	}

	records := res.Records()
	t := make([]time.Time, 0, len(records))
	y := make([]float64, 0, len(records))
	for _, rec := range records {
		t = append(t, rec.Timestamp)
		y = append(y, rec.Load)
	}

	writeJSON(w, http.StatusOK, patternsResponse{
		Hourly:   stats.DailyPatterns(t, y),
		Seasonal: stats.SeasonalPatterns(t, y),
	})
}

func (s *Server) getComparison(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resultFor(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	source := s.sim.Source()
	s.mu.Unlock()

	records := res.Records()
	y := make([]float64, 0, len(records))
	for _, rec := range records {
		y = append(y, rec.Load)
	}

	cmp, err := stats.Compare(source.Y, y)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func summarize(res *remap.Result) simulationSummary {
	records := res.Records()
	y := make([]float64, 0, len(records))
	for _, rec := range records {
		y = append(y, rec.Load)
	}

	// a fully gapped year has no records; the summary stays zero
	st, _ := stats.Summarize(y)

	return simulationSummary{
		Year:             res.Year,
		MappedDays:       len(res.Days),
		Gaps:             len(res.Gaps),
		FallbackFraction: res.FallbackFraction(),
		Records:          len(records),
		Stats:            st,
	}
}

// resultFor resolves the {year} route parameter to a stored simulation
// result, writing the error response itself when it cannot.
func (s *Server) resultFor(w http.ResponseWriter, r *http.Request) (*remap.Result, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	s.mu.Lock()
	res, ok := s.results[year]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("year %d has not been simulated", year))
		return nil, false
	}
	return res, true
}

// profileSummaryLocked builds the corpus summary; the caller holds s.mu.
func (s *Server) profileSummaryLocked() profileSummary {
	c := s.sim.Corpus()
	series := timedataset.TimeSlice(s.sim.Source().T)
	return profileSummary{
		Region:            string(s.sim.Region()),
		SourceYear:        s.sim.SourceYear(),
		Start:             series.StartTime(),
		End:               series.EndTime(),
		Samples:           len(series),
		CompleteDays:      c.TotalDays(),
		PublicHolidayDays: len(c.PublicHolidays),
		SchoolHolidayDays: len(c.SchoolHolidays),
		WeekendDays:       len(c.Weekends),
		NormalDays:        len(c.Normals),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
