package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/moneysplit/moneysplit/internal/calculation"
	"github.com/moneysplit/moneysplit/internal/forecast"
	"github.com/moneysplit/moneysplit/internal/store"
)

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !s.decode(w, r, &req) {
		return
	}
	fin, structure, method, err := req.Validate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reg, err := s.registry(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := calculation.NewEngine(reg).Calculate(fin, req.Country, structure, method, req.SalaryAmount, req.State)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.metrics != nil {
		s.metrics.TrackCalculation(req.Country, string(structure))
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleOptimal(w http.ResponseWriter, r *http.Request) {
	var req OptimalRequest
	if !s.decode(w, r, &req) {
		return
	}
	fin, err := req.Validate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reg, err := s.registry(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := calculation.NewEngine(reg).FindOptimal(fin, req.Country, req.State)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleJurisdictions(w http.ResponseWriter, r *http.Request) {
	reg, err := s.registry(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{
		"jurisdictions": reg.Jurisdictions(),
		"states":        reg.States(),
	})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	var req ProjectCreateRequest
	if !s.decode(w, r, &req) {
		return
	}
	fin, structure, method, err := req.Validate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reg, err := s.registry(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := calculation.NewEngine(reg).Calculate(fin, req.Country, structure, method, req.SalaryAmount, req.State)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	record := &store.TaxRecord{
		NumPeople:          fin.NumPeople,
		Revenue:            fin.Revenue,
		TotalCosts:         fin.TotalCosts,
		GroupIncome:        res.GrossIncome,
		IndividualIncome:   res.GrossIncome.Div(decimal.NewFromInt(int64(fin.NumPeople))),
		TaxOrigin:          req.Country,
		TaxOption:          structure,
		DistributionMethod: method,
		SalaryAmount:       req.SalaryAmount,
		TaxAmount:          res.TotalTax,
		NetIncomePerPerson: res.NetIncomePerPerson,
		NetIncomeGroup:     res.NetIncomeGroup,
	}
	people := make([]store.Person, 0, len(req.People))
	for _, p := range req.People {
		people = append(people, store.Person{
			Name:        p.Name,
			WorkShare:   p.WorkShare,
			GrossIncome: res.GrossIncome.Mul(p.WorkShare),
			TaxPaid:     res.TotalTax.Mul(p.WorkShare),
			NetIncome:   res.NetIncomeGroup.Mul(p.WorkShare),
		})
	}

	id, err := s.records.Save(r.Context(), record, people)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.metrics != nil {
		s.metrics.ProjectsCreated.Inc()
		s.metrics.TrackCalculation(req.Country, string(structure))
	}
	s.writeJSON(w, http.StatusCreated, ProjectCreateResponse{
		RecordID: id,
		Message:  "project saved",
		Result:   res,
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer between 1 and 100"})
			return
		}
		limit = n
	}

	records, err := s.records.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []store.TaxRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "record id must be an integer"})
		return
	}

	rec, err := s.records.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "record id must be an integer"})
		return
	}

	if err := s.records.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, MessageResponse{Message: "record deleted"})
}

func (s *Server) handlePersonHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	name := chi.URLParam(r, "name")
	history, err := s.records.PersonHistory(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if history == nil {
		history = []store.Person{}
	}
	s.writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleListBrackets(w http.ResponseWriter, r *http.Request) {
	if s.brackets == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "database not configured"})
		return
	}
	req := BracketCreateRequest{
		Country: r.URL.Query().Get("country"),
		TaxType: r.URL.Query().Get("tax_type"),
	}
	class, err := req.Validate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rows, err := s.brackets.List(r.Context(), req.Country, class)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []store.BracketRow{}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCreateBracket(w http.ResponseWriter, r *http.Request) {
	if s.brackets == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "database not configured"})
		return
	}
	var req BracketCreateRequest
	if !s.decode(w, r, &req) {
		return
	}
	class, err := req.Validate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.brackets.Add(r.Context(), store.BracketRow{
		Country:     req.Country,
		TaxType:     class,
		IncomeLimit: req.IncomeLimit,
		Rate:        req.Rate,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"id": id, "message": "bracket created"})
}

func (s *Server) handleDeleteBracket(w http.ResponseWriter, r *http.Request) {
	if s.brackets == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "database not configured"})
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bracket id must be an integer"})
		return
	}

	if err := s.brackets.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, MessageResponse{Message: "bracket deleted"})
}

func (s *Server) handleForecastRevenue(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	months := 3
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 12 {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "months must be an integer between 1 and 12"})
			return
		}
		months = n
	}

	history, err := s.monthlyHistory(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	fc, err := forecast.ForecastRevenue(history, months)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, fc)
}

func (s *Server) handleForecastTrends(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	history, err := s.monthlyHistory(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := forecast.AnalyzeTrends(history)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleBreakEven(w http.ResponseWriter, r *http.Request) {
	revenue, err := decimal.NewFromString(r.URL.Query().Get("revenue"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "revenue must be a number"})
		return
	}
	costs, err := decimal.NewFromString(r.URL.Query().Get("costs"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "costs must be a number"})
		return
	}
	s.writeJSON(w, http.StatusOK, forecast.BreakEven(revenue, costs))
}

func (s *Server) monthlyHistory(r *http.Request) ([]forecast.Point, error) {
	summaries, err := s.records.MonthlyHistory(r.Context())
	if err != nil {
		return nil, err
	}
	points := make([]forecast.Point, 0, len(summaries))
	for _, m := range summaries {
		points = append(points, forecast.Point{
			Month:       m.Month,
			Revenue:     m.Revenue,
			Costs:       m.Costs,
			Profit:      m.Profit,
			NumProjects: m.NumProjects,
		})
	}
	return points, nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
