package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"taskflow-project/taskflow-service/analytics"
	"taskflow-project/taskflow-service/reporting"
)

type AnalyticsHandler struct {
	service *analytics.AnalyticsService
	reports *reporting.ReportGenerator
}

func NewAnalyticsHandler(service *analytics.AnalyticsService, reports *reporting.ReportGenerator) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, reports: reports}
}

func (h *AnalyticsHandler) ProjectStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.ProjectStats(mux.Vars(r)["projectID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AnalyticsHandler) SprintStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.SprintStats(mux.Vars(r)["sprintID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AnalyticsHandler) WorkloadReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.WorkloadReport(mux.Vars(r)["projectID"]))
}

func (h *AnalyticsHandler) VelocityTrend(w http.ResponseWriter, r *http.Request) {
	n := 5
	if v := r.URL.Query().Get("lastN"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid lastN", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, h.service.VelocityTrend(mux.Vars(r)["projectID"], n))
}

func (h *AnalyticsHandler) BurndownData(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.BurndownData(mux.Vars(r)["sprintID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (h *AnalyticsHandler) TeamPerformance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.TeamPerformance(mux.Vars(r)["projectID"]))
}

func (h *AnalyticsHandler) BlockedTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.FindBlockedTasks(mux.Vars(r)["projectID"]))
}

func (h *AnalyticsHandler) SprintReport(w http.ResponseWriter, r *http.Request) {
	out, err := h.reports.SprintReportText(mux.Vars(r)["sprintID"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}
