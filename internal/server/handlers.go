package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/transfer"
)

// subscriptionRequest is the body of create and update requests. Dates are YYYY-MM-DD.
type subscriptionRequest struct {
	Name            string  `json:"name"`
	Cost            float64 `json:"cost"`
	BillingCycle    string  `json:"billing_cycle"`
	Category        string  `json:"category"`
	NextBillingDate string  `json:"next_billing_date"`
	LastUsed        string  `json:"last_used"`
	Status          string  `json:"status"`
	Notes           string  `json:"notes"`
}

func (req subscriptionRequest) toModel() (model.Subscription, error) {
	sub := model.Subscription{
		Name:         req.Name,
		Cost:         req.Cost,
		BillingCycle: model.ParseBillingCycle(req.BillingCycle),
		Category:     req.Category,
		Notes:        req.Notes,
	}

	var err error
	if sub.Status, err = model.ParseStatus(req.Status); err != nil {
		return sub, invalid(err)
	}
	if req.NextBillingDate != "" {
		if sub.NextBillingDate, err = model.ParseDate(req.NextBillingDate); err != nil {
			return sub, invalid(fmt.Errorf("next_billing_date: %w", err))
		}
	}
	if sub.LastUsed, err = model.ParseOptionalDate(req.LastUsed); err != nil {
		return sub, invalid(fmt.Errorf("last_used: %w", err))
	}
	return sub, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", economics.ErrInvalidInput, err)
}

func decodeSubscription(r *http.Request) (model.Subscription, error) {
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return model.Subscription{}, invalid(fmt.Errorf("decode body: %w", err))
	}
	return req.toModel()
}

func listFilter(r *http.Request) (model.ListFilter, error) {
	q := r.URL.Query()
	filter := model.ListFilter{Category: q.Get("category")}
	if raw := q.Get("status"); raw != "" {
		st, err := model.ParseStatus(raw)
		if err != nil {
			return filter, invalid(err)
		}
		filter.Status = st
	}
	return filter, nil
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		s.fail(w, "list subscriptions", err)
		return
	}
	subs, err := s.tracker.List(r.Context(), filter)
	if err != nil {
		s.fail(w, "list subscriptions", err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeSubscription(r)
	if err != nil {
		s.fail(w, "create subscription", err)
		return
	}
	if err := s.tracker.Add(r.Context(), &sub); err != nil {
		s.fail(w, "create subscription", err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.tracker.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, "get subscription", err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeSubscription(r)
	if err != nil {
		s.fail(w, "update subscription", err)
		return
	}
	sub.ID = r.PathValue("id")
	if err := s.tracker.Update(r.Context(), &sub); err != nil {
		s.fail(w, "update subscription", err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, "delete subscription", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkUsed(w http.ResponseWriter, r *http.Request) {
	sub, err := s.tracker.MarkUsed(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, "mark used", err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func codecFor(r *http.Request) (transfer.Codec, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	c, err := transfer.Get(format)
	if err != nil {
		return nil, invalid(err)
	}
	return c, nil
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	codec, err := codecFor(r)
	if err != nil {
		s.fail(w, "import subscriptions", err)
		return
	}
	body := http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	report, err := s.tracker.Import(r.Context(), codec, body)
	if err != nil {
		s.fail(w, "import subscriptions", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	codec, err := codecFor(r)
	if err != nil {
		s.fail(w, "export subscriptions", err)
		return
	}
	filter, err := listFilter(r)
	if err != nil {
		s.fail(w, "export subscriptions", err)
		return
	}

	var buf bytes.Buffer
	if _, err := s.tracker.Export(r.Context(), codec, &buf, filter); err != nil {
		s.fail(w, "export subscriptions", err)
		return
	}
	w.Header().Set("Content-Type", codec.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "subscriptions."+codec.Name()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	o, err := s.tracker.Overview(r.Context())
	if err != nil {
		s.fail(w, "overview", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	b, err := s.tracker.Categories(r.Context())
	if err != nil {
		s.fail(w, "aggregate categories", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeadWeight(w http.ResponseWriter, r *http.Request) {
	report, err := s.tracker.DeadWeight(r.Context())
	if err != nil {
		s.fail(w, "detect dead weight", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	months := 6
	if raw := q.Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.fail(w, "aggregate trends", invalid(fmt.Errorf("months: %w", err)))
			return
		}
		months = n
	}
	field, err := economics.ParseDateField(q.Get("field"))
	if err != nil {
		s.fail(w, "aggregate trends", err)
		return
	}
	fill := strings.EqualFold(q.Get("fill"), "true") || q.Get("fill") == "1"

	points, err := s.tracker.Trends(r.Context(), months, field, fill)
	if err != nil {
		s.fail(w, "aggregate trends", err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	set, err := s.tracker.Recommendations(r.Context())
	if err != nil {
		s.fail(w, "build recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	renewals, err := s.tracker.Upcoming(r.Context())
	if err != nil {
		s.fail(w, "upcoming renewals", err)
		return
	}
	writeJSON(w, http.StatusOK, renewals)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.tracker.Snapshot(r.Context())
	if err != nil {
		s.fail(w, "snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.tracker.Settings(r.Context())
	if err != nil {
		s.fail(w, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	// Start from the current settings so partial bodies only change what they name.
	st, err := s.tracker.Settings(r.Context())
	if err != nil {
		s.fail(w, "update settings", err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		s.fail(w, "update settings", invalid(fmt.Errorf("decode body: %w", err)))
		return
	}
	saved, err := s.tracker.UpdateSettings(r.Context(), st)
	if err != nil {
		s.fail(w, "update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Catalog().All())
}

func (s *Server) handleRunReminder(w http.ResponseWriter, r *http.Request) {
	res, err := s.reminder.Run(r.Context())
	if s.metrics != nil {
		s.metrics.ObserveReminder(res, err)
	}
	if err != nil {
		s.fail(w, "run reminder", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
