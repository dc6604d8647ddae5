// Package httpapi exposes the ledger operations over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"feedlot/docs/openapi"
	"feedlot/internal/adapters/reports"
	"feedlot/internal/core"
	"feedlot/pkg/domain"
)

// OperatorHeader carries the calling operator identity. Authentication is
// expected to happen upstream; the ledger only scopes by it.
const OperatorHeader = "X-Operator-ID"

// API bundles the HTTP handlers over the ledger service and reporter.
type API struct {
	service  *core.Service
	reporter *core.Reporter
	exports  *reports.Worker
	log      *zap.Logger
}

// New constructs the HTTP API. The export worker is optional.
func New(service *core.Service, reporter *core.Reporter, exports *reports.Worker, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{service: service, reporter: reporter, exports: exports, log: log}
}

// Router assembles the chi route tree.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openapi.Spec())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(a.requireOperator)

		r.Route("/pens", func(r chi.Router) {
			r.Post("/", a.createPen)
			r.Get("/", a.listPens)
			r.Get("/{penID}", a.getPen)
			r.Post("/{penID}/weight", a.updateWeight)
			r.Post("/{penID}/feedings", a.recordFeeding)
			r.Post("/{penID}/death-losses", a.recordDeathLoss)
			r.Post("/{penID}/treatments", a.recordTreatment)
			r.Post("/{penID}/partial-sales", a.recordPartialSale)
			r.Post("/{penID}/sale", a.sellAllCattle)
			r.Get("/{penID}/projection", a.weightProjection)
		})

		r.Post("/plans", a.registerPlan)
		r.Get("/dashboard", a.dashboard)
		r.Get("/sales", a.listSales)
		r.Get("/feedings", a.listFeedings)

		r.Route("/nutritionists", func(r chi.Router) {
			r.Get("/", a.listNutritionists)
			r.Post("/invitations", a.inviteNutritionist)
			r.Post("/{nutritionistID}/accept", a.acceptInvitation)
		})

		if a.exports != nil {
			r.Post("/reports/exports", a.enqueueExport)
			r.Get("/reports/exports/{exportID}", a.getExport)
		}
	})
	return r
}

type ctxKey int

const operatorKey ctxKey = 0

func (a *API) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator := r.Header.Get(OperatorHeader)
		if operator == "" {
			writeError(w, http.StatusUnauthorized, "missing "+OperatorHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(withOperator(r.Context(), operator)))
	})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Warn("encode response", zap.Error(err))
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}

// writeDomainError maps the error taxonomy to HTTP status codes.
func (a *API) writeDomainError(w http.ResponseWriter, err error) {
	var ruleErr domain.RuleViolationError
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case domain.IsInvariantViolation(err):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &ruleErr):
		writeError(w, http.StatusConflict, err.Error())
	default:
		a.log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
