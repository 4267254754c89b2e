package healthmanager

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
)

// ReadinessChecker is implemented by the scheduler, ready once a full scan
// has completed.
type ReadinessChecker interface {
	Ready() bool
}

type HealthManager struct {
	readiness ReadinessChecker
	address   string
}

func NewHealthManager(address string) *HealthManager {
	return &HealthManager{
		address: address,
	}
}

func (h *HealthManager) SetReadinessChecker(readiness ReadinessChecker) {
	h.readiness = readiness
}

// Handler serves /livez and /readyz.
func (h *HealthManager) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", h.livenessProbe)
	mux.HandleFunc("/readyz", h.readinessProbe)
	return mux
}

// Start serves the probes until ctx is done.
func (h *HealthManager) Start(ctx context.Context) {
	srv := &http.Server{
		Addr:         h.address,
		Handler:      h.Handler(),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	go func() {
		logger.L().Info("starting health manager", helpers.String("address", h.address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Ctx(ctx).Error("failed to start health manager", helpers.Error(err), helpers.String("address", h.address))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func (h *HealthManager) livenessProbe(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *HealthManager) readinessProbe(w http.ResponseWriter, _ *http.Request) {
	if h.readiness != nil && h.readiness.Ready() {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
}
