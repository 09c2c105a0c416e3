package puzzle

import (
	"errors"

	"github.com/go-puzzle-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opCreate  = "create"
	opRead    = "read"
	opReadAll = "read_all"
	opUpdate  = "update"
	opDelete  = "delete"
)

var lifecycleOps = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "puzzle_lifecycle_operations_total",
		Help: "Puzzle record lifecycle operations by outcome.",
	},
	[]string{"operation", "result"},
)

func observe(op string, err error) {
	lifecycleOps.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrImageTooLarge):
		return "bad_input"
	default:
		return "error"
	}
}
