package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports liveness, and database reachability when DB is set.
type Health struct {
	DB Pinger
}

func (h Health) Check(w http.ResponseWriter, r *http.Request) {
	res := map[string]string{"status": "ok"}

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.DB.PingContext(ctx); err != nil {
			res["status"] = "degraded"
			res["database"] = "unreachable"
			writeJSON(w, r, http.StatusServiceUnavailable, res)
			return
		}
		res["database"] = "ok"
	}

	writeJSON(w, r, http.StatusOK, res)
}
