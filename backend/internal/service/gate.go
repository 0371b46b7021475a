package service

import (
	"crypto/subtle"

	"github.com/itchan-dev/boardstore/shared/domain"
	"github.com/itchan-dev/boardstore/shared/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opDeleteThread = "delete_thread"
	opReportThread = "report_thread"
	opRedactReply  = "redact_reply"
	opReportReply  = "report_reply"
)

var moderationDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "boardstore",
		Name:      "moderation_decisions_total",
		Help:      "Moderation checks by operation and internal decision",
	},
	[]string{"operation", "decision"},
)

// authorize is exact string equality between the stored and the supplied
// password, compared in constant time.
func authorize(stored, supplied domain.Password) domain.Decision {
	if subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1 {
		return domain.Authorized
	}
	return domain.Denied
}

// decide records the decision and returns what the caller gets to see.
func decide(op string, decision domain.Decision, id string) domain.Outcome {
	logger.Log.Debug("moderation decision", "operation", op, "id", id, "decision", decision.String())
	moderationDecisions.WithLabelValues(op, decision.String()).Inc()
	return decision.Outcome()
}
