package service

import (
	"context"
	"testing"

	"github.com/itchan-dev/boardstore/shared/domain"
	internal_errors "github.com/itchan-dev/boardstore/shared/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		stored, supplied domain.Password
		want             domain.Decision
	}{
		{"secret", "secret", domain.Authorized},
		{"secret", "Secret", domain.Denied},
		{"secret", "secret ", domain.Denied},
		{"secret", "", domain.Denied},
		{"пароль", "пароль", domain.Authorized},
		{"", "", domain.Authorized},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, authorize(tt.stored, tt.supplied), "%q vs %q", tt.stored, tt.supplied)
	}
}

func TestDecisionsAreCounted(t *testing.T) {
	counter := func(op string, d domain.Decision) float64 {
		return testutil.ToFloat64(moderationDecisions.WithLabelValues(op, d.String()))
	}
	ctx := context.Background()
	storage := &MockThreadStorage{
		getThreadFunc: func(id domain.ThreadId) (domain.Thread, error) { return storedThread(id, "secret", 0), nil },
		reportThreadFunc: func(domain.ThreadId) error {
			return internal_errors.ErrNotFound
		},
	}
	s := newTestThreadService(storage, &MockValidator{})

	deniedBefore := counter(opDeleteThread, domain.Denied)
	invalidBefore := counter(opDeleteThread, domain.Invalid)
	authorizedBefore := counter(opDeleteThread, domain.Authorized)
	notFoundBefore := counter(opReportThread, domain.NotFound)

	_, _ = s.Delete(ctx, domain.NewId(), "wrong")
	_, _ = s.Delete(ctx, "bad-id", "secret")
	_, _ = s.Delete(ctx, domain.NewId(), "secret")
	_ = s.Report(ctx, domain.NewId())

	assert.Equal(t, deniedBefore+1, counter(opDeleteThread, domain.Denied))
	assert.Equal(t, invalidBefore+1, counter(opDeleteThread, domain.Invalid))
	assert.Equal(t, authorizedBefore+1, counter(opDeleteThread, domain.Authorized))
	assert.Equal(t, notFoundBefore+1, counter(opReportThread, domain.NotFound))
}
