package cron

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/services/ledger/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettlementJob_DefaultSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job := NewSettlementJob(mocks.NewMockLedgerUC(ctrl), &models.Config{}, nil)
	assert.Equal(t, DefaultSettlementSchedule, job.schedule)

	job = NewSettlementJob(mocks.NewMockLedgerUC(ctrl), &models.Config{Ledger: models.LedgerConfig{SettlementCron: "@daily"}}, nil)
	assert.Equal(t, "@daily", job.schedule)
}

func TestSettlementJob_Start_InvalidSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job := NewSettlementJob(mocks.NewMockLedgerUC(ctrl), &models.Config{Ledger: models.LedgerConfig{SettlementCron: "every tuesday"}}, nil)
	err := job.Start()
	assert.ErrorContains(t, err, "invalid settlement schedule")
}

func TestSettlementJob_StartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job := NewSettlementJob(mocks.NewMockLedgerUC(ctrl), &models.Config{}, nil)
	require.NoError(t, job.Start())
	assert.Len(t, job.cron.Entries(), 1)
	job.Stop()
}

func TestSettlementJob_Run(t *testing.T) {
	now := time.Date(2024, 4, 1, 0, 10, 0, 0, time.UTC)

	tests := []struct {
		name string
		ret  []*models.SettlementInvoice
		err  error
	}{
		{
			name: "invoices hosts",
			ret: []*models.SettlementInvoice{
				{InvoiceID: uuid.New(), HostCollectiveID: 30, Totals: map[string]int64{"USD": 1000}, Debts: 2},
				{InvoiceID: uuid.New(), HostCollectiveID: 31, Totals: map[string]int64{"EUR": 250}, Debts: 1},
			},
		},
		{
			name: "lock held elsewhere",
			err:  fmt.Errorf("%w: settlement", models.ErrLockNotAcquired),
		},
		{
			name: "failure is logged",
			err:  errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUC := mocks.NewMockLedgerUC(ctrl)
			job := NewSettlementJob(mockUC, &models.Config{}, nil)
			job.now = func() time.Time { return now }

			mockUC.EXPECT().RunMonthlySettlement(gomock.Any(), now).Return(tt.ret, tt.err).Times(1)

			job.Run(context.Background())
		})
	}
}
