package usecase

import (
	"testing"
	"time"

	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// persist assigns ids to the inserts of plan and links refunds the way the
// repository does, returning every row by id.
func persist(plan *models.LedgerPlan, existing []*models.Transaction) map[int64]*models.Transaction {
	byID := make(map[int64]*models.Transaction)
	var next int64
	for _, t := range existing {
		byID[t.ID] = t
		if t.ID > next {
			next = t.ID
		}
	}
	for _, t := range plan.Updates {
		byID[t.ID] = t
	}
	for _, t := range plan.Inserts {
		next++
		t.ID = next
		byID[t.ID] = t
		if t.RefundOf != nil {
			target := byID[t.RefundOf.ID]
			t.RefundTransactionID = int64Ptr(target.ID)
			target.RefundTransactionID = int64Ptr(t.ID)
		}
	}
	return byID
}

func recordedContribution(t *testing.T, input *models.ContributionInput) []*models.Transaction {
	t.Helper()
	plan, err := planContribution(testSettings, input, time.Now())
	require.NoError(t, err)
	persist(plan, nil)
	return plan.Inserts
}

func TestPlanRefund_ReversesEveryPair(t *testing.T) {
	rows := recordedContribution(t, contributionInput())
	now := time.Now()

	plan, refundGroup, err := planRefund(testSettings, rows, nil, models.RefundOptions{RefundPaymentProcessorFee: true}, now)
	require.NoError(t, err)
	assert.NotEqual(t, rows[0].TransactionGroup, refundGroup)
	assert.Empty(t, plan.Updates)
	assert.Len(t, plan.Inserts, len(rows))

	for _, row := range plan.Inserts {
		assert.True(t, row.IsRefund)
		assert.Equal(t, refundGroup, row.TransactionGroup)
		require.NotNil(t, row.RefundOf)
		assert.Equal(t, row.CollectiveID, row.RefundOf.CollectiveID)
	}

	all := append(append([]*models.Transaction{}, rows...), plan.Inserts...)
	for id, balance := range netByCollective(all) {
		assert.Equal(t, int64(0), balance, "collective %d", id)
	}
}

func TestPlanRefund_ProcessorFeeCoveredByHost(t *testing.T) {
	rows := recordedContribution(t, contributionInput())

	plan, _, err := planRefund(testSettings, rows, nil, models.RefundOptions{}, time.Now())
	require.NoError(t, err)

	kinds := kindsOf(plan.Inserts)
	assert.Contains(t, kinds, models.KindPaymentProcessorCover)
	assert.NotContains(t, kinds, models.KindPaymentProcessorFee)

	all := append(append([]*models.Transaction{}, rows...), plan.Inserts...)
	balances := netByCollective(all)
	assert.Equal(t, int64(0), balances[collective])
	assert.Equal(t, int64(0), balances[contributor])
	assert.Equal(t, int64(300), balances[processorID])
	assert.Equal(t, int64(-300), balances[hostID])
}

func TestPlanRefund_KeepPlatformTip(t *testing.T) {
	rows := recordedContribution(t, contributionInput())

	plan, _, err := planRefund(testSettings, rows, nil, models.RefundOptions{KeepPlatformTip: true, RefundPaymentProcessorFee: true}, time.Now())
	require.NoError(t, err)

	assert.NotContains(t, kindsOf(plan.Inserts), models.KindPlatformTip)
	all := append(append([]*models.Transaction{}, rows...), plan.Inserts...)
	assert.Equal(t, int64(-1000), netByCollective(all)[contributor])
}

func TestPlanRefund_DebtSettlements(t *testing.T) {
	input := contributionInput()
	input.PlatformTipCollectedByHost = true
	input.HostFeeShareIsDebt = true
	rows := recordedContribution(t, input)
	group := rows[0].TransactionGroup

	settlements := map[models.TransactionKind]*models.SettlementDebt{
		models.KindPlatformTipDebt: {TransactionSettlement: *owed(group, models.KindPlatformTipDebt, time.Now())},
	}
	invoiced := owed(group, models.KindHostFeeShareDebt, time.Now())
	invoiced.Status = models.SettlementInvoiced
	settlements[models.KindHostFeeShareDebt] = &models.SettlementDebt{TransactionSettlement: *invoiced}

	plan, refundGroup, err := planRefund(testSettings, rows, settlements, models.RefundOptions{}, time.Now())
	require.NoError(t, err)
	require.Len(t, plan.Settlements, 3)

	// an owed debt and its reversal cancel out
	assert.Equal(t, group, plan.Settlements[0].TransactionGroup)
	assert.Equal(t, models.SettlementSettled, plan.Settlements[0].Status)
	assert.Equal(t, refundGroup, plan.Settlements[1].TransactionGroup)
	assert.Equal(t, models.SettlementSettled, plan.Settlements[1].Status)

	// an invoiced debt is paid, the platform owes its reversal back
	assert.Equal(t, refundGroup, plan.Settlements[2].TransactionGroup)
	assert.Equal(t, models.KindHostFeeShareDebt, plan.Settlements[2].Kind)
	assert.Equal(t, models.SettlementOwed, plan.Settlements[2].Status)
}

func TestPlanRefund_LinksPassCheck(t *testing.T) {
	input := contributionInput()
	input.HostFeeShareIsDebt = true
	rows := recordedContribution(t, input)

	plan, refundGroup, err := planRefund(testSettings, rows, nil, models.RefundOptions{}, time.Now())
	require.NoError(t, err)
	persist(plan, rows)

	linked := make(map[int64]*models.Transaction)
	for _, row := range rows {
		assert.NotNil(t, row.RefundTransactionID)
		linked[row.ID] = row
	}

	settled := map[models.TransactionKind]bool{models.KindHostFeeShareDebt: true}
	assert.Empty(t, checkGroup(refundGroup, refundRows(plan, refundGroup), linked, settled))
	assert.Equal(t, []int64(nil), externalRefundLinks(rows[:0]))
	// the cover pair has nothing to link to
	assert.Len(t, externalRefundLinks(refundRows(plan, refundGroup)), len(rows)-2)
}

func TestPlanRefund_SplitsLegacyGroupFirst(t *testing.T) {
	rows := legacyGroup()

	plan, refundGroup, err := planRefund(testSettings, rows, nil, models.RefundOptions{RefundPaymentProcessorFee: true}, time.Now())
	require.NoError(t, err)

	assert.Len(t, plan.Updates, 2)
	refunds := refundRows(plan, refundGroup)
	assert.Len(t, refunds, 8)
	assert.Len(t, plan.Inserts, 6+8)

	persist(plan, rows)
	merged := append(append([]*models.Transaction{}, plan.Updates...), plan.Inserts...)
	for id, balance := range netByCollective(merged) {
		assert.Equal(t, int64(0), balance, "collective %d", id)
	}
}

func TestPlanRefund_Rejections(t *testing.T) {
	_, _, err := planRefund(testSettings, nil, nil, models.RefundOptions{}, time.Now())
	assert.ErrorIs(t, err, models.ErrGroupNotFound)

	rows := recordedContribution(t, contributionInput())
	rows[0].RefundTransactionID = int64Ptr(500)
	_, _, err = planRefund(testSettings, rows, nil, models.RefundOptions{}, time.Now())
	assert.ErrorIs(t, err, models.ErrAlreadyRefunded)

	rows = recordedContribution(t, contributionInput())
	plan, refundGroup, err := planRefund(testSettings, rows, nil, models.RefundOptions{}, time.Now())
	require.NoError(t, err)
	persist(plan, rows)
	_, _, err = planRefund(testSettings, refundRows(plan, refundGroup), nil, models.RefundOptions{}, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	orphan := recordedContribution(t, contributionInput())
	for _, row := range orphan {
		row.HostCollectiveID = nil
	}
	_, _, err = planRefund(testSettings, orphan, nil, models.RefundOptions{}, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
