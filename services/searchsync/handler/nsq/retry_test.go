package nsq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/services/searchsync/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessage(t *testing.T) {
	tests := []struct {
		name    string
		body    func(t *testing.T) []byte
		setup   func(uc *mocks.MockSearchSyncUC)
		wantErr error
	}{
		{
			name: "re-enqueues requests",
			body: func(t *testing.T) []byte {
				data, err := json.Marshal(models.SearchRetryMessage{
					Requests: []models.SearchRequest{{Type: models.SearchRequestUpdate, Table: "orders", Payload: models.SearchRequestPayload{ID: 8}}},
					Attempt:  2,
					FailedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				})
				require.NoError(t, err)
				return data
			},
			setup: func(uc *mocks.MockSearchSyncUC) {
				uc.EXPECT().
					HandleRetry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, msg *models.SearchRetryMessage) error {
						assert.Equal(t, 2, msg.Attempt)
						assert.Equal(t, int64(8), msg.Requests[0].Payload.ID)
						return nil
					})
			},
		},
		{
			name:  "drops malformed message",
			body:  func(*testing.T) []byte { return []byte(`{"requests": "nope"`) },
			setup: func(uc *mocks.MockSearchSyncUC) {},
		},
		{
			name: "requeues while processor is stopped",
			body: func(*testing.T) []byte { return []byte(`{"requests":[],"attempt":1}`) },
			setup: func(uc *mocks.MockSearchSyncUC) {
				uc.EXPECT().HandleRetry(gomock.Any(), gomock.Any()).Return(models.ErrProcessorStopped)
			},
			wantErr: models.ErrProcessorStopped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUC := mocks.NewMockSearchSyncUC(ctrl)
			tt.setup(mockUC)
			h := NewRetryHandler(mockUC, &models.Config{}, nil)

			err := h.HandleMessage(tt.body(t))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStop_NotStarted(t *testing.T) {
	h := NewRetryHandler(nil, &models.Config{}, nil)
	assert.NotPanics(t, h.Stop)
}
