package comms

import (
	"context"
	"testing"

	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPreferenceService() (*PreferenceService, *MockPreferenceRepository, *MockLogRepository) {
	prefs := new(MockPreferenceRepository)
	logs := new(MockLogRepository)
	return NewPreferenceService(prefs, logs), prefs, logs
}

func TestPreferenceService_Get_Defaults(t *testing.T) {
	svc, prefs, _ := newPreferenceService()
	userID := uuid.New()

	prefs.On("FindByUser", mock.Anything, userID).Return(nil, shared.ErrNotFound)

	resp, err := svc.Get(context.Background(), userID)

	require.NoError(t, err)
	assert.True(t, resp.SMSEnabled)
	assert.True(t, resp.EmailEnabled)
	assert.False(t, resp.MarketingEnabled)
	assert.Equal(t, "en", resp.PreferredLanguage)
	assert.Nil(t, resp.QuietHoursStart)
}

func TestPreferenceService_Get_Existing(t *testing.T) {
	svc, prefs, _ := newPreferenceService()
	userID := uuid.New()

	existing, err := comms.NewCommunicationPreference(userID)
	require.NoError(t, err)
	existing.SetChannels(false, true, false)
	existing.SetLanguage("tw")
	prefs.On("FindByUser", mock.Anything, userID).Return(existing, nil)

	resp, err := svc.Get(context.Background(), userID)

	require.NoError(t, err)
	assert.False(t, resp.SMSEnabled)
	assert.Equal(t, "tw", resp.PreferredLanguage)
}

func TestPreferenceService_Update(t *testing.T) {
	svc, prefs, _ := newPreferenceService()
	userID := uuid.New()

	existing, err := comms.NewCommunicationPreference(userID)
	require.NoError(t, err)
	prefs.On("FindByUser", mock.Anything, userID).Return(existing, nil)
	prefs.On("Save", mock.Anything, mock.AnythingOfType("*comms.CommunicationPreference")).Return(nil)

	marketing := true
	lang := "ha"
	start, end := 21, 6
	resp, err := svc.Update(context.Background(), userID, UpdatePreferencesRequest{
		MarketingEnabled:  &marketing,
		PreferredLanguage: &lang,
		QuietHoursStart:   &start,
		QuietHoursEnd:     &end,
	})

	require.NoError(t, err)
	assert.True(t, resp.MarketingEnabled)
	assert.True(t, resp.SMSEnabled) // untouched fields keep their value
	assert.Equal(t, "ha", resp.PreferredLanguage)
	require.NotNil(t, resp.QuietHoursStart)
	assert.Equal(t, 21, *resp.QuietHoursStart)
	prefs.AssertExpectations(t)
}

func TestPreferenceService_Update_ClearQuietHours(t *testing.T) {
	svc, prefs, _ := newPreferenceService()
	userID := uuid.New()

	existing, err := comms.NewCommunicationPreference(userID)
	require.NoError(t, err)
	require.NoError(t, existing.SetQuietHours(22, 6))
	prefs.On("FindByUser", mock.Anything, userID).Return(existing, nil)
	prefs.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Update(context.Background(), userID, UpdatePreferencesRequest{
		ClearQuietHours: true,
	})

	require.NoError(t, err)
	assert.Nil(t, resp.QuietHoursStart)
	assert.Nil(t, resp.QuietHoursEnd)
}

func TestPreferenceService_ListLogs(t *testing.T) {
	svc, _, logs := newPreferenceService()
	userID := uuid.New()

	entry := comms.NewCommunicationLog(&userID, comms.ChannelSMS, "+233241234567", comms.MessageTypeOTP, true, "")
	logs.On("FindByUser", mock.Anything, userID, mock.Anything).Return([]comms.CommunicationLog{*entry}, nil)

	resp, err := svc.ListLogs(context.Background(), userID, shared.DefaultFilter())

	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, comms.ChannelSMS, resp[0].Channel)
	assert.True(t, resp[0].Succeeded)
}
