package comms

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMSTemplate(t *testing.T) {
	tpl, err := NewSMSTemplate(MessageTypeOTP, "en", "OTP English", "Your AgriConnect code is {code}. Valid for {minutes} minutes.")
	require.NoError(t, err)
	assert.Equal(t, 61, tpl.CharacterCount)
	assert.True(t, tpl.Active)
	assert.ElementsMatch(t, []string{"code", "minutes"}, tpl.Placeholders())

	_, err = NewSMSTemplate(MessageType("nope"), "en", "n", "c")
	assert.Error(t, err)
	_, err = NewSMSTemplate(MessageTypeOTP, "not a lang!", "n", "c")
	assert.Error(t, err)
	_, err = NewSMSTemplate(MessageTypeOTP, "en", "n", "")
	assert.Error(t, err)
}

func TestTemplateRender(t *testing.T) {
	tpl, err := NewSMSTemplate(MessageTypeOrderConfirmation, "en", "Order", "Order {number} confirmed, total {total}.")
	require.NoError(t, err)

	msg, err := tpl.Render(map[string]string{"number": "AG20260826", "total": "GHS 82.00"})
	require.NoError(t, err)
	assert.Equal(t, "Order AG20260826 confirmed, total GHS 82.00.", msg)

	// missing variables block the send
	_, err = tpl.Render(map[string]string{"number": "AG20260826"})
	assert.Error(t, err)
}

func TestTemplateUpdateContentRecountsCharacters(t *testing.T) {
	tpl, err := NewSMSTemplate(MessageTypeWelcome, "tw", "Welcome Twi", "Akwaaba {name}!")
	require.NoError(t, err)
	require.Equal(t, 15, tpl.CharacterCount)

	require.NoError(t, tpl.UpdateContent("Akwaaba!"))
	assert.Equal(t, 8, tpl.CharacterCount)
}

func TestMatchLanguage(t *testing.T) {
	assert.Equal(t, "en", MatchLanguage("en"))
	assert.Equal(t, "tw", MatchLanguage("tw"))
	assert.Equal(t, "sw", MatchLanguage("sw-KE"))
	assert.Equal(t, "fr", MatchLanguage("fr-CI"))
	// unsupported and garbage tags fall back to English
	assert.Equal(t, "en", MatchLanguage("ja"))
	assert.Equal(t, "en", MatchLanguage("!!"))
}

func TestMessageLifecycle(t *testing.T) {
	msg, err := NewSMSMessage("+233201234567", "Your code is 123456", MessageTypeOTP, "en", nil)
	require.NoError(t, err)

	provider, err := NewSMSProvider(ProviderAVRSMS, "AVRSMS", nil, 5)
	require.NoError(t, err)
	require.NoError(t, provider.SetSenderID("AgriConn"))

	require.NoError(t, msg.Queue(provider))
	assert.Equal(t, MessageStatusQueued, msg.Status)
	assert.Equal(t, "AgriConn", msg.SenderID)

	require.NoError(t, msg.MarkSent("avr-123", `{"status":"S"}`))
	require.NoError(t, msg.MarkDelivered())
	assert.True(t, msg.IsFinal())

	assert.Error(t, msg.MarkFailed("too late"))
	assert.Error(t, msg.Queue(provider))
}

func TestMessageFailure(t *testing.T) {
	msg, err := NewSMSMessage("+233201234567", "hello", MessageTypeMarketing, "en", nil)
	require.NoError(t, err)

	require.NoError(t, msg.MarkFailed("no provider"))
	assert.Equal(t, MessageStatusFailed, msg.Status)
	assert.Equal(t, "no provider", msg.FailureReason)
}

func TestPreferenceQuietHours(t *testing.T) {
	pref, err := NewCommunicationPreference(uuid.New())
	require.NoError(t, err)
	require.NoError(t, pref.SetQuietHours(21, 6))

	night := time.Date(2026, 8, 26, 23, 0, 0, 0, time.UTC)
	morning := time.Date(2026, 8, 26, 5, 0, 0, 0, time.UTC)
	noon := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	assert.True(t, pref.InQuietHours(night))
	assert.True(t, pref.InQuietHours(morning))
	assert.False(t, pref.InQuietHours(noon))

	// OTP always goes through
	assert.True(t, pref.AllowsMessage(MessageTypeOTP, night))
	assert.False(t, pref.AllowsMessage(MessageTypeDeliveryUpdate, night))
	assert.True(t, pref.AllowsMessage(MessageTypeDeliveryUpdate, noon))

	// marketing requires its own opt-in
	assert.False(t, pref.AllowsMessage(MessageTypeMarketing, noon))
	pref.SetChannels(true, true, true)
	assert.True(t, pref.AllowsMessage(MessageTypeMarketing, noon))

	assert.Error(t, pref.SetQuietHours(25, 6))
}

func TestPreferenceSetLanguage(t *testing.T) {
	pref, err := NewCommunicationPreference(uuid.New())
	require.NoError(t, err)

	pref.SetLanguage("yo-NG")
	assert.Equal(t, "yo", pref.PreferredLanguage)

	pref.SetLanguage("klingon")
	assert.Equal(t, "en", pref.PreferredLanguage)
}
