package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-relay/internal/llm"
	"wedding-relay/internal/models"
	"wedding-relay/internal/otp"
	"wedding-relay/internal/whatsapp"
)

type sentText struct {
	to   string
	text string
}

type fakeMessenger struct {
	sent []sentText
	err  error
}

func (m *fakeMessenger) SendText(_ context.Context, chat, text string) error {
	m.sent = append(m.sent, sentText{chat, text})
	return m.err
}

func (m *fakeMessenger) SendMessage(_ context.Context, phone, text string) error {
	m.sent = append(m.sent, sentText{phone, text})
	if m.err != nil && strings.Contains(phone, "bad") {
		return m.err
	}
	return nil
}

type fakeCompleter struct {
	prompts []string
	reply   string
	err     error
}

func (c *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.reply, c.err
}

func TestRelay_IgnoresMessagesWithoutMention(t *testing.T) {
	m := &fakeMessenger{}
	c := &fakeCompleter{reply: "hi"}
	h := NewRelayHandler(m, c, RelayConfig{BotName: "Cupid"}, zerolog.Nop())

	require.NoError(t, h.HandleMessage(context.Background(), whatsapp.Incoming{Chat: "123@g.us", Text: "hello everyone"}))
	assert.Empty(t, m.sent)
	assert.Empty(t, c.prompts)
}

func TestRelay_RepliesWithCompletion(t *testing.T) {
	m := &fakeMessenger{}
	c := &fakeCompleter{reply: "<think>\nhmm\n</think>\nThe ceremony starts at 3pm."}
	h := NewRelayHandler(m, c, RelayConfig{BotName: "Cupid", RemoveThinkTags: true}, zerolog.Nop())

	err := h.HandleMessage(context.Background(), whatsapp.Incoming{Chat: "123@g.us", Text: "@cupid when does it start?"})
	require.NoError(t, err)

	assert.Equal(t, []string{"when does it start?"}, c.prompts)
	require.Len(t, m.sent, 1)
	assert.Equal(t, sentText{"123@g.us", "The ceremony starts at 3pm."}, m.sent[0])
}

func TestRelay_Echo(t *testing.T) {
	m := &fakeMessenger{}
	c := &fakeCompleter{}
	h := NewRelayHandler(m, c, RelayConfig{BotName: "Cupid", Echo: true}, zerolog.Nop())

	require.NoError(t, h.HandleMessage(context.Background(), whatsapp.Incoming{Chat: "c", Text: "@Cupid ping"}))
	assert.Equal(t, []sentText{{"c", "@Cupid ping"}}, m.sent)
	assert.Empty(t, c.prompts)
}

func TestRelay_CompletionFailureSendsFallback(t *testing.T) {
	m := &fakeMessenger{}
	c := &fakeCompleter{err: errors.New("connection refused")}
	h := NewRelayHandler(m, c, RelayConfig{BotName: "Cupid"}, zerolog.Nop())

	require.NoError(t, h.HandleMessage(context.Background(), whatsapp.Incoming{Chat: "c", Text: "@Cupid hi"}))
	assert.Equal(t, []sentText{{"c", llm.FallbackReply}}, m.sent)
}

func TestRelay_SendFailure(t *testing.T) {
	m := &fakeMessenger{err: errors.New("offline")}
	h := NewRelayHandler(m, &fakeCompleter{reply: "ok"}, RelayConfig{BotName: "Cupid"}, zerolog.Nop())

	err := h.HandleMessage(context.Background(), whatsapp.Incoming{Chat: "c", Text: "@Cupid hi"})
	assert.Error(t, err)
}

func TestRemoveThinkTags(t *testing.T) {
	assert.Equal(t, "answer", RemoveThinkTags("<think>a\nb</think> answer <think>c</think>"))
	assert.Equal(t, "plain", RemoveThinkTags("plain"))
}

func TestInviteParty(t *testing.T) {
	m := &fakeMessenger{err: errors.New("not on whatsapp")}
	inv := NewInviter(m, WeddingDetails{
		WeddingDate:     "05.01.2026",
		WeddingLocation: "Garden Hall",
		BrideName:       "Anna",
		GroomName:       "David",
	}, zerolog.Nop())

	outcomes := inv.InviteParty(context.Background(), models.Party{
		{FirstName: "John", Nickname: "Johnny", Phone: "+1 555 0100"},
		{FirstName: "Jane"},
		{FirstName: "Tim", Phone: "bad-number"},
		{FirstName: "Somchai", Country: "TH", Phone: "081-234-5678"},
	})

	require.Len(t, outcomes, 4)
	assert.NoError(t, outcomes[0].Err)
	assert.True(t, outcomes[1].Skipped)
	assert.Error(t, outcomes[2].Err)
	assert.NoError(t, outcomes[3].Err)

	require.Len(t, m.sent, 3)
	assert.Equal(t, "15550100", m.sent[0].to)
	assert.Equal(t, "66812345678", m.sent[2].to, "local number dialed with the guest's country code")
	assert.Contains(t, m.sent[0].text, "Dear Johnny")
	assert.Contains(t, m.sent[0].text, "*Anna* & *David*")
	assert.Contains(t, m.sent[0].text, "Garden Hall")
}

func TestTOTPValue(t *testing.T) {
	gen := otp.NewGenerator(map[string]string{"bank": "JBSWY3DPEHPK3PXP"})
	h := New(nil, nil, gen, otp.NewInbox(time.Minute), zerolog.Nop())
	fixed := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	srv := httptestServer(t, h)

	resp, err := http.Get(srv + "/2fa/totp/bank/value")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)

	want, err := gen.Code("bank", fixed)
	require.NoError(t, err)
	assert.Equal(t, want, string(body))

	resp2, err := http.Get(srv + "/2fa/totp/unknown/value")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestSMSInbox(t *testing.T) {
	h := New(nil, nil, otp.NewGenerator(nil), otp.NewInbox(5*time.Minute), zerolog.Nop())
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	srv := httptestServer(t, h)

	resp, err := http.Post(srv+"/2fa/sms/bank", "application/json", strings.NewReader(`{"text":"Your OTP is 654321"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	now = now.Add(2 * time.Minute)
	got := getSMS(t, srv+"/2fa/sms/bank")
	assert.Equal(t, true, got["found"])
	assert.Equal(t, "654321", got["code"])
	assert.EqualValues(t, 120, got["elapsedSeconds"])
	assert.EqualValues(t, 180, got["expiresInSeconds"])

	now = now.Add(4 * time.Minute)
	got = getSMS(t, srv+"/2fa/sms/bank")
	assert.Equal(t, false, got["found"])
}

func getSMS(t *testing.T, url string) map[string]interface{} {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func httptestServer(t *testing.T, h *Handlers) string {
	t.Helper()
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv.URL
}
