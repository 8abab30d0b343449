package session

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adrianliechti/t101/pkg/provider"

	"github.com/stretchr/testify/require"
)

func TestLoadIssuesAndReusesCookie(t *testing.T) {
	m, err := New("test-secret")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)

	s1, err := m.Load(rec, req)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	req = httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.AddCookie(cookies[0])

	s2, err := m.Load(httptest.NewRecorder(), req)
	require.NoError(t, err)
	require.Equal(t, s1.ID, s2.ID)
}

func TestLoadRejectsForeignToken(t *testing.T) {
	other, err := New("other-secret")
	require.NoError(t, err)

	token, err := other.Sign("forged")
	require.NoError(t, err)

	m, err := New("test-secret")
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	s, err := m.Load(httptest.NewRecorder(), req)
	require.NoError(t, err)
	require.NotEqual(t, "forged", s.ID)
}

func TestHistoryBounded(t *testing.T) {
	m, err := New("", WithMaxHistory(4))
	require.NoError(t, err)

	s, err := m.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	for i := range 6 {
		m.Append(s.ID, provider.UserMessage(fmt.Sprintf("message %d", i)))
	}

	history := m.History(s.ID)
	require.Len(t, history, 4)
	require.Equal(t, "message 2", history[0].Text())
	require.Equal(t, "message 5", history[3].Text())
}

func TestSweep(t *testing.T) {
	now := time.Date(2029, 8, 29, 2, 14, 0, 0, time.UTC)

	m, err := New("test-secret", WithTTL(time.Hour), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	_, err = m.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	require.Equal(t, 0, m.Sweep())

	now = now.Add(2 * time.Hour)

	require.Equal(t, 1, m.Sweep())
	require.Equal(t, 0, m.Len())
}
