package pvoutput_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"aurora-pvlogd/internal/errors"
	"aurora-pvlogd/internal/pvoutput"
	"aurora-pvlogd/internal/sched"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now    int64
	offset int64
}

func (c *fakeClock) Now() int64              { return c.now }
func (c *fakeClock) ToLocal(t int64) int64   { return t + c.offset }
func (c *fakeClock) FromLocal(t int64) int64 { return t - c.offset }

func newTestClient(t *testing.T, url string, offset int64) *pvoutput.Client {
	t.Helper()
	c, err := pvoutput.NewClient(pvoutput.Config{
		URL:      url,
		APIKey:   "test-key",
		SystemID: "12345",
	}, &fakeClock{offset: offset})
	require.NoError(t, err)

	return c
}

func TestSendPayloadAndHeaders(t *testing.T) {
	var gotBody string
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotBody = r.PostForm.Encode()
		gotHeader = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3600)

	// 2023-11-14 22:15:00 UTC, +1h local = 23:15.
	err := c.Send(context.Background(), 4230, 1700000100)
	require.NoError(t, err)

	assert.Equal(t, "c1=0&d=20231114&t=23%3A15&v1=4230", gotBody)
	assert.Equal(t, "test-key", gotHeader.Get("X-Pvoutput-Apikey"))
	assert.Equal(t, "12345", gotHeader.Get("X-Pvoutput-SystemId"))
	assert.Equal(t, "application/x-www-form-urlencoded", gotHeader.Get("Content-Type"))
}

func TestSendLocalDateRollsOver(t *testing.T) {
	var gotDate, gotTime string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotDate = r.PostForm.Get("d")
		gotTime = r.PostForm.Get("t")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 7200)

	// 2023-11-14 23:30:00 UTC crosses midnight at +2h.
	err := c.Send(context.Background(), 100, 1700004600)
	require.NoError(t, err)
	assert.Equal(t, "20231115", gotDate)
	assert.Equal(t, "01:30", gotTime)
}

func TestSendNonSuccessStatusIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)

	err := c.Send(context.Background(), 100, 1700000100)
	require.Error(t, err)
	assert.Equal(t, errors.ErrReportReject, errors.CodeOf(err))
}

func TestSendTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	c := newTestClient(t, srv.URL, 0)

	err := c.Send(context.Background(), 100, 1700000100)
	require.Error(t, err)
	assert.Equal(t, errors.ErrReportSend, errors.CodeOf(err))
}

// Delivery retries across iterations: three rejections followed by a 200.
// The pending flag clears only on the fourth attempt.
func TestDeliveryRetriesUntilAccepted(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 4 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	clk := &fakeClock{now: 1700000100}
	c := newTestClient(t, srv.URL, 0)

	var pending sched.PendingReport
	pending.Set(4230, clk.Now())

	var lastSent int64
	for i := 0; i < 6; i++ {
		gotCycle, energy, readAt, ok := pending.Get()
		if !ok {
			break
		}
		clk.now++
		if err := c.Send(context.Background(), energy, readAt); err != nil {
			continue
		}
		if pending.Clear(gotCycle) {
			lastSent = clk.Now()
		}
	}

	assert.Equal(t, 4, attempts, "flag cleared on the fourth attempt")
	_, _, _, ok := pending.Get()
	assert.False(t, ok)
	assert.Equal(t, int64(1700000104), lastSent, "last published equals the time of the fourth attempt")
}
