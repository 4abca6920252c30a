package ticket

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSigner struct {
	descriptor string
	err        error
	signed     []string
}

func (f *fakeSigner) SignNonce(_ context.Context, nonce []byte) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	f.signed = append(f.signed, string(nonce))
	return f.descriptor, hex.EncodeToString([]byte("sig:" + string(nonce))), nil
}

var self = identity.Identity{Type: identity.TypeEmail, Principal: "bob@example.com"}.Descriptor()

func newSession(t *testing.T, url string, s NonceSigner) *Session {
	t.Helper()
	sess, err := NewSession(Options{BaseURL: url + "/", Self: self, Signer: s})
	require.NoError(t, err)
	return sess
}

// authority answers every unauthenticated request with a challenge and
// accepts the expected signature.
func authority(t *testing.T, nonce string, grant bool) (*httptest.Server, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if strings.HasSuffix(r.URL.Path, "/update-acl/") {
			c, err := r.Cookie("corral_session")
			if err != nil || c.Value != "s1" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			require.NoError(t, r.ParseForm())
			w.Write([]byte(r.PostForm.Get("identities")))
			return
		}
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set(ChallengeHeader, ChallengeValue(nonce))
			w.WriteHeader(http.StatusForbidden)
			return
		}
		d, sig, err := ParseAuthorization(auth)
		if err != nil || d != "full-descriptor" || string(sig) != "sig:"+nonce || !grant {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "corral_session", Value: "s1", Path: "/"})
		json.NewEncoder(w).Encode(Ticket{Value: "AK:sig", Date: "Mon, 02 Jan 2006 15:04:05 GMT"})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestDownloadTicket_ChallengeThenSuccess(t *testing.T) {
	srv, calls := authority(t, "abcd01", true)
	signer := &fakeSigner{descriptor: "full-descriptor"}
	s := newSession(t, srv.URL, signer)

	tk, err := s.DownloadTicket(context.Background(), "hash1")
	require.NoError(t, err)
	assert.Equal(t, "AK:sig", tk.Value)
	assert.NotEmpty(t, tk.Date)
	assert.Equal(t, []string{"abcd01"}, signer.signed)
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))
}

func TestUploadTicketThenACL_ReusesSessionCookie(t *testing.T) {
	srv, _ := authority(t, "ff", true)
	s := newSession(t, srv.URL, &fakeSigner{descriptor: "full-descriptor"})

	_, err := s.UploadTicket(context.Background(), "hash1", "image/jpeg", 10, []byte{1, 2})
	require.NoError(t, err)

	r := identity.Identity{Type: identity.TypeEmail, Principal: "carol@example.com"}.Descriptor()
	require.NoError(t, s.UpdateACL(context.Background(), "hash1", []identity.Descriptor{r}))

	// a fresh session has no cookie and the fake refuses it without a challenge
	other := newSession(t, srv.URL, &fakeSigner{descriptor: "full-descriptor"})
	err = other.UpdateACL(context.Background(), "hash1", []identity.Descriptor{r})
	assert.ErrorIs(t, err, common.ErrTicketDenied)
}

func TestTicket_WrongSignatureDenied(t *testing.T) {
	srv, calls := authority(t, "abcd", true)
	s := newSession(t, srv.URL, &fakeSigner{descriptor: "someone-else"})

	_, err := s.DownloadTicket(context.Background(), "hash1")
	assert.ErrorIs(t, err, common.ErrTicketDenied)
	assert.EqualValues(t, 2, atomic.LoadInt32(calls), "no retry after a rejected answer")
}

func TestTicket_DeniedWithoutChallenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	signer := &fakeSigner{descriptor: "d"}

	_, err := newSession(t, srv.URL, signer).DownloadTicket(context.Background(), "h")
	assert.ErrorIs(t, err, common.ErrTicketDenied)
	assert.Empty(t, signer.signed)
}

func TestTicket_MalformedResponses(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"bad json": func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("{nope")) },
		"empty":    func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"ticket":""}`)) },
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			_, err := newSession(t, srv.URL, &fakeSigner{}).DownloadTicket(context.Background(), "h")
			assert.ErrorIs(t, err, common.ErrMalformedResponse)
		})
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(ChallengeHeader, "Basic realm=x")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	_, err := newSession(t, srv.URL, &fakeSigner{}).DownloadTicket(context.Background(), "h")
	assert.ErrorIs(t, err, common.ErrChallengeMissing)
}

func TestTicket_SignerFailureAborts(t *testing.T) {
	srv, _ := authority(t, "aa", true)
	boom := errors.New("no key")
	_, err := newSession(t, srv.URL, &fakeSigner{err: boom}).DownloadTicket(context.Background(), "h")
	assert.ErrorIs(t, err, boom)
}

func TestTicket_ServerErrorIsUnexpected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	_, err := newSession(t, srv.URL, &fakeSigner{}).DownloadTicket(context.Background(), "h")
	assert.ErrorIs(t, err, common.ErrUnexpectedStatus)
}

func TestTicket_Cancelled(t *testing.T) {
	srv, _ := authority(t, "aa", true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newSession(t, srv.URL, &fakeSigner{}).DownloadTicket(ctx, "h")
	assert.True(t, common.IsCancelled(err))
}

func TestURLs(t *testing.T) {
	s := newSession(t, "http://auth:8080", &fakeSigner{})
	assert.Equal(t, "http://auth:8080/user/"+self.Short()+"/object/k1/download-ticket/", s.DownloadURL("k1"))
	assert.Equal(t,
		"http://auth:8080/user/"+self.Short()+"/object/k1/upload-ticket/"+hex.EncodeToString([]byte("image/png"))+"/42/0102/",
		s.UploadURL("k1", "image/png", 42, []byte{1, 2}))
}

func TestParseAuthorization(t *testing.T) {
	d, sig, err := ParseAuthorization("Corral email:ab:3 0a0b")
	require.NoError(t, err)
	assert.Equal(t, "email:ab:3", d)
	assert.Equal(t, []byte{0x0a, 0x0b}, sig)

	for _, h := range []string{"", "Corral a", "Basic a b", "Corral a zz"} {
		_, _, err := ParseAuthorization(h)
		assert.Error(t, err, h)
	}
}
