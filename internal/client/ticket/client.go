// Package ticket is the device side of the ticket protocol: it obtains relay
// capability tickets from the authority through a nonce challenge signed
// with the device's identity key, and posts access-control lists.
package ticket

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/identity"
	"github.com/dmitrijs2005/corral/internal/logging"
)

// Header names and the authentication scheme shared with the authority.
const (
	ChallengeHeader = "WWW-Authenticate"
	Scheme          = "Corral"
)

// Operation is what a ticket authorizes.
type Operation string

const (
	OpUpload   Operation = "upload"
	OpDownload Operation = "download"
)

// Ticket is a relay capability: Value goes into the Authorization header and
// Date must be sent verbatim as the Date header.
type Ticket struct {
	Value string `json:"ticket"`
	Date  string `json:"date"`
}

// NonceSigner answers a challenge; identity.Signer implements it.
type NonceSigner interface {
	SignNonce(ctx context.Context, nonce []byte) (descriptor string, signatureHex string, err error)
}

// Session talks to the authority on behalf of one identity. It keeps the
// session cookie handed out with a ticket so that a follow-up call in the
// same flow (posting the ACL after an upload) is recognized. Sessions are
// not shared between attempts.
type Session struct {
	base   *url.URL
	self   identity.Descriptor
	signer NonceSigner
	http   *http.Client
	logger logging.Logger
}

// Options configure NewSession.
type Options struct {
	BaseURL string
	Self    identity.Descriptor
	Signer  NonceSigner
	Timeout time.Duration
	Logger  logging.Logger

	// Transport overrides the HTTP transport; nil uses the default.
	Transport http.RoundTripper
}

// NewSession starts a fresh session with its own cookie jar.
func NewSession(o Options) (*Session, error) {
	base, err := url.Parse(strings.TrimRight(o.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("authority url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	logger := o.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Session{
		base:   base,
		self:   o.Self,
		signer: o.Signer,
		http:   &http.Client{Jar: jar, Timeout: o.Timeout, Transport: o.Transport},
		logger: logger.With("module", "ticket"),
	}, nil
}

func (s *Session) objectURL(objectKey string, tail ...string) string {
	parts := append([]string{"user", url.PathEscape(s.self.Short()), "object", url.PathEscape(objectKey)}, tail...)
	return s.base.String() + "/" + strings.Join(parts, "/") + "/"
}

// UploadURL is the path of an upload-ticket request.
func (s *Session) UploadURL(objectKey, mime string, length int64, md5sum []byte) string {
	return s.objectURL(objectKey, string(OpUpload)+"-ticket",
		hex.EncodeToString([]byte(mime)), strconv.FormatInt(length, 10), hex.EncodeToString(md5sum))
}

// DownloadURL is the path of a download-ticket request.
func (s *Session) DownloadURL(objectKey string) string {
	return s.objectURL(objectKey, string(OpDownload)+"-ticket")
}

// UploadTicket asks for permission to PUT objectKey with the given headers.
func (s *Session) UploadTicket(ctx context.Context, objectKey, mime string, length int64, md5sum []byte) (Ticket, error) {
	return s.fetchTicket(ctx, s.UploadURL(objectKey, mime, length, md5sum))
}

// DownloadTicket asks for permission to GET objectKey.
func (s *Session) DownloadTicket(ctx context.Context, objectKey string) (Ticket, error) {
	return s.fetchTicket(ctx, s.DownloadURL(objectKey))
}

func (s *Session) fetchTicket(ctx context.Context, u string) (Ticket, error) {
	resp, err := s.roundTrip(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	if err != nil {
		return Ticket{}, err
	}
	defer resp.Body.Close()

	var t Ticket
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&t); err != nil {
		return Ticket{}, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	if t.Value == "" || t.Date == "" {
		return Ticket{}, fmt.Errorf("%w: empty ticket", common.ErrMalformedResponse)
	}
	return t, nil
}

// UpdateACL posts the recipients allowed to download objectKey. It relies on
// the session cookie of a preceding upload ticket and answers a challenge
// if the authority asks for one.
func (s *Session) UpdateACL(ctx context.Context, objectKey string, recipients []identity.Descriptor) error {
	u := s.objectURL(objectKey, "update-acl")
	body := url.Values{"identities": {identity.JoinDescriptors(recipients)}}.Encode()

	resp, err := s.roundTrip(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// roundTrip sends the request once, and if the authority answers with a
// challenge, signs it and sends the request one more time. No further
// retries happen.
func (s *Session) roundTrip(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	req, err := build()
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}

	nonce, err := challengeOf(resp)
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	descriptor, sig, err := s.signer.SignNonce(ctx, []byte(nonce))
	if err != nil {
		return nil, fmt.Errorf("sign challenge: %w", err)
	}

	req, err = build()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", Scheme+" "+descriptor+" "+sig)
	resp, err = s.do(req)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusForbidden, http.StatusUnauthorized:
		resp.Body.Close()
		s.logger.Warn(ctx, "challenge answer rejected", "url", req.URL.Path)
		return nil, fmt.Errorf("%w: challenge answer rejected", common.ErrTicketDenied)
	default:
		defer resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", common.ErrUnexpectedStatus, resp.Status)
	}
}

func (s *Session) do(req *http.Request) (*http.Response, error) {
	resp, err := s.http.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, fmt.Errorf("ticket: %w", common.ErrCancelled)
		}
		return nil, fmt.Errorf("ticket request: %w", err)
	}
	return resp, nil
}

var noncePattern = regexp.MustCompile(`nonce="([0-9a-fA-F]+)"`)

// challengeOf extracts the nonce from a 403. A 403 without a challenge means
// the request was refused outright.
func challengeOf(resp *http.Response) (string, error) {
	if resp.StatusCode != http.StatusForbidden {
		return "", fmt.Errorf("%w: %s", common.ErrUnexpectedStatus, resp.Status)
	}
	h := resp.Header.Get(ChallengeHeader)
	if h == "" {
		return "", common.ErrTicketDenied
	}
	if !strings.HasPrefix(h, Scheme+" ") {
		return "", fmt.Errorf("%w: scheme %q", common.ErrChallengeMissing, h)
	}
	m := noncePattern.FindStringSubmatch(h)
	if m == nil {
		return "", fmt.Errorf("%w: %q", common.ErrChallengeMissing, h)
	}
	return m[1], nil
}

// ChallengeValue renders the header the authority sends with a nonce.
func ChallengeValue(nonce string) string {
	return Scheme + ` nonce="` + nonce + `"`
}

// ParseAuthorization splits "Corral <descriptor> <sighex>".
func ParseAuthorization(h string) (descriptor string, sig []byte, err error) {
	fields := strings.Fields(h)
	if len(fields) != 3 || fields[0] != Scheme {
		return "", nil, errors.New("malformed authorization")
	}
	sig, err = hex.DecodeString(fields[2])
	if err != nil {
		return "", nil, fmt.Errorf("malformed signature: %w", err)
	}
	return fields[1], sig, nil
}
