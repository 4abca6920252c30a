package relaystore

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/dmitrijs2005/corral/internal/client/ticket"
)

// Signer issues S3 signature-v2 tickets: "AccessKey:base64(HMAC-SHA1(secret,
// StringToSign))" with StringToSign
// "METHOD\nContent-MD5\nContent-Type\nDate\n/bucket/key".
type Signer struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Now       func() time.Time
}

func NewSigner(accessKey, secretKey, bucket string) *Signer {
	return &Signer{AccessKey: accessKey, SecretKey: secretKey, Bucket: bucket, Now: time.Now}
}

func (s *Signer) date() string {
	return s.Now().UTC().Format(http.TimeFormat)
}

// Sign returns the Authorization value without the "AWS " prefix.
func (s *Signer) Sign(method, contentMD5, contentType, date, key string) string {
	toSign := method + "\n" + contentMD5 + "\n" + contentType + "\n" + date + "\n/" + s.Bucket + "/" + key
	mac := hmac.New(sha1.New, []byte(s.SecretKey))
	mac.Write([]byte(toSign))
	return s.AccessKey + ":" + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Upload authorizes one PUT of key with exactly this content type and MD5.
func (s *Signer) Upload(key, contentType string, md5sum []byte) ticket.Ticket {
	date := s.date()
	return ticket.Ticket{
		Value: s.Sign(http.MethodPut, base64.StdEncoding.EncodeToString(md5sum), contentType, date, key),
		Date:  date,
	}
}

// Download authorizes GETs of key.
func (s *Signer) Download(key string) ticket.Ticket {
	date := s.date()
	return ticket.Ticket{Value: s.Sign(http.MethodGet, "", "", date, key), Date: date}
}
