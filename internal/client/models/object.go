// Package models defines the device-side data model: content descriptors for
// message objects and the progress events emitted while fetching them.
package models

import "time"

// CipherScheme names how an object's relay blob is encrypted.
type CipherScheme string

const (
	// SchemeRandomIV is AES-128-CBC with a random IV written in front of the
	// ciphertext.
	SchemeRandomIV CipherScheme = "cbc-random-iv"

	// SchemeZeroIV is the legacy layout: AES-128-CBC under an all-zero IV,
	// no prefix. Only kept for objects uploaded by older deployments.
	SchemeZeroIV CipherScheme = "cbc-zero-iv"
)

// Peer describes how to reach the device that authored an object. Every
// field is optional; a channel whose fields are missing is skipped.
type Peer struct {
	// LANAddr is host:port of the author's local origin server.
	LANAddr string `json:"lan_addr,omitempty"`

	// Token is the access token minted by the author for this object.
	Token string `json:"token,omitempty"`

	// LocalURI is the author's own path for the content, used by the legacy
	// content-by-hash route.
	LocalURI string `json:"local_uri,omitempty"`

	// BluetoothAddr is the author's adapter address, "AA:BB:CC:DD:EE:FF".
	BluetoothAddr string `json:"bt_addr,omitempty"`

	// BluetoothChannel is the RFCOMM channel the author listens on.
	BluetoothChannel uint8 `json:"bt_channel,omitempty"`
}

// Object is the content descriptor of a message object that carries a
// binary payload.
type Object struct {
	ID          string `json:"id"`
	AppID       string `json:"app_id"`
	ContentHash string `json:"hash"`
	MIME        string `json:"mime"`
	Length      int64  `json:"length"`

	// LocalURI is set only on the authoring device.
	LocalURI string `json:"-"`

	// RelayKey is the text-encoded symmetric key of the relay blob. It
	// travels inside the object metadata, never over the relay itself.
	RelayKey     string       `json:"relay_key,omitempty"`
	CipherScheme CipherScheme `json:"cipher_scheme,omitempty"`

	Peer Peer `json:"peer"`

	Deleted   bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Authored reports whether the object was created on this device.
func (o *Object) Authored() bool {
	return o.LocalURI != ""
}

// RelayObjectKey is the key of the object's blob in the relay store.
func (o *Object) RelayObjectKey() string {
	return o.ContentHash
}

// Scheme returns the object's cipher scheme, defaulting to SchemeRandomIV.
func (o *Object) Scheme() CipherScheme {
	if o.CipherScheme == "" {
		return SchemeRandomIV
	}
	return o.CipherScheme
}
