// Package identity implements the identity-based signatures used by the
// ticket protocol.
//
// Principals are never sent in the clear: a descriptor carries an identity
// type and the SHA-256 of the normalized principal. Signing keys are scoped
// to a descriptor and a weekly epoch whose phase is derived from the hash,
// so keys of different principals do not all roll over at the same instant.
//
// The scheme is Cha–Cheon over BN254: the key issuer holds a master scalar
// s and publishes Ppub = s·G2. The private key for an identity string ID is
// D = s·H1(ID). A signature on m is (U, V) with U = r·H1(ID),
// h = H2(m, U) and V = (r+h)·D; it verifies when
// e(V, G2) = e(U + h·H1(ID), Ppub).
package identity
