// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package security

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"

	zwave "github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/internal/syncutil"
	"golang.org/x/crypto/curve25519"
)

// Option configures a Handshake.
type Option func(*Handshake)

// WithRandom replaces crypto/rand as the source of key pairs and entropy.
func WithRandom(r io.Reader) Option {
	return func(h *Handshake) {
		h.random = r
	}
}

// Handshake holds the controller side of one S2 bootstrapping exchange.
// It implements node.SecurityHook.
type Handshake struct {
	random          io.Reader
	key             []byte
	personalization []byte
	receiverEntropy []byte
	mu              syncutil.Mutex
}

// NewHandshake creates a handshake drawing randomness from crypto/rand.
func NewHandshake(opts ...Option) *Handshake {
	h := &Handshake{random: rand.Reader}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GenerateSharedKey creates an ephemeral X25519 key pair, agrees on a
// shared secret with the peer and derives the temporary CCM key and
// personalization string from it.
func (h *Handshake) GenerateSharedKey(peerPublic []byte) (key, personalization, ownPublic []byte, err error) {
	if len(peerPublic) != PublicKeySize {
		return nil, nil, nil, fmt.Errorf("%w: peer public key is %d bytes", ErrInvalidKey, len(peerPublic))
	}

	private := make([]byte, curve25519.ScalarSize)
	defer clearKey(private)
	if _, err := io.ReadFull(h.random, private); err != nil {
		return nil, nil, nil, fmt.Errorf("generate private key: %w", err)
	}
	ownPublic, err = curve25519.X25519(private, curve25519.Basepoint)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("derive public key: %w", err)
	}
	shared, err := curve25519.X25519(private, peerPublic)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	defer clearKey(shared)

	prk, err := TempExtract(shared, ownPublic, peerPublic)
	if err != nil {
		return nil, nil, nil, err
	}
	defer clearKey(prk)
	key, personalization, err = TempExpand(prk)
	if err != nil {
		return nil, nil, nil, err
	}

	h.mu.Lock()
	h.key = bytes.Clone(key)
	h.personalization = bytes.Clone(personalization)
	h.mu.Unlock()
	zwave.Debugf("S2 temporary key derived")
	return key, personalization, ownPublic, nil
}

// ReceiverEntropy draws the entropy input sent in a nonce report and
// remembers it for the SPAN seeded when the peer answers.
func (h *Handshake) ReceiverEntropy() ([]byte, error) {
	ei := make([]byte, EntropySize)
	if _, err := io.ReadFull(h.random, ei); err != nil {
		return nil, fmt.Errorf("generate entropy: %w", err)
	}
	h.mu.Lock()
	h.receiverEntropy = bytes.Clone(ei)
	h.mu.Unlock()
	return ei, nil
}

// SPAN seeds the nonce generator from the sender entropy of the peer's
// first encapsulated message.
func (h *Handshake) SPAN(senderEntropy []byte) (*SPAN, error) {
	h.mu.Lock()
	receiver, personalization := h.receiverEntropy, h.personalization
	h.mu.Unlock()
	if receiver == nil || personalization == nil {
		return nil, ErrNotReady
	}
	return NewSPAN(senderEntropy, receiver, personalization)
}

// Key returns the temporary CCM key, or ErrNotReady before key agreement.
func (h *Handshake) Key() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.key == nil {
		return nil, ErrNotReady
	}
	return bytes.Clone(h.key), nil
}

// Reset forgets all key material.
func (h *Handshake) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clearKey(h.key)
	clearKey(h.personalization)
	clearKey(h.receiverEntropy)
	h.key, h.personalization, h.receiverEntropy = nil, nil, nil
}
