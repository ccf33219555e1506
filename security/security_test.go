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
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/curve25519"
)

func unhex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestCMAC(t *testing.T) {
	t.Parallel()

	const key = "2b7e151628aed2a6abf7158809cf4f3c"
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{name: "empty", msg: "", want: "bb1d6929e95937287fa37d129b756746"},
		{name: "one block", msg: "6bc1bee22e409f96e93d7e117393172a", want: "070a16b46b4d4144f79bdd9dd04a287c"},
		{
			name: "partial block",
			msg:  "6bc1bee22e409f96e93d7e117393172aae2d8a571e03ac9c9eb76fac45af8e5130c81c46a35ce411",
			want: "dfa66747de9ae63030ca32611497c827",
		},
		{
			name: "four blocks",
			msg: "6bc1bee22e409f96e93d7e117393172aae2d8a571e03ac9c9eb76fac45af8e51" +
				"30c81c46a35ce411e5fbc1191a0a52eff69f2445df4f9b17ad2b417be66c3710",
			want: "51f0bebf7e3b9d92fc49741779363cfe",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := CMAC(unhex(t, key), unhex(t, tt.msg))
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(got))
		})
	}

	_, err := CMAC([]byte{1, 2, 3}, nil)
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestCCM(t *testing.T) {
	t.Parallel()

	key := unhex(t, "c0c1c2c3c4c5c6c7c8c9cacbcccdcecf")
	nonce := unhex(t, "00000003020100a0a1a2a3a4a5")
	aad := unhex(t, "0001020304050607")
	plain := unhex(t, "08090a0b0c0d0e0f101112131415161718191a1b1c1d1e")

	sealed, err := Encrypt(key, nonce, plain, aad)
	require.NoError(t, err)
	assert.Equal(t,
		"588c979a61c663d2f066d0c2c0f989806d5f6b61dac38417e8d12cfdf926e0",
		hex.EncodeToString(sealed))

	opened, err := Decrypt(key, nonce, sealed, aad)
	require.NoError(t, err)
	assert.Equal(t, plain, opened)

	tampered := bytes.Clone(sealed)
	tampered[3] ^= 0x01
	_, err = Decrypt(key, nonce, tampered, aad)
	require.ErrorIs(t, err, ErrAuthentication)

	_, err = Decrypt(key, nonce, sealed, aad[1:])
	require.ErrorIs(t, err, ErrAuthentication)

	_, err = Decrypt(key, nonce, sealed[:4], aad)
	require.ErrorIs(t, err, ErrAuthentication)

	_, err = Encrypt(key, nonce[:12], plain, aad)
	require.ErrorIs(t, err, ErrInvalidNonce)

	_, err = Decrypt(key, nonce[:12], sealed, aad)
	require.ErrorIs(t, err, ErrInvalidNonce)

	_, err = Encrypt(key[:8], nonce, plain, aad)
	require.ErrorIs(t, err, ErrInvalidKey)

	_, err = Encrypt(key, nonce, make([]byte, 1<<16), aad)
	require.ErrorIs(t, err, ErrMessageTooLong)
}

func TestCCMWithoutAdditionalData(t *testing.T) {
	t.Parallel()

	key := bytes.Repeat([]byte{0x42}, KeySize)
	nonce := bytes.Repeat([]byte{0x01}, NonceSize)
	for _, n := range []int{0, 1, 16, 17, 100} {
		plain := bytes.Repeat([]byte{0xa5}, n)
		sealed, err := Encrypt(key, nonce, plain, nil)
		require.NoError(t, err)
		require.Len(t, sealed, n+TagSize)
		opened, err := Decrypt(key, nonce, sealed, nil)
		require.NoError(t, err)
		assert.Equal(t, plain, opened, "length %d", n)
	}
}

func TestCTRDRBG(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		entropy         string
		personalization string
		additional      [2]string
		want            string
	}{
		{
			name:    "plain",
			entropy: "48e8271c4b554d9da3f88c820d078f6a3f66acf007cc98840e03e26c62527f91",
			want: "b9a956a6e3d10310e57e287c284c6867ed9e8084a62b25c49218fa3aede7c6ea" +
				"ec1622696640f6b4ad5379c6fb8f9b5d7202ad89105d03173487e29da9739390",
		},
		{
			name:            "personalization",
			entropy:         "cee23de86a69c7ef57f6e1e12bd16e35e51624226fa19597bf93ec476a44b0f2",
			personalization: "a2ef16f226ea324f23abd59d5e3c660561c25e73638fe21c87566e86a9e04c3e",
			want: "2a76d71b329f449c98dc08fff1d205a2fbd9e4ade120c7611c225c984eac8531" +
				"288dd3049f3dc3bb3671501ab8fbf9ad49c86cce307653bd8caf29cb0cf07764",
		},
		{
			name:            "additional input",
			entropy:         "c129c2732003bbf1d1dec244a933cd04cb47199bbce98fe080a1be880afb2155",
			personalization: "64e2b9ac5c20642e3e3ee454b7463861a7e93e0dd1bbf8c4a0c28a6cb3d811ba",
			additional: [2]string{
				"f94f0975760d52f47bd490d1623a9907e4df701f601cf2d573aba803a29d2b51",
				"6f99720b186e2028a5fcc586b3ea518458e437ff449c7c5a318e6d13f75b5db7",
			},
			want: "7b8b3378b9031ab3101cec8af5b8ba5a9ca2a9af41432cd5f2e5e19716140bb2" +
				"19ed7f4ba88fc37b2d7e146037d2cac1128ffe14131c8691e581067a29cacf80",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var pers []byte
			if tt.personalization != "" {
				pers = unhex(t, tt.personalization)
			}
			d, err := NewCTRDRBG(unhex(t, tt.entropy), pers)
			require.NoError(t, err)

			var out []byte
			for _, add := range tt.additional {
				var in []byte
				if add != "" {
					in = unhex(t, add)
				}
				out, err = d.Generate(64, in)
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, hex.EncodeToString(out))
		})
	}

	_, err := NewCTRDRBG(make([]byte, 16), nil)
	require.ErrorIs(t, err, ErrInvalidEntropy)
}

func TestSPAN(t *testing.T) {
	t.Parallel()

	sender := bytes.Repeat([]byte{0x01}, EntropySize)
	receiver := bytes.Repeat([]byte{0x02}, EntropySize)
	pers := bytes.Repeat([]byte{0x03}, PersonalizationSize)

	a, err := NewSPAN(sender, receiver, pers)
	require.NoError(t, err)
	b, err := NewSPAN(sender, receiver, pers)
	require.NoError(t, err)

	seen := map[string]bool{}
	for range 4 {
		na, err := a.Next()
		require.NoError(t, err)
		nb, err := b.Next()
		require.NoError(t, err)
		require.Len(t, na, NonceSize)
		assert.Equal(t, na, nb, "both sides draw the same nonces")
		assert.False(t, seen[string(na)], "nonces never repeat")
		seen[string(na)] = true
	}

	other, err := NewSPAN(receiver, sender, pers)
	require.NoError(t, err)
	fresh, err := NewSPAN(sender, receiver, pers)
	require.NoError(t, err)
	n1, _ := other.Next()
	n2, _ := fresh.Next()
	assert.NotEqual(t, n1, n2, "entropy order matters")

	_, err = NewSPAN(sender[:8], receiver, pers)
	require.ErrorIs(t, err, ErrInvalidEntropy)

	var unsynced *SPAN
	_, err = unsynced.Next()
	require.ErrorIs(t, err, ErrSpanNotSynchronized)
}

func TestHandshake_AgreesWithPeer(t *testing.T) {
	t.Parallel()

	peerPrivate := bytes.Repeat([]byte{0x77}, curve25519.ScalarSize)
	peerPublic, err := curve25519.X25519(peerPrivate, curve25519.Basepoint)
	require.NoError(t, err)

	h := NewHandshake(WithRandom(bytes.NewReader(bytes.Repeat([]byte{0x5c}, 64))))
	_, err = h.Key()
	require.ErrorIs(t, err, ErrNotReady)

	key, pers, own, err := h.GenerateSharedKey(peerPublic)
	require.NoError(t, err)
	require.Len(t, key, KeySize)
	require.Len(t, pers, PersonalizationSize)
	require.Len(t, own, PublicKeySize)

	// the joining node derives the same temporary key
	shared, err := curve25519.X25519(peerPrivate, own)
	require.NoError(t, err)
	prk, err := TempExtract(shared, own, peerPublic)
	require.NoError(t, err)
	peerKey, peerPers, err := TempExpand(prk)
	require.NoError(t, err)
	assert.Equal(t, peerKey, key)
	assert.Equal(t, peerPers, pers)

	stored, err := h.Key()
	require.NoError(t, err)
	assert.Equal(t, key, stored)

	// a message sealed by the peer opens with the controller's key
	span, err := NewSPAN(bytes.Repeat([]byte{9}, EntropySize), bytes.Repeat([]byte{8}, EntropySize), peerPers)
	require.NoError(t, err)
	nonce, err := span.Next()
	require.NoError(t, err)
	aad := AdditionalData(5, 1, 0x0184dfda, 24, []byte{0x06, 0x00})
	sealed, err := Encrypt(peerKey, nonce, []byte{0x9f, 0x06, 0x00, 0x02, 0x01, 0x01}, aad)
	require.NoError(t, err)
	plain, err := Decrypt(key, nonce, sealed, aad)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x9f, 0x06, 0x00, 0x02, 0x01, 0x01}, plain)
}

func TestHandshake_Errors(t *testing.T) {
	t.Parallel()

	h := NewHandshake(WithRandom(bytes.NewReader(bytes.Repeat([]byte{0x5c}, 64))))
	_, _, _, err := h.GenerateSharedKey([]byte{1, 2})
	require.ErrorIs(t, err, ErrInvalidKey)

	// the all-zero point yields a low order shared secret
	_, _, _, err = h.GenerateSharedKey(make([]byte, PublicKeySize))
	require.ErrorIs(t, err, ErrInvalidKey)

	short := NewHandshake(WithRandom(bytes.NewReader([]byte{1, 2, 3})))
	_, err = short.ReceiverEntropy()
	require.Error(t, err)
}

func TestHandshake_SPAN(t *testing.T) {
	t.Parallel()

	peerPublic, err := curve25519.X25519(bytes.Repeat([]byte{0x21}, 32), curve25519.Basepoint)
	require.NoError(t, err)
	h := NewHandshake(WithRandom(bytes.NewReader(bytes.Repeat([]byte{0x5c}, 64))))

	_, err = h.SPAN(make([]byte, EntropySize))
	require.ErrorIs(t, err, ErrNotReady)

	_, pers, _, err := h.GenerateSharedKey(peerPublic)
	require.NoError(t, err)
	receiver, err := h.ReceiverEntropy()
	require.NoError(t, err)
	require.Len(t, receiver, EntropySize)

	sender := bytes.Repeat([]byte{0x44}, EntropySize)
	span, err := h.SPAN(sender)
	require.NoError(t, err)
	peer, err := NewSPAN(sender, receiver, pers)
	require.NoError(t, err)

	n1, err := span.Next()
	require.NoError(t, err)
	n2, err := peer.Next()
	require.NoError(t, err)
	assert.Equal(t, n2, n1)

	h.Reset()
	_, err = h.Key()
	require.ErrorIs(t, err, ErrNotReady)
}

func TestAdditionalData(t *testing.T) {
	t.Parallel()

	got := AdditionalData(0x19, 0x01, 0x0184dfda, 36, []byte{0x06, 0x01})
	assert.Equal(t, []byte{0x19, 0x01, 0x01, 0x84, 0xdf, 0xda, 0x00, 0x24, 0x06, 0x01}, got)
}
