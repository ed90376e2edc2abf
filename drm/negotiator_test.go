package drm

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"musicdl/enums"
	"musicdl/models"
	"musicdl/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyIDA = mustHex("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	keyIDB = mustHex("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	keyA   = mustHex("00112233445566778899aabbccddeeff")
	keyB   = mustHex("ffeeddccbbaa99887766554433221100")
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

type fakeKeySystem struct {
	openErr      error
	challengeErr error
	parseErr     error
	closeErr     error
	keys         []Key

	opened    int
	closed    int
	challenge []byte
	license   []byte
}

func (f *fakeKeySystem) Open() (SessionID, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return SessionID("session-1"), nil
}

func (f *fakeKeySystem) Challenge(session SessionID, protectionHeader []byte) ([]byte, error) {
	if f.challengeErr != nil {
		return nil, f.challengeErr
	}
	f.challenge = append([]byte("challenge:"), protectionHeader...)
	return f.challenge, nil
}

func (f *fakeKeySystem) Parse(session SessionID, license []byte) ([]Key, error) {
	f.license = license
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.keys, nil
}

func (f *fakeKeySystem) Close(session SessionID) error {
	f.closed++
	return f.closeErr
}

func (f *fakeKeySystem) factory() KeySystemFactory {
	return func(credential []byte) (KeySystem, error) {
		return f, nil
	}
}

func testManifest() *models.StreamManifest {
	return &models.StreamManifest{
		KeyID:            hex.EncodeToString(keyIDB),
		ProtectionHeader: []byte("pssh"),
		InitSegmentURI:   "https://stream.example.com/init.mp4",
		MediaSegmentURIs: []string{"https://stream.example.com/segment_0.m4s"},
	}
}

func licenseServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte("license-bytes"))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNegotiateSelectsMatchingKey(t *testing.T) {
	var gotBody []byte
	var gotContentType, gotOrigin, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotOrigin = r.Header.Get("Origin")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte("license-bytes"))
	}))
	defer server.Close()

	ks := &fakeKeySystem{keys: []Key{
		{ID: keyIDA, Key: mustHex("0102030405060708090a0b0c0d0e0f10"), Type: enums.KeyTypeSigning},
		{ID: keyIDA, Key: keyA, Type: enums.KeyTypeContent},
		{ID: keyIDB, Key: keyB, Type: enums.KeyTypeContent},
	}}
	negotiator := NewNegotiator(server.Client(), ks.factory(), []byte("device"), server.URL, "https://www.example.com")

	key, err := negotiator.Negotiate(context.Background(), testManifest())
	require.NoError(t, err)

	assert.Equal(t, keyB, key.Key)
	assert.Equal(t, "ffeeddccbbaa99887766554433221100", key.Hex())
	assert.Equal(t, 1, ks.opened)
	assert.Equal(t, 1, ks.closed)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/octet-stream", gotContentType)
	assert.Equal(t, "https://www.example.com", gotOrigin)
	assert.Equal(t, ks.challenge, gotBody)
	assert.Equal(t, []byte("license-bytes"), ks.license)
}

func TestNegotiateClosesSessionOnceOnFailure(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name   string
		ks     *fakeKeySystem
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "challenge fails",
			ks:     &fakeKeySystem{challengeErr: errBoom},
			status: http.StatusOK,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errBoom)
			},
		},
		{
			name:   "license endpoint rejects",
			ks:     &fakeKeySystem{},
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				var transportErr *util.TransportError
				require.ErrorAs(t, err, &transportErr)
				assert.Equal(t, http.StatusForbidden, transportErr.StatusCode)
			},
		},
		{
			name:   "license parse fails",
			ks:     &fakeKeySystem{parseErr: errBoom},
			status: http.StatusOK,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errBoom)
			},
		},
		{
			name:   "license has no content key",
			ks:     &fakeKeySystem{keys: []Key{{ID: keyIDA, Key: keyA, Type: enums.KeyTypeSigning}}},
			status: http.StatusOK,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, util.ErrNoContentKey)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := licenseServer(t, tt.status)
			negotiator := NewNegotiator(server.Client(), tt.ks.factory(), []byte("device"), server.URL, "")

			key, err := negotiator.Negotiate(context.Background(), testManifest())
			assert.Nil(t, key)
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, 1, tt.ks.closed)
		})
	}
}

func TestNegotiateCloseFailureOnSuccessPath(t *testing.T) {
	server := licenseServer(t, http.StatusOK)
	ks := &fakeKeySystem{
		keys:     []Key{{ID: keyIDB, Key: keyB, Type: enums.KeyTypeContent}},
		closeErr: errors.New("close failed"),
	}
	negotiator := NewNegotiator(server.Client(), ks.factory(), []byte("device"), server.URL, "")

	key, err := negotiator.Negotiate(context.Background(), testManifest())
	assert.Nil(t, key)
	assert.ErrorContains(t, err, "close failed")
	assert.Equal(t, 1, ks.closed)
}

func TestNegotiateOpenFailureLeavesNothingToClose(t *testing.T) {
	server := licenseServer(t, http.StatusOK)
	ks := &fakeKeySystem{openErr: errors.New("no session")}
	negotiator := NewNegotiator(server.Client(), ks.factory(), []byte("device"), server.URL, "")

	_, err := negotiator.Negotiate(context.Background(), testManifest())
	assert.ErrorContains(t, err, "no session")
	assert.Equal(t, 0, ks.closed)
}

func TestNegotiatePreconditions(t *testing.T) {
	server := licenseServer(t, http.StatusOK)
	ks := &fakeKeySystem{}

	t.Run("missing credential", func(t *testing.T) {
		negotiator := NewNegotiator(server.Client(), ks.factory(), nil, server.URL, "")
		_, err := negotiator.Negotiate(context.Background(), testManifest())
		assert.ErrorIs(t, err, util.ErrMissingCredential)
	})

	t.Run("missing protection header", func(t *testing.T) {
		manifest := testManifest()
		manifest.ProtectionHeader = nil
		negotiator := NewNegotiator(server.Client(), ks.factory(), []byte("device"), server.URL, "")
		_, err := negotiator.Negotiate(context.Background(), manifest)
		assert.ErrorIs(t, err, util.ErrMissingProtectionHeader)
	})

	t.Run("no key system", func(t *testing.T) {
		negotiator := NewNegotiator(server.Client(), nil, []byte("device"), server.URL, "")
		_, err := negotiator.Negotiate(context.Background(), testManifest())
		assert.ErrorIs(t, err, util.ErrNoKeySystem)
	})

	assert.Zero(t, ks.opened)
	assert.Zero(t, ks.closed)
}

func TestSelectContentKey(t *testing.T) {
	signing := Key{ID: keyIDB, Key: keyA, Type: enums.KeyTypeSigning}
	contentA := Key{ID: keyIDA, Key: keyA, Type: enums.KeyTypeContent}
	contentB := Key{ID: keyIDB, Key: keyB, Type: enums.KeyTypeContent}

	t.Run("exact match wins over order", func(t *testing.T) {
		key, err := SelectContentKey([]Key{contentA, contentB}, hex.EncodeToString(keyIDB))
		require.NoError(t, err)
		assert.Equal(t, keyB, key.Key)
		assert.Equal(t, keyIDB, key.KeyID)
	})

	t.Run("falls back to first content key", func(t *testing.T) {
		key, err := SelectContentKey([]Key{signing, contentA, contentB}, "cccccccccccccccccccccccccccccccc")
		require.NoError(t, err)
		assert.Equal(t, keyA, key.Key)
	})

	t.Run("signing keys are never selected", func(t *testing.T) {
		key, err := SelectContentKey([]Key{signing, contentA}, hex.EncodeToString(keyIDB))
		require.NoError(t, err)
		assert.Equal(t, keyA, key.Key)
	})

	t.Run("no content key", func(t *testing.T) {
		_, err := SelectContentKey([]Key{signing}, hex.EncodeToString(keyIDB))
		assert.ErrorIs(t, err, util.ErrNoContentKey)

		_, err = SelectContentKey(nil, "")
		assert.ErrorIs(t, err, util.ErrNoContentKey)
	})

	t.Run("selected key is a copy", func(t *testing.T) {
		keys := []Key{{ID: bytesCopy(keyIDA), Key: bytesCopy(keyA), Type: enums.KeyTypeContent}}
		key, err := SelectContentKey(keys, "")
		require.NoError(t, err)
		keys[0].Key[0] = 0xff
		assert.Equal(t, keyA, key.Key)
	})
}

func bytesCopy(b []byte) []byte {
	return append([]byte(nil), b...)
}
