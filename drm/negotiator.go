package drm

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"musicdl/enums"
	"musicdl/models"
	"musicdl/util"

	"go.uber.org/zap"
)

type negotiationState int

const (
	stateIdle negotiationState = iota
	stateOpened
	stateChallengeBuilt
	stateResponseReceived
	stateKeyExtracted
	stateClosed
)

func (s negotiationState) String() string {
	switch s {
	case stateOpened:
		return "opened"
	case stateChallengeBuilt:
		return "challenge-built"
	case stateResponseReceived:
		return "response-received"
	case stateKeyExtracted:
		return "key-extracted"
	case stateClosed:
		return "closed"
	default:
		return "idle"
	}
}

// Negotiator obtains a content key for a manifest through one
// challenge/response exchange with the license endpoint.
type Negotiator struct {
	client     models.HTTPClient
	factory    KeySystemFactory
	credential []byte
	licenseURL string
	siteOrigin string
}

func NewNegotiator(
	client models.HTTPClient,
	factory KeySystemFactory,
	credential []byte,
	licenseURL string,
	siteOrigin string,
) *Negotiator {
	return &Negotiator{
		client:     client,
		factory:    factory,
		credential: credential,
		licenseURL: licenseURL,
		siteOrigin: siteOrigin,
	}
}

// Negotiate runs open → challenge → license request → parse → close.
// the session is closed exactly once whichever step fails.
func (n *Negotiator) Negotiate(
	ctx context.Context,
	manifest *models.StreamManifest,
) (key *models.ContentKey, err error) {
	if len(n.credential) == 0 {
		return nil, util.ErrMissingCredential
	}
	if !manifest.HasProtectionHeader() {
		return nil, util.ErrMissingProtectionHeader
	}
	if n.factory == nil {
		return nil, util.ErrNoKeySystem
	}
	keySystem, err := n.factory(n.credential)
	if err != nil {
		return nil, fmt.Errorf("failed to load key system: %w", err)
	}

	session, err := keySystem.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open license session: %w", err)
	}
	state := stateOpened
	defer func() {
		closeErr := keySystem.Close(session)
		if closeErr != nil {
			if err == nil {
				key = nil
				err = fmt.Errorf("failed to close license session: %w", closeErr)
			} else {
				zap.S().Warnf("failed to close license session: %v", closeErr)
			}
		}
		if err != nil {
			err = fmt.Errorf("license negotiation failed after %s: %w", state, err)
		}
		state = stateClosed
		zap.S().Debugf("license session %s", state)
	}()

	challenge, err := keySystem.Challenge(session, manifest.ProtectionHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to build challenge: %w", err)
	}
	state = stateChallengeBuilt
	zap.S().Debugf("license challenge built (%d bytes)", len(challenge))

	license, err := n.requestLicense(ctx, challenge)
	if err != nil {
		return nil, err
	}
	state = stateResponseReceived

	keys, err := keySystem.Parse(session, license)
	if err != nil {
		return nil, fmt.Errorf("failed to parse license: %w", err)
	}
	key, err = SelectContentKey(keys, manifest.KeyID)
	if err != nil {
		return nil, err
	}
	state = stateKeyExtracted
	zap.S().Debugf("content key selected: %s", key)
	return key, nil
}

func (n *Negotiator) requestLicense(ctx context.Context, challenge []byte) ([]byte, error) {
	headers := map[string]string{
		"Content-Type": "application/octet-stream",
	}
	if n.siteOrigin != "" {
		headers["Origin"] = n.siteOrigin
	}
	resp, err := util.Request(
		ctx, n.client,
		http.MethodPost, n.licenseURL,
		bytes.NewReader(challenge),
		headers,
	)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !util.IsSuccessStatus(resp.StatusCode) {
		return nil, &util.TransportError{URL: n.licenseURL, StatusCode: resp.StatusCode}
	}
	license, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &util.TransportError{URL: n.licenseURL, Err: err}
	}
	return license, nil
}

// SelectContentKey prefers the content key whose id equals keyIDHex
// and otherwise takes the first content key in response order.
func SelectContentKey(keys []Key, keyIDHex string) (*models.ContentKey, error) {
	var first *Key
	for i := range keys {
		key := &keys[i]
		if key.Type != enums.KeyTypeContent {
			continue
		}
		if hex.EncodeToString(key.ID) == keyIDHex {
			return toContentKey(key), nil
		}
		if first == nil {
			first = key
		}
	}
	if first == nil {
		return nil, util.ErrNoContentKey
	}
	zap.S().Debugf("no content key matches %s, using first content key", keyIDHex)
	return toContentKey(first), nil
}

func toContentKey(key *Key) *models.ContentKey {
	return &models.ContentKey{
		KeyID: bytes.Clone(key.ID),
		Key:   bytes.Clone(key.Key),
	}
}
