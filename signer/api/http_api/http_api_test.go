package http_api_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/mocks/signerMocks"
	"github.com/lidofinance/frostsig/signer"
	"github.com/lidofinance/frostsig/signer/api/http_api"
	"github.com/lidofinance/frostsig/signer/api/http_api/responses"
	"github.com/lidofinance/frostsig/signer/config"
)

type envelope struct {
	Result       json.RawMessage `json:"result"`
	ErrorMessage string          `json:"error_message"`
}

func newServer(t *testing.T, participant signer.Service) *httptest.Server {
	provider := http_api.NewRESTApiProvider(config.Default(), participant, common.NopLogger())
	srv := httptest.NewServer(provider.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url string, body interface{}) (int, *envelope) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, &env
}

func TestNonceAndSignOverHTTP(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)
	srv1 := newServer(t, signer.NewParticipant(keyPackages[1], common.NopLogger()))
	srv3 := newServer(t, signer.NewParticipant(keyPackages[3], common.NopLogger()))

	msg := "deadbeef"
	commitments := make(map[frost.Identifier]*frost.SigningCommitments)
	for _, srv := range []*httptest.Server{srv1, srv3} {
		code, env := post(t, srv.URL+"/nonce", map[string]string{"message": msg})
		req.Equal(http.StatusOK, code, env.ErrorMessage)
		var nonce responses.NonceResponse
		req.NoError(json.Unmarshal(env.Result, &nonce))
		commitments[nonce.ParticipantID] = nonce.Commitments
	}
	req.Len(commitments, 2)
	req.Contains(commitments, frost.Identifier(3))

	msgBytes, err := hex.DecodeString(msg)
	req.NoError(err)
	pkg := frost.NewSigningPackage(commitments, msgBytes)

	shares := make(map[frost.Identifier]*frost.SignatureShare)
	for id, srv := range map[frost.Identifier]*httptest.Server{1: srv1, 3: srv3} {
		code, env := post(t, srv.URL+"/sign", map[string]interface{}{"package": pkg})
		req.Equal(http.StatusOK, code, env.ErrorMessage)
		var signed responses.SignResponse
		req.NoError(json.Unmarshal(env.Result, &signed))
		shares[id] = signed.Share
	}

	sig, err := frost.Aggregate(pkg, shares, pubKeys)
	req.NoError(err)
	req.True(frost.Verify(pubKeys.VerifyingKeyBytes(), msgBytes, sig.Serialize()))

	code, env := post(t, srv1.URL+"/sign", map[string]interface{}{"package": pkg})
	req.Equal(http.StatusBadRequest, code)
	req.Contains(env.ErrorMessage, signer.ErrNonceNotFound.Error())
}

func TestNonceRejectsInvalidHex(t *testing.T) {
	req := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	srv := newServer(t, signerMocks.NewMockService(ctrl))

	code, env := post(t, srv.URL+"/nonce", map[string]string{"message": "not-hex"})
	req.Equal(http.StatusBadRequest, code)
	req.NotEmpty(env.ErrorMessage)
}

func TestSignRejectsMalformedPackage(t *testing.T) {
	req := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	srv := newServer(t, signerMocks.NewMockService(ctrl))

	code, env := post(t, srv.URL+"/sign", map[string]interface{}{"package": map[string]string{"message": "zz"}})
	req.Equal(http.StatusBadRequest, code)
	req.NotEmpty(env.ErrorMessage)

	code, _ = post(t, srv.URL+"/sign", map[string]interface{}{})
	req.Equal(http.StatusBadRequest, code)
}

func TestSignReportsPrimitiveFailureAs500(t *testing.T) {
	req := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service := signerMocks.NewMockService(ctrl)
	service.EXPECT().RequestSignatureShare(gomock.Any()).Return(nil, errors.New("failed to sign: boom"))
	srv := newServer(t, service)

	keyPackages, _, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)
	_, c1, err := frost.Commit(keyPackages[1].SigningShare, nil)
	req.NoError(err)
	_, c2, err := frost.Commit(keyPackages[2].SigningShare, nil)
	req.NoError(err)
	pkg := frost.NewSigningPackage(map[frost.Identifier]*frost.SigningCommitments{1: c1, 2: c2}, []byte("m"))

	code, env := post(t, srv.URL+"/sign", map[string]interface{}{"package": pkg})
	req.Equal(http.StatusInternalServerError, code)
	req.Contains(env.ErrorMessage, "boom")
}

func TestIdentity(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)
	srv := newServer(t, signer.NewParticipant(keyPackages[2], common.NopLogger()))

	resp, err := http.Get(srv.URL + "/identity")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	var env envelope
	req.NoError(json.NewDecoder(resp.Body).Decode(&env))
	var identity responses.IdentityResponse
	req.NoError(json.Unmarshal(env.Result, &identity))
	req.Equal(frost.Identifier(2), identity.ParticipantID)
	req.Equal(hex.EncodeToString(pubKeys.VerifyingKeyBytes()), identity.VerifyingKey)
	req.Zero(identity.PendingNonces)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	req := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	srv := newServer(t, signerMocks.NewMockService(ctrl))

	resp, err := http.Get(srv.URL + "/missing")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusNotFound, resp.StatusCode)

	var env envelope
	req.NoError(json.NewDecoder(resp.Body).Decode(&env))
	req.NotEmpty(env.ErrorMessage)
}

func TestNonceRejectsEmptyMessage(t *testing.T) {
	req := require.New(t)

	keyPackages, _, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)
	participant := signer.NewParticipant(keyPackages[1], common.NopLogger())
	srv := newServer(t, participant)

	code, env := post(t, srv.URL+"/nonce", map[string]string{"message": ""})
	req.Equal(http.StatusBadRequest, code)
	req.NotEmpty(env.ErrorMessage)
	req.Zero(participant.PendingNonces())
}
