package coordinator

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/signer"
	"github.com/lidofinance/frostsig/signer/api/http_api/responses"
)

// LocalClient serves the SignerClient calls from in-process participants,
// keyed by a pseudo endpoint. It lets one machine holding several shares run
// the same protocol the networked signers do.
type LocalClient struct {
	participants map[string]signer.Service
}

func NewLocalClient(participants map[string]signer.Service) *LocalClient {
	return &LocalClient{participants: participants}
}

// LocalEndpoint names the pseudo endpoint of a participant.
func LocalEndpoint(id frost.Identifier) string {
	return fmt.Sprintf("local://%d", id)
}

func (c *LocalClient) participant(endpoint string) (signer.Service, error) {
	p, ok := c.participants[endpoint]
	if !ok {
		return nil, &SignerError{Endpoint: endpoint, Message: "no such local participant"}
	}
	return p, nil
}

func (c *LocalClient) RequestCommitment(ctx context.Context, endpoint string, message []byte) (*responses.NonceResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := c.participant(endpoint)
	if err != nil {
		return nil, err
	}
	commitment, err := p.RequestCommitment(message)
	if err != nil {
		return nil, err
	}
	return &responses.NonceResponse{ParticipantID: commitment.ParticipantID, Commitments: commitment.Commitments}, nil
}

func (c *LocalClient) RequestSignatureShare(ctx context.Context, endpoint string, pkg *frost.SigningPackage) (*frost.SignatureShare, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := c.participant(endpoint)
	if err != nil {
		return nil, err
	}
	return p.RequestSignatureShare(pkg)
}

func (c *LocalClient) Identity(ctx context.Context, endpoint string) (*responses.IdentityResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := c.participant(endpoint)
	if err != nil {
		return nil, err
	}
	identity := p.Identity()
	return &responses.IdentityResponse{
		ParticipantID:  identity.ParticipantID,
		VerifyingShare: hex.EncodeToString(identity.VerifyingShare),
		VerifyingKey:   hex.EncodeToString(identity.VerifyingKey),
		PendingNonces:  p.PendingNonces(),
	}, nil
}
