package responses

import "github.com/lidofinance/frostsig/frost"

type NonceResponse struct {
	ParticipantID frost.Identifier          `json:"participant_id"`
	Commitments   *frost.SigningCommitments `json:"commitments"`
}

type SignResponse struct {
	Share *frost.SignatureShare `json:"share"`
}

type IdentityResponse struct {
	ParticipantID  frost.Identifier `json:"participant_id"`
	VerifyingShare string           `json:"verifying_share"`
	VerifyingKey   string           `json:"verifying_key"`
	PendingNonces  int              `json:"pending_nonces"`
}
