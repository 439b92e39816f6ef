// Package domain holds paywall contracts and wire shapes
package domain

import "time"

// ProtocolVersion is advertised in every challenge
const ProtocolVersion = 1

// MaxAmount bounds client supplied amounts in base units
const MaxAmount int64 = 1_000_000_000_000_000

// gate level error reasons
const (
	ReasonPaymentRequired         = "PaymentRequired"
	ReasonInvalidProofEncoding    = "InvalidProofEncoding"
	ReasonInvalidRecipientAddress = "InvalidRecipientAddress"
	ReasonInvalidAmount           = "InvalidAmount"
)

// Challenge is served when proof is absent or rejected
type Challenge struct {
	ProtocolVersion      int             `json:"protocolVersion"`
	Price                uint64          `json:"price"`
	Currency             string          `json:"currency"`
	Network              string          `json:"network"`
	Recipient            string          `json:"recipient"`
	VerificationEndpoint string          `json:"verificationEndpoint"`
	Memo                 string          `json:"memo"`
	Error                *ChallengeError `json:"error,omitempty"`
}

// ChallengeError explains why the presented proof was refused
type ChallengeError struct {
	Reason  string           `json:"reason"`
	Message string           `json:"message"`
	Details map[string]int64 `json:"details,omitempty"`
}

// VerifyRequest is the verification submission body
type VerifyRequest struct {
	Reference string `json:"reference" validate:"required,min=32,max=128"`
	Recipient string `json:"recipient" validate:"required,account_address"`
	Amount    int64  `json:"amount" validate:"gt=0,max=1000000000000000"`
}

// Verification is the fee breakdown of a confirmed payment
type Verification struct {
	Amount      uint64 `json:"amount"`
	AgentShare  uint64 `json:"agentShare"`
	PlatformFee uint64 `json:"platformFee"`
	Sender      string `json:"sender"`
}

// VerifyResponse is returned on a successful verification
type VerifyResponse struct {
	Success      bool         `json:"success"`
	AccessToken  string       `json:"accessToken"`
	Verification Verification `json:"verification"`
}

// Grant is one granted access, appended to the analytics log
type Grant struct {
	Reference   string
	Amount      uint64
	AgentShare  uint64
	PlatformFee uint64
	FeeBps      uint16
	Sender      string
	Recipient   string
	Route       string
	Via         string
	GrantedAt   time.Time
}

// grant channels
const (
	ViaProof  = "proof"
	ViaVerify = "verify"
	ViaToken  = "token"
)
