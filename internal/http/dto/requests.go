package dto

import "github.com/handle-registry/backend/internal/ton"

type ProofPayloadRequest struct{}

type WalletAuthRequest struct {
	Address   string    `json:"address"` // raw: "0:abc..."
	Network   string    `json:"network"` // "mainnet" / "testnet"
	PublicKey string    `json:"public_key"`
	Proof     ton.Proof `json:"proof"`
}

type RegisterRequest struct {
	PaymentRef string `json:"payment_ref"` // memo of the treasury deposit
	Username   string `json:"username"`
	Bio        string `json:"bio,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}

type UpdateProfileRequest struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
	Email    string `json:"email"`
	Twitter  string `json:"twitter"`
	Github   string `json:"github"`
	Website  string `json:"website"`
}

type SubmitVerificationRequest struct {
	PaymentRef string `json:"payment_ref"`
	Payload    string `json:"payload"` // proof material, e.g. a post URL
	Type       string `json:"type,omitempty"`
}

type ProcessVerificationRequest struct {
	Approve bool `json:"approve"`
}

type BanRequest struct {
	Reason string `json:"reason,omitempty"`
}

type ReputationRequest struct {
	Delta int64 `json:"delta"`
}

type StatsUpdateRequest struct {
	Kind      string `json:"kind"`
	Increment uint64 `json:"increment"`
}

type SetFeeRequest struct {
	Kind       string `json:"kind"` // registration_fee / verification_fee
	AmountNano uint64 `json:"amount_nano"`
}
