package dto

type AuthResponse struct {
	Token   string `json:"token"`
	Address string `json:"address"`
}

type ProofPayloadResponse struct {
	Payload string `json:"payload"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type ResolveResponse struct {
	Username string `json:"username"`
	Address  string `json:"address"`
}

type PermissionResponse struct {
	Address    string `json:"address"`
	Permission string `json:"permission"`
	Granted    bool   `json:"granted"`
}

type ReputationResponse struct {
	Address    string `json:"address"`
	Reputation uint64 `json:"reputation"`
}

type FeesResponse struct {
	RegistrationFeeNano uint64 `json:"registration_fee_nano"`
	VerificationFeeNano uint64 `json:"verification_fee_nano"`
}

// DepositInfoResponse tells a client where and how to pay a fee before
// calling a fee-gated endpoint.
type DepositInfoResponse struct {
	WalletAddress string `json:"wallet_address"`
	Memo          string `json:"memo"`
	MinAmountNano uint64 `json:"min_amount_nano"`
}

type TreasuryResponse struct {
	BalanceNano uint64 `json:"balance_nano"`
}

type WithdrawResponse struct {
	AmountNano uint64 `json:"amount_nano"`
	To         string `json:"to"`
}
