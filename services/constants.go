package services

// Money is carried as integers in the smallest currency unit everywhere in
// the store; only API responses divide back to shillings.
const (
	UnitsPerKES = 100

	SignupFeeKES      = 100
	ReferralRewardKES = 50
	MinWithdrawKES    = 150

	SignupFeeUnits      = SignupFeeKES * UnitsPerKES
	ReferralRewardUnits = ReferralRewardKES * UnitsPerKES
	MinWithdrawUnits    = MinWithdrawKES * UnitsPerKES

	Currency = "KES"
)
